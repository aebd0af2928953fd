package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SFillip/el-backend/internal/middleware"
	"github.com/SFillip/el-backend/internal/services"
	"github.com/SFillip/el-backend/pkg/auth"
	"github.com/SFillip/el-backend/pkg/domain"
)

type authenticateController struct {
	users  services.UserService
	issuer auth.Issuer
}

func NewAuthenticateController(users services.UserService, issuer auth.Issuer) *authenticateController {
	return &authenticateController{users: users, issuer: issuer}
}

type authenticateResp struct {
	Name      string           `json:"name"`
	Privilege domain.Privilege `json:"privilege"`
	Token     string           `json:"token"`
}

// Handle verifies the submitted credentials and issues a signed token.
// No matching user yields 401; anything unexpected yields 404 per the
// external contract of this operation.
func (h *authenticateController) Handle(c *gin.Context) {
	start := time.Now()

	var creds domain.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		observe("authenticate", "rejected", start)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	user, err := h.users.Verify(c.Request.Context(), creds.Username, creds.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		observe("authenticate", "rejected", start)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if err != nil {
		observe("authenticate", "error", start)
		middleware.LoggerFrom(c).Error("authenticate failed", "err", err)
		notFound(c, msgNoData)
		return
	}

	token, err := h.issuer.Issue(user)
	if err != nil {
		observe("authenticate", "error", start)
		middleware.LoggerFrom(c).Error("token issuance failed", "err", err)
		notFound(c, msgNoData)
		return
	}

	observe("authenticate", "ok", start)
	c.JSON(http.StatusOK, authenticateResp{
		Name:      user.Name,
		Privilege: user.Privilege,
		Token:     token,
	})
}
