package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SFillip/el-backend/internal/metrics"
	"github.com/SFillip/el-backend/pkg/auth"
	"github.com/SFillip/el-backend/pkg/domain"
)

// Gin context key holding the request's AuthContext value.
const authContextKey = "authContext"

// AuthMiddleware validates the bearer token carried by tokenHeader and
// stores a fresh AuthContext for the request. Absent, malformed, badly
// signed or expired tokens all reject with 401; no distinction is exposed.
// When tokenHeader is "Authorization" the standard Bearer scheme applies;
// any other header carries the bare token.
func AuthMiddleware(validator auth.Validator, tokenHeader string) gin.HandlerFunc {
	if validator == nil {
		return func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token validator not configured"})
		}
	}
	if strings.TrimSpace(tokenHeader) == "" {
		tokenHeader = "Authorization"
	}
	return func(c *gin.Context) {
		token := presentedToken(c.GetHeader(tokenHeader), tokenHeader)
		claims, err := validator.Validate(token)
		if err != nil {
			metrics.TokenValidationsTotal.WithLabelValues("rejected").Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		metrics.TokenValidationsTotal.WithLabelValues("ok").Inc()
		c.Set(authContextKey, claims.Context())
		c.Next()
	}
}

// RequirePrivilege rejects requests whose privilege is not sufficient for
// the operation. Privilege 0 is the highest; a caller passes when its
// level is numerically less than or equal to the requirement. Insufficient
// privilege is reported as plain 401, indistinguishable from a missing
// token at the boundary.
func RequirePrivilege(required domain.Privilege) gin.HandlerFunc {
	return func(c *gin.Context) {
		authCtx := AuthContextFrom(c)
		if !authCtx.Valid || !authCtx.Privilege.Allows(required) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// AuthContextFrom returns the request's AuthContext; the zero value (with
// Valid=false) when authentication has not run or failed.
func AuthContextFrom(c *gin.Context) domain.AuthContext {
	v, ok := c.Get(authContextKey)
	if !ok {
		return domain.AuthContext{}
	}
	authCtx, _ := v.(domain.AuthContext)
	return authCtx
}

func presentedToken(headerValue, headerName string) string {
	headerValue = strings.TrimSpace(headerValue)
	if !strings.EqualFold(headerName, "Authorization") {
		return headerValue
	}
	parts := strings.SplitN(headerValue, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
