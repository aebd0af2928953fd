package static

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/SFillip/el-backend/pkg/auth"
	"github.com/SFillip/el-backend/pkg/domain"
)

type validatorConfig struct {
	// Token is the exact bearer token value expected by this validator.
	Token string `json:"token"`

	// Subject is returned as claims.Subject.
	Subject string `json:"subject,omitempty"`

	// Name is returned as claims.Name.
	Name string `json:"name,omitempty"`

	// Privilege is returned as claims.Privilege (0 = highest).
	Privilege *int `json:"privilege,omitempty"`
}

type validator struct {
	cfg validatorConfig
}

// NewValidatorFromJSON builds a fixed-token validator for dev/local use.
// Config may be a JSON object or a bare JSON string holding the token.
func NewValidatorFromJSON(raw json.RawMessage) (auth.Validator, error) {
	raw = json.RawMessage(strings.TrimSpace(string(raw)))
	if len(raw) == 0 {
		return nil, errors.New("static auth: missing config")
	}

	var cfg validatorConfig
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &cfg.Token); err != nil {
			return nil, errors.New("static auth: invalid config: " + err.Error())
		}
	} else {
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, errors.New("static auth: invalid config: " + err.Error())
		}
	}

	cfg.Token = strings.TrimSpace(cfg.Token)
	if cfg.Token == "" {
		return nil, errors.New("static auth: token is required")
	}
	cfg.Subject = strings.TrimSpace(cfg.Subject)
	if cfg.Subject == "" {
		cfg.Subject = "static"
	}

	return &validator{cfg: cfg}, nil
}

func (v *validator) Validate(token string) (*auth.Claims, error) {
	if strings.TrimSpace(token) != v.cfg.Token {
		return nil, errors.New("invalid token")
	}
	privilege := domain.PrivilegeUser
	if v.cfg.Privilege != nil {
		privilege = domain.Privilege(*v.cfg.Privilege)
	}
	return &auth.Claims{
		Subject:   v.cfg.Subject,
		Name:      v.cfg.Name,
		Privilege: privilege,
	}, nil
}

func init() {
	auth.RegisterProvider("static", NewValidatorFromJSON)
}
