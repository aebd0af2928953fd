package auth

import (
	"time"

	"github.com/SFillip/el-backend/pkg/domain"
)

// Claims is the verified claim set extracted from a presented token.
type Claims struct {
	Subject   string
	Name      string
	Privilege domain.Privilege
	IssuedAt  time.Time
	ExpiresAt time.Time
	Raw       map[string]interface{}
}

// Context converts verified claims into the per-request AuthContext value.
func (c *Claims) Context() domain.AuthContext {
	if c == nil {
		return domain.AuthContext{}
	}
	return domain.AuthContext{
		Valid:     true,
		Subject:   c.Subject,
		Name:      c.Name,
		Privilege: c.Privilege,
	}
}

// Validator validates authentication tokens. Implementations must be pure
// per call: the outcome is returned, never stored on the validator, so
// concurrent validations cannot leak one request's claims into another's.
type Validator interface {
	Validate(token string) (*Claims, error)
}

// Issuer mints signed, time-limited tokens for verified users.
type Issuer interface {
	Issue(user *domain.User) (string, error)
}

// Config contains validator configuration shared by providers.
type Config struct {
	Secret      string
	Lifetime    time.Duration
	JwksURL     string
	Issuer      string
	Audience    string
	ClockSkew   time.Duration
	HTTPTimeout time.Duration
}
