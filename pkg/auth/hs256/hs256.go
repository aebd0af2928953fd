package hs256

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/SFillip/el-backend/pkg/auth"
	"github.com/SFillip/el-backend/pkg/domain"
)

// MinSecretLength guards against trivially brute-forceable HMAC secrets.
const MinSecretLength = 16

// Signer issues and validates HS256 tokens with a process-wide secret.
// The secret is read-only after construction, so a single Signer is safely
// shared across concurrent requests. Validation returns a fresh Claims value
// per call and keeps no per-request state on the struct.
type Signer struct {
	secret   []byte
	lifetime time.Duration
	skew     time.Duration
	now      func() time.Time
}

// Option customizes a Signer (test hooks).
type Option func(*Signer)

// WithClock overrides the time source used for iat/exp and validation.
func WithClock(now func() time.Time) Option {
	return func(s *Signer) { s.now = now }
}

// New builds a Signer. A missing or short secret is a configuration error;
// callers treat it as fatal at startup, never as a per-request condition.
func New(cfg auth.Config, opts ...Option) (*Signer, error) {
	secret := strings.TrimSpace(cfg.Secret)
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("hs256: secret must be at least %d characters", MinSecretLength)
	}
	if cfg.Lifetime <= 0 {
		return nil, errors.New("hs256: token lifetime must be positive")
	}
	s := &Signer{
		secret:   []byte(secret),
		lifetime: cfg.Lifetime,
		skew:     cfg.ClockSkew,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue encodes the user's identity and privilege into a signed token.
// The user is assumed to be already verified against supplied credentials.
func (s *Signer) Issue(user *domain.User) (string, error) {
	if user == nil {
		return "", errors.New("hs256: nil user")
	}
	now := s.now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":       user.ID,
		"name":      user.Name,
		"privilege": int(user.Privilege),
		"iat":       now.Unix(),
		"exp":       now.Add(s.lifetime).Unix(),
	})
	return tok.SignedString(s.secret)
}

// Validate verifies signature and expiry and extracts the claim set.
// Any failure (malformed, bad signature, expired) is reported as an error;
// nothing escapes as a panic.
func (s *Signer) Validate(tokenString string) (*auth.Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, errors.New("empty token")
	}

	token, err := jwt.Parse(tokenString,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(s.skew),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, errors.New("missing sub claim")
	}

	result := &auth.Claims{
		Subject:   sub,
		Raw:       claims,
		Privilege: privilegeClaim(claims),
	}
	if name, ok := claims["name"].(string); ok {
		result.Name = name
	}
	if exp, ok := claims["exp"].(float64); ok {
		result.ExpiresAt = time.Unix(int64(exp), 0)
	}
	if iat, ok := claims["iat"].(float64); ok {
		result.IssuedAt = time.Unix(int64(iat), 0)
	}
	return result, nil
}

func privilegeClaim(claims jwt.MapClaims) domain.Privilege {
	switch v := claims["privilege"].(type) {
	case float64:
		return domain.Privilege(int(v))
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return domain.Privilege(n)
		}
	}
	// Absent privilege degrades to the least privileged level rather than
	// accidentally granting admin (0 would be the highest privilege).
	return domain.PrivilegeUser
}

type providerConfig struct {
	Secret          string `json:"secret"`
	LifetimeMinutes int    `json:"lifetimeMinutes"`
	ClockSkewSecs   int    `json:"clockSkewSeconds"`
}

// NewValidatorFromJSON builds a validating Signer from raw provider config.
func NewValidatorFromJSON(raw json.RawMessage) (auth.Validator, error) {
	var cfg providerConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("hs256: invalid config: %w", err)
	}
	if cfg.LifetimeMinutes <= 0 {
		cfg.LifetimeMinutes = 60
	}
	return New(auth.Config{
		Secret:    cfg.Secret,
		Lifetime:  time.Duration(cfg.LifetimeMinutes) * time.Minute,
		ClockSkew: time.Duration(cfg.ClockSkewSecs) * time.Second,
	})
}

func init() {
	auth.RegisterProvider("hs256", NewValidatorFromJSON)
}
