package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/SFillip/el-backend/internal/metrics"
	"github.com/SFillip/el-backend/pkg/domain"
	"github.com/SFillip/el-backend/pkg/persistence"
)

// ErrInvalidCredentials covers both unknown usernames and wrong passwords;
// callers must not be able to distinguish the two.
var ErrInvalidCredentials = errors.New("invalid credentials")

type UserService interface {
	// Verify checks a username/password pair against the user store.
	Verify(ctx context.Context, username, password string) (*domain.User, error)

	// Register creates a user with a bcrypt-hashed password.
	Register(ctx context.Context, user *domain.User, password string) error
}

type userService struct {
	users persistence.UserStorage
}

func NewUserService(users persistence.UserStorage) UserService {
	return &userService{users: users}
}

func (s *userService) Verify(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		metrics.LoginAttemptsTotal.WithLabelValues("rejected").Inc()
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, persistence.ErrNotFound) {
		metrics.LoginAttemptsTotal.WithLabelValues("rejected").Inc()
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("rejected").Inc()
		return nil, ErrInvalidCredentials
	}

	metrics.LoginAttemptsTotal.WithLabelValues("ok").Inc()
	return user, nil
}

func (s *userService) Register(ctx context.Context, user *domain.User, password string) error {
	if user == nil || strings.TrimSpace(user.Username) == "" {
		return errors.New("username is required")
	}
	if password == "" {
		return errors.New("password is required")
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	return s.users.Save(ctx, user)
}
