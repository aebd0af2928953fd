package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/SFillip/el-backend/pkg/domain"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// Store provides the storage backends used by the service.
type Store interface {
	// Users returns the user storage implementation
	Users() UserStorage

	// Telemetry returns the telemetry storage implementation
	Telemetry() TelemetryStorage

	// Health checks if the storage backend is healthy
	Health(ctx context.Context) error

	// Close releases resources held by the storage backend
	Close() error
}

// UserStorage defines persistence operations for user records.
type UserStorage interface {
	// Save stores a user record keyed by username
	Save(ctx context.Context, user *domain.User) error

	// GetByUsername retrieves a user by username; ErrNotFound when absent
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// TelemetryStorage defines persistence operations for station telemetry.
type TelemetryStorage interface {
	// Append records a sample for a station owned by a user
	Append(ctx context.Context, userID string, sample domain.Sample) error

	// Stations lists the station names a user is authorized to see
	Stations(ctx context.Context, userID string) ([]string, error)

	// Range returns a station's samples with from <= timestamp < to,
	// ordered by timestamp
	Range(ctx context.Context, userID, station string, from, to time.Time) ([]domain.Sample, error)
}
