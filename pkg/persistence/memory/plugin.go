// Package memory implements an in-process storage backend for dev setups
// and integration tests. Registered as persistence provider "memory".
package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/SFillip/el-backend/pkg/domain"
	"github.com/SFillip/el-backend/pkg/persistence"
)

type store struct {
	users     *userStorage
	telemetry *telemetryStorage
}

// New returns an empty in-memory store.
func New() persistence.Store {
	return &store{
		users:     &userStorage{byUsername: make(map[string]domain.User)},
		telemetry: &telemetryStorage{samples: make(map[string][]domain.Sample), stations: make(map[string][]string)},
	}
}

func (s *store) Users() persistence.UserStorage          { return s.users }
func (s *store) Telemetry() persistence.TelemetryStorage { return s.telemetry }
func (s *store) Health(ctx context.Context) error        { return nil }
func (s *store) Close() error                            { return nil }

type userStorage struct {
	mu         sync.RWMutex
	byUsername map[string]domain.User
}

func (u *userStorage) Save(ctx context.Context, user *domain.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.byUsername[strings.ToLower(user.Username)] = *user
	return nil
}

func (u *userStorage) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	user, ok := u.byUsername[strings.ToLower(username)]
	if !ok {
		return nil, persistence.ErrNotFound
	}
	out := user
	return &out, nil
}

type telemetryStorage struct {
	mu       sync.RWMutex
	samples  map[string][]domain.Sample // key: userID + "\x00" + station
	stations map[string][]string        // key: userID
}

func key(userID, station string) string { return userID + "\x00" + station }

func (t *telemetryStorage) Append(ctx context.Context, userID string, sample domain.Sample) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	k := key(userID, sample.Station)
	t.samples[k] = append(t.samples[k], sample)
	sort.Slice(t.samples[k], func(i, j int) bool {
		return t.samples[k][i].Timestamp.Before(t.samples[k][j].Timestamp)
	})
	known := false
	for _, s := range t.stations[userID] {
		if s == sample.Station {
			known = true
			break
		}
	}
	if !known {
		t.stations[userID] = append(t.stations[userID], sample.Station)
		sort.Strings(t.stations[userID])
	}
	return nil
}

func (t *telemetryStorage) Stations(ctx context.Context, userID string) ([]string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]string(nil), t.stations[userID]...), nil
}

func (t *telemetryStorage) Range(ctx context.Context, userID, station string, from, to time.Time) ([]domain.Sample, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []domain.Sample
	for _, s := range t.samples[key(userID, station)] {
		if s.Timestamp.Before(from) || !s.Timestamp.Before(to) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func init() {
	persistence.RegisterProvider("memory", func(json.RawMessage) (persistence.Store, error) {
		return New(), nil
	})
}
