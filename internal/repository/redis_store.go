// Package repository implements the redis-backed storage provider.
//
// Layout:
//   - el:users                      HASH   field = lowercase username, value = JSON user record
//   - el:stations:<userID>          SET    member = station name
//   - el:telemetry:<userID>:<name>  ZSET   member = JSON sample, score = unix seconds
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/SFillip/el-backend/pkg/domain"
	"github.com/SFillip/el-backend/pkg/persistence"
)

type redisStore struct {
	rdb       *redis.Client
	users     *userRedisRepo
	telemetry *telemetryRedisRepo
}

// NewStore wraps an existing redis client as a persistence.Store.
func NewStore(rdb *redis.Client) persistence.Store {
	return &redisStore{
		rdb:       rdb,
		users:     &userRedisRepo{rdb: rdb},
		telemetry: &telemetryRedisRepo{rdb: rdb},
	}
}

func (s *redisStore) Users() persistence.UserStorage          { return s.users }
func (s *redisStore) Telemetry() persistence.TelemetryStorage { return s.telemetry }

func (s *redisStore) Health(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *redisStore) Close() error { return s.rdb.Close() }

// ===== users =====

type userRedisRepo struct {
	rdb *redis.Client
}

func keyUsers() string { return "el:users" }

type userRecord struct {
	ID           string           `json:"id"`
	Username     string           `json:"username"`
	Name         string           `json:"name"`
	Privilege    domain.Privilege `json:"privilege"`
	PasswordHash string           `json:"passwordHash"`
}

func (r *userRedisRepo) Save(ctx context.Context, user *domain.User) error {
	rec := userRecord{
		ID:           user.ID,
		Username:     user.Username,
		Name:         user.Name,
		Privilege:    user.Privilege,
		PasswordHash: user.PasswordHash,
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return r.rdb.HSet(ctx, keyUsers(), strings.ToLower(user.Username), string(b)).Err()
}

func (r *userRedisRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	raw, err := r.rdb.HGet(ctx, keyUsers(), strings.ToLower(username)).Result()
	if err == redis.Nil {
		return nil, persistence.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var rec userRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, err
	}
	return &domain.User{
		ID:           rec.ID,
		Username:     rec.Username,
		Name:         rec.Name,
		Privilege:    rec.Privilege,
		PasswordHash: rec.PasswordHash,
	}, nil
}

// ===== telemetry =====

type telemetryRedisRepo struct {
	rdb *redis.Client
}

func keyStations(userID string) string { return fmt.Sprintf("el:stations:%s", userID) }
func keyTelemetry(userID, station string) string {
	return fmt.Sprintf("el:telemetry:%s:%s", userID, station)
}

func (r *telemetryRedisRepo) Append(ctx context.Context, userID string, sample domain.Sample) error {
	b, err := json.Marshal(sample)
	if err != nil {
		return err
	}
	pipe := r.rdb.TxPipeline()
	pipe.SAdd(ctx, keyStations(userID), sample.Station)
	pipe.ZAdd(ctx, keyTelemetry(userID, sample.Station), &redis.Z{
		Score:  float64(sample.Timestamp.Unix()),
		Member: string(b),
	})
	_, err = pipe.Exec(ctx)
	return err
}

func (r *telemetryRedisRepo) Stations(ctx context.Context, userID string) ([]string, error) {
	names, err := r.rdb.SMembers(ctx, keyStations(userID)).Result()
	if err != nil {
		return nil, err
	}
	// SMEMBERS order is unspecified; charts want a stable order.
	sort.Strings(names)
	return names, nil
}

func (r *telemetryRedisRepo) Range(ctx context.Context, userID, station string, from, to time.Time) ([]domain.Sample, error) {
	// Half-open interval [from, to).
	raw, err := r.rdb.ZRangeByScore(ctx, keyTelemetry(userID, station), &redis.ZRangeBy{
		Min: strconv.FormatInt(from.Unix(), 10),
		Max: "(" + strconv.FormatInt(to.Unix(), 10),
	}).Result()
	if err != nil {
		return nil, err
	}
	out := make([]domain.Sample, 0, len(raw))
	for _, item := range raw {
		var s domain.Sample
		if err := json.Unmarshal([]byte(item), &s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

type providerConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

func init() {
	persistence.RegisterProvider("redis", func(raw json.RawMessage) (persistence.Store, error) {
		var cfg providerConfig
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &cfg); err != nil {
				return nil, fmt.Errorf("redis storage: invalid config: %w", err)
			}
		}
		if cfg.Addr == "" {
			cfg.Addr = "localhost:6379"
		}
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
		return NewStore(rdb), nil
	})
}
