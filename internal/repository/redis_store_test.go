package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"github.com/SFillip/el-backend/pkg/domain"
	"github.com/SFillip/el-backend/pkg/persistence"
)

func setupStore(t *testing.T) (context.Context, *miniredis.Miniredis, persistence.Store) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return context.Background(), mr, NewStore(rdb)
}

func TestUserSaveAndLookup(t *testing.T) {
	ctx, _, store := setupStore(t)

	u := &domain.User{ID: "u1", Username: "Alice", Name: "Alice A.", Privilege: 0, PasswordHash: "$2a$x"}
	if err := store.Users().Save(ctx, u); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Users().GetByUsername(ctx, "ALICE")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != "u1" || got.Privilege != 0 || got.PasswordHash != "$2a$x" {
		t.Fatalf("unexpected user: %+v", got)
	}

	if _, err := store.Users().GetByUsername(ctx, "nobody"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTelemetryAppendTracksStations(t *testing.T) {
	ctx, _, store := setupStore(t)
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	for _, station := range []string{"Vienna", "Graz", "Graz"} {
		err := store.Telemetry().Append(ctx, "u1", domain.Sample{Station: station, Timestamp: now})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	names, err := store.Telemetry().Stations(ctx, "u1")
	if err != nil {
		t.Fatalf("stations: %v", err)
	}
	if len(names) != 2 || names[0] != "Graz" || names[1] != "Vienna" {
		t.Fatalf("expected sorted unique stations, got %v", names)
	}
}

func TestTelemetryRangeHalfOpen(t *testing.T) {
	ctx, _, store := setupStore(t)
	base := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		err := store.Telemetry().Append(ctx, "u1", domain.Sample{
			Station:    "Graz",
			Timestamp:  base.Add(time.Duration(i) * time.Hour),
			Images:     i + 1,
			Brightness: float64(i) * 0.5,
		})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := store.Telemetry().Range(ctx, "u1", "Graz", base, base.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 samples in [base, base+3h), got %d", len(got))
	}
	if got[0].Images != 1 || got[2].Images != 3 {
		t.Fatalf("expected ascending timestamp order, got %+v", got)
	}

	if other, _ := store.Telemetry().Range(ctx, "u2", "Graz", base, base.Add(24*time.Hour)); len(other) != 0 {
		t.Fatalf("samples must be isolated per user, got %+v", other)
	}
}

func TestStoreHealth(t *testing.T) {
	ctx, mr, store := setupStore(t)
	if err := store.Health(ctx); err != nil {
		t.Fatalf("health: %v", err)
	}
	mr.Close()
	if err := store.Health(ctx); err == nil {
		t.Fatalf("expected health error after redis shutdown")
	}
}
