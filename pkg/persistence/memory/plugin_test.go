package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SFillip/el-backend/pkg/domain"
	"github.com/SFillip/el-backend/pkg/persistence"
)

func TestUserStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, err := s.Users().GetByUsername(ctx, "alice"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	u := &domain.User{ID: "u1", Username: "Alice", Name: "Alice A.", Privilege: 0, PasswordHash: "x"}
	if err := s.Users().Save(ctx, u); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Users().GetByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if got.ID != "u1" || got.Privilege != 0 {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestTelemetryRangeAndStations(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		err := s.Telemetry().Append(ctx, "u1", domain.Sample{
			Station:   "Graz",
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Images:    i,
		})
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	_ = s.Telemetry().Append(ctx, "u1", domain.Sample{Station: "Vienna", Timestamp: base})

	stations, err := s.Telemetry().Stations(ctx, "u1")
	if err != nil {
		t.Fatalf("Stations: %v", err)
	}
	if len(stations) != 2 || stations[0] != "Graz" || stations[1] != "Vienna" {
		t.Fatalf("unexpected stations: %v", stations)
	}

	// Range is half-open: [from, to).
	got, err := s.Telemetry().Range(ctx, "u1", "Graz", base.Add(time.Hour), base.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("Range: %v", err)
	}
	if len(got) != 2 || got[0].Images != 1 || got[1].Images != 2 {
		t.Fatalf("unexpected range result: %+v", got)
	}

	if other, _ := s.Telemetry().Range(ctx, "u2", "Graz", base, base.Add(24*time.Hour)); len(other) != 0 {
		t.Fatalf("samples must be scoped to their owner, got %+v", other)
	}
}
