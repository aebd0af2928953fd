package services

import (
	"context"
	"testing"
	"time"

	"github.com/SFillip/el-backend/pkg/domain"
	"github.com/SFillip/el-backend/pkg/persistence"
	"github.com/SFillip/el-backend/pkg/persistence/memory"
)

func seedDay(t *testing.T, store persistence.Store, userID, station string, day time.Time, hours []int) {
	t.Helper()
	for _, h := range hours {
		err := store.Telemetry().Append(context.Background(), userID, domain.Sample{
			Station:    station,
			Timestamp:  day.Add(time.Duration(h) * time.Hour),
			Images:     2,
			Brightness: float64(h),
		})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}
}

func TestSendTimesPerStation(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewStatisticsService(store.Telemetry())
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	seedDay(t, store, "u1", "Graz", day, []int{6, 9, 18})
	seedDay(t, store, "u1", "Vienna", day, []int{7})
	// A sample on the next day must not bleed into the queried window.
	seedDay(t, store, "u1", "Graz", day.Add(24*time.Hour), []int{1})

	window := domain.TimeWindow{
		Reference: day.Add(20 * time.Hour),
		Client:    day.Add(20 * time.Hour),
		HasClient: true,
	}
	rows, err := svc.SendTimes(ctx, "u1", window)
	if err != nil {
		t.Fatalf("SendTimes: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 stations, got %d: %+v", len(rows), rows)
	}
	if rows[0].Station != "Graz" || rows[0].FirstSend.Hour() != 6 || rows[0].LastSend.Hour() != 18 {
		t.Fatalf("unexpected Graz row: %+v", rows[0])
	}
	if rows[1].Station != "Vienna" || rows[1].FirstSend.Hour() != 7 || rows[1].LastSend.Hour() != 7 {
		t.Fatalf("unexpected Vienna row: %+v", rows[1])
	}
}

func TestSendTimesEmpty(t *testing.T) {
	svc := NewStatisticsService(memory.New().Telemetry())
	window := domain.TimeWindow{Reference: time.Now(), Client: time.Now(), HasClient: true}
	rows, err := svc.SendTimes(context.Background(), "u1", window)
	if err != nil {
		t.Fatalf("SendTimes: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %+v", rows)
	}
}

func TestImagesPerHourBuckets(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewStatisticsService(store.Telemetry())
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	seedDay(t, store, "u1", "Graz", day, []int{6, 6, 9})
	seedDay(t, store, "u1", "Vienna", day, []int{6})

	window := domain.TimeWindow{Reference: day.Add(12 * time.Hour), OffsetMinutes: 0}
	buckets, err := svc.ImagesPerHour(ctx, "u1", window)
	if err != nil {
		t.Fatalf("ImagesPerHour: %v", err)
	}
	if len(buckets) != 24 {
		t.Fatalf("expected 24 buckets, got %d", len(buckets))
	}
	if buckets[6].Count != 6 {
		t.Fatalf("hour 6: want 6 images (3 samples x 2), got %d", buckets[6].Count)
	}
	if buckets[9].Count != 2 {
		t.Fatalf("hour 9: want 2 images, got %d", buckets[9].Count)
	}
	if buckets[0].Count != 0 {
		t.Fatalf("hour 0: want 0 images, got %d", buckets[0].Count)
	}
}

func TestImagesPerHourOffsetShiftsBuckets(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewStatisticsService(store.Telemetry())
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	// 23:00 UTC on the 9th is 01:00 on the 10th at +120 minutes.
	err := store.Telemetry().Append(ctx, "u1", domain.Sample{
		Station:   "Graz",
		Timestamp: day.Add(-time.Hour),
		Images:    5,
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	window := domain.TimeWindow{Reference: day.Add(12 * time.Hour), OffsetMinutes: 120}
	buckets, err := svc.ImagesPerHour(ctx, "u1", window)
	if err != nil {
		t.Fatalf("ImagesPerHour: %v", err)
	}
	if buckets == nil {
		t.Fatalf("expected data for the shifted day")
	}
	if buckets[1].Count != 5 {
		t.Fatalf("expected the sample in local hour 1, got %+v", buckets[:3])
	}
}

func TestImagesPerHourNoData(t *testing.T) {
	svc := NewStatisticsService(memory.New().Telemetry())
	window := domain.TimeWindow{Reference: time.Now(), OffsetMinutes: 0}
	buckets, err := svc.ImagesPerHour(context.Background(), "u1", window)
	if err != nil {
		t.Fatalf("ImagesPerHour: %v", err)
	}
	if buckets != nil {
		t.Fatalf("expected nil for no data, got %+v", buckets)
	}
}

func TestBrightnessPerHourMeans(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewStatisticsService(store.Telemetry())
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	for _, b := range []float64{10, 20} {
		err := store.Telemetry().Append(ctx, "u1", domain.Sample{
			Station:    "Graz",
			Timestamp:  day.Add(5 * time.Hour),
			Brightness: b,
		})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	window := domain.TimeWindow{Reference: day.Add(12 * time.Hour), OffsetMinutes: 0}
	buckets, err := svc.BrightnessPerHour(ctx, "u1", window)
	if err != nil {
		t.Fatalf("BrightnessPerHour: %v", err)
	}
	if buckets[5].Brightness != 15 {
		t.Fatalf("hour 5: want mean 15, got %v", buckets[5].Brightness)
	}
	if buckets[4].Brightness != 0 {
		t.Fatalf("hour 4: want 0, got %v", buckets[4].Brightness)
	}
}
