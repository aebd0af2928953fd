package services

import (
	"context"
	"time"

	"github.com/SFillip/el-backend/pkg/domain"
	"github.com/SFillip/el-backend/pkg/persistence"
)

// StatisticsService aggregates station telemetry into the chart payloads
// the API exposes. All operations are read-only; empty results are returned
// as empty slices and mapped to "no data" by the callers.
type StatisticsService interface {
	StationNames(ctx context.Context, userID string) ([]string, error)
	SendTimes(ctx context.Context, userID string, window domain.TimeWindow) ([]domain.StationSendTimes, error)
	ImagesPerHour(ctx context.Context, userID string, window domain.TimeWindow) ([]domain.HourlyCount, error)
	BrightnessPerHour(ctx context.Context, userID string, window domain.TimeWindow) ([]domain.HourlyBrightness, error)
}

type statisticsService struct {
	telemetry persistence.TelemetryStorage
}

func NewStatisticsService(telemetry persistence.TelemetryStorage) StatisticsService {
	return &statisticsService{telemetry: telemetry}
}

func (s *statisticsService) StationNames(ctx context.Context, userID string) ([]string, error) {
	return s.telemetry.Stations(ctx, userID)
}

// SendTimes returns, per station, the first and last sample within the
// caller-local calendar day the window describes.
func (s *statisticsService) SendTimes(ctx context.Context, userID string, window domain.TimeWindow) ([]domain.StationSendTimes, error) {
	from, to := dayBounds(window)
	stations, err := s.telemetry.Stations(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.StationSendTimes, 0, len(stations))
	for _, station := range stations {
		samples, err := s.telemetry.Range(ctx, userID, station, from, to)
		if err != nil {
			return nil, err
		}
		if len(samples) == 0 {
			continue
		}
		out = append(out, domain.StationSendTimes{
			Station:   station,
			FirstSend: samples[0].Timestamp,
			LastSend:  samples[len(samples)-1].Timestamp,
		})
	}
	return out, nil
}

// ImagesPerHour buckets the day's image counts into 24 hourly slots,
// summed across all of the user's stations. Hours are caller-local.
func (s *statisticsService) ImagesPerHour(ctx context.Context, userID string, window domain.TimeWindow) ([]domain.HourlyCount, error) {
	var counts [24]int64
	any := false

	err := s.eachSample(ctx, userID, window, func(hour int, sample domain.Sample) {
		counts[hour] += int64(sample.Images)
		any = true
	})
	if err != nil {
		return nil, err
	}
	if !any {
		return nil, nil
	}

	out := make([]domain.HourlyCount, 24)
	for h := range counts {
		out[h] = domain.HourlyCount{Hour: h, Count: counts[h]}
	}
	return out, nil
}

// BrightnessPerHour buckets mean brightness into 24 hourly slots.
func (s *statisticsService) BrightnessPerHour(ctx context.Context, userID string, window domain.TimeWindow) ([]domain.HourlyBrightness, error) {
	var sums [24]float64
	var counts [24]int64
	any := false

	err := s.eachSample(ctx, userID, window, func(hour int, sample domain.Sample) {
		sums[hour] += sample.Brightness
		counts[hour]++
		any = true
	})
	if err != nil {
		return nil, err
	}
	if !any {
		return nil, nil
	}

	out := make([]domain.HourlyBrightness, 24)
	for h := range sums {
		mean := 0.0
		if counts[h] > 0 {
			mean = sums[h] / float64(counts[h])
		}
		out[h] = domain.HourlyBrightness{Hour: h, Brightness: mean}
	}
	return out, nil
}

// eachSample visits every sample of the user's stations within the window's
// caller-local day, handing the callback the caller-local hour bucket.
func (s *statisticsService) eachSample(ctx context.Context, userID string, window domain.TimeWindow, visit func(hour int, sample domain.Sample)) error {
	from, to := dayBounds(window)
	offset := time.Duration(window.OffsetMinutes) * time.Minute

	stations, err := s.telemetry.Stations(ctx, userID)
	if err != nil {
		return err
	}
	for _, station := range stations {
		samples, err := s.telemetry.Range(ctx, userID, station, from, to)
		if err != nil {
			return err
		}
		for _, sample := range samples {
			local := sample.Timestamp
			if !window.HasClient {
				local = local.Add(offset)
			}
			hour := local.Hour()
			if hour < 0 || hour > 23 {
				continue
			}
			visit(hour, sample)
		}
	}
	return nil
}

// dayBounds converts the window's caller-local day into the absolute
// half-open storage interval [from, to).
func dayBounds(window domain.TimeWindow) (time.Time, time.Time) {
	day := window.ClientDay()
	if !window.HasClient {
		// ClientDay shifted the reference by the offset; shift back so the
		// bounds address the underlying (unshifted) sample timestamps.
		day = day.Add(-time.Duration(window.OffsetMinutes) * time.Minute)
	}
	return day, day.Add(24 * time.Hour)
}
