package domain

import "time"

// Sample is one telemetry datapoint reported by a station.
type Sample struct {
	Station    string    `json:"station"`
	Timestamp  time.Time `json:"timestamp"`
	Images     int       `json:"images"`
	Brightness float64   `json:"brightness"`
}

// StationSendTimes is one row of the send-times chart: the first and last
// sample a station sent within the queried day.
type StationSendTimes struct {
	Station   string    `json:"station"`
	FirstSend time.Time `json:"firstSend"`
	LastSend  time.Time `json:"lastSend"`
}

// HourlyCount is one bucket of the images-per-hour chart.
type HourlyCount struct {
	Hour  int   `json:"hour"`
	Count int64 `json:"count"`
}

// HourlyBrightness is one bucket of the brightness chart (mean brightness
// over the samples that fell into the hour).
type HourlyBrightness struct {
	Hour       int     `json:"hour"`
	Brightness float64 `json:"brightness"`
}
