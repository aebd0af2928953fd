package domain

import "time"

// AuthContext is the immutable result of validating one request's token.
// A fresh value is produced per validation call; it is never shared or
// mutated across requests.
type AuthContext struct {
	Valid     bool      `json:"valid"`
	Subject   string    `json:"subject,omitempty"`
	Name      string    `json:"name,omitempty"`
	Privilege Privilege `json:"privilege,omitempty"`
}

// TimeWindow is the normalized query window derived once per request from
// raw headers. Reference is always set. Exactly one of Client or
// OffsetMinutes is meaningful, depending on the operation variant.
type TimeWindow struct {
	Reference     time.Time
	Client        time.Time
	OffsetMinutes int
	HasClient     bool
}

// ClientDay returns the start of the caller-local calendar day the window
// refers to. For the client-datetime variant that is the client timestamp's
// day; for the offset variant the reference time is shifted by the offset.
func (w TimeWindow) ClientDay() time.Time {
	t := w.Reference
	if w.HasClient {
		t = w.Client
	} else {
		t = t.Add(time.Duration(w.OffsetMinutes) * time.Minute)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
