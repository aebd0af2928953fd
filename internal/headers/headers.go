// Package headers provides the single normalized, case-insensitive view of
// request headers shared by every component that reads them, plus the
// derivation of a query time window from the raw header values.
package headers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/SFillip/el-backend/pkg/domain"
)

const (
	ReferenceDateTime = "referencedatetime"
	ClientDateTime    = "clientdatetime"
	TimezoneOffset    = "timezoneoffset"
)

var (
	// ErrMissingHeader marks a required header that is absent or empty.
	ErrMissingHeader = errors.New("missing header")
	// ErrMalformedHeader marks a header value that is present but unparseable.
	ErrMalformedHeader = errors.New("malformed header")
)

// Accepted timestamp layouts, tried in order.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// View is a case-insensitive read-only view over request headers. When a
// header is repeated, the first value wins.
type View struct {
	values map[string]string
}

// FromHTTP builds a View from an http.Header.
func FromHTTP(h http.Header) View {
	values := make(map[string]string, len(h))
	for name, vs := range h {
		if len(vs) == 0 {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := values[key]; !ok {
			values[key] = vs[0]
		}
	}
	return View{values: values}
}

// FromMap builds a View from a plain name->value mapping (tests, adapters).
func FromMap(m map[string]string) View {
	values := make(map[string]string, len(m))
	for name, v := range m {
		key := strings.ToLower(name)
		if _, ok := values[key]; !ok {
			values[key] = v
		}
	}
	return View{values: values}
}

// Get returns the first value of the named header, matched case-insensitively.
func (v View) Get(name string) string {
	return v.values[strings.ToLower(name)]
}

func (v View) required(name string) (string, error) {
	val := strings.TrimSpace(v.Get(name))
	if val == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingHeader, name)
	}
	return val, nil
}

func (v View) requiredTime(name string) (time.Time, error) {
	val, err := v.required(name)
	if err != nil {
		return time.Time{}, err
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, val); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %s", ErrMalformedHeader, name)
}

// ClientWindow derives the time window for operations that carry the
// caller's local date/time directly (referencedatetime + clientdatetime).
// Nothing is guessed or defaulted: any absent or unparseable component
// fails the derivation.
func ClientWindow(v View) (domain.TimeWindow, error) {
	ref, err := v.requiredTime(ReferenceDateTime)
	if err != nil {
		return domain.TimeWindow{}, err
	}
	client, err := v.requiredTime(ClientDateTime)
	if err != nil {
		return domain.TimeWindow{}, err
	}
	return domain.TimeWindow{Reference: ref, Client: client, HasClient: true}, nil
}

// OffsetWindow derives the time window for operations that carry a numeric
// timezone offset in minutes (referencedatetime + timezoneoffset).
func OffsetWindow(v View) (domain.TimeWindow, error) {
	ref, err := v.requiredTime(ReferenceDateTime)
	if err != nil {
		return domain.TimeWindow{}, err
	}
	raw, err := v.required(TimezoneOffset)
	if err != nil {
		return domain.TimeWindow{}, err
	}
	offset, err := strconv.Atoi(raw)
	if err != nil {
		return domain.TimeWindow{}, fmt.Errorf("%w: %s", ErrMalformedHeader, TimezoneOffset)
	}
	return domain.TimeWindow{Reference: ref, OffsetMinutes: offset}, nil
}
