package headers

import (
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestViewCaseInsensitiveFirstValueWins(t *testing.T) {
	h := http.Header{}
	h.Add("ReferenceDateTime", "2024-03-10T22:30:00Z")
	h.Add("ReferenceDateTime", "2030-01-01T00:00:00Z")
	v := FromHTTP(h)

	if got := v.Get("referencedatetime"); got != "2024-03-10T22:30:00Z" {
		t.Fatalf("expected first value, got %q", got)
	}
	if got := v.Get("REFERENCEDATETIME"); got != "2024-03-10T22:30:00Z" {
		t.Fatalf("lookup must be case-insensitive, got %q", got)
	}
}

func TestClientWindow(t *testing.T) {
	v := FromMap(map[string]string{
		"referencedatetime": "2024-03-10T22:30:00Z",
		"clientdatetime":    "2024-03-10 23:30:00",
	})
	w, err := ClientWindow(v)
	if err != nil {
		t.Fatalf("ClientWindow: %v", err)
	}
	if !w.HasClient {
		t.Fatalf("expected client variant")
	}
	if w.Reference.Hour() != 22 || w.Client.Hour() != 23 {
		t.Fatalf("unexpected window: %+v", w)
	}
}

func TestClientWindowMissingHeaders(t *testing.T) {
	cases := []map[string]string{
		{},
		{"referencedatetime": "2024-03-10T22:30:00Z"},
		{"clientdatetime": "2024-03-10T23:30:00Z"},
		{"referencedatetime": "2024-03-10T22:30:00Z", "clientdatetime": "   "},
	}
	for i, m := range cases {
		if _, err := ClientWindow(FromMap(m)); !errors.Is(err, ErrMissingHeader) {
			t.Fatalf("case %d: expected ErrMissingHeader, got %v", i, err)
		}
	}
}

func TestClientWindowMalformedTimestamp(t *testing.T) {
	v := FromMap(map[string]string{
		"referencedatetime": "not-a-date",
		"clientdatetime":    "2024-03-10T23:30:00Z",
	})
	if _, err := ClientWindow(v); !errors.Is(err, ErrMalformedHeader) {
		t.Fatalf("expected ErrMalformedHeader, got %v", err)
	}
}

func TestOffsetWindow(t *testing.T) {
	v := FromMap(map[string]string{
		"ReferenceDateTime": "2024-03-10T22:30:00Z",
		"TimezoneOffset":    "-90",
	})
	w, err := OffsetWindow(v)
	if err != nil {
		t.Fatalf("OffsetWindow: %v", err)
	}
	if w.OffsetMinutes != -90 || w.HasClient {
		t.Fatalf("unexpected window: %+v", w)
	}
	if !w.Reference.Equal(time.Date(2024, 3, 10, 22, 30, 0, 0, time.UTC)) {
		t.Fatalf("unexpected reference: %s", w.Reference)
	}
}

func TestOffsetWindowMalformedOffset(t *testing.T) {
	v := FromMap(map[string]string{
		"referencedatetime": "2024-03-10T22:30:00Z",
		"timezoneoffset":    "ninety",
	})
	if _, err := OffsetWindow(v); !errors.Is(err, ErrMalformedHeader) {
		t.Fatalf("expected ErrMalformedHeader, got %v", err)
	}
	// Malformed offsets must not be confused with absent headers.
	if _, err := OffsetWindow(v); errors.Is(err, ErrMissingHeader) {
		t.Fatalf("malformed offset must not map to ErrMissingHeader")
	}
}
