package domain

import (
	"testing"
	"time"
)

func TestPrivilegeOrdering(t *testing.T) {
	if !PrivilegeAdmin.Allows(PrivilegeAdmin) {
		t.Fatalf("admin must satisfy an admin-only requirement")
	}
	if PrivilegeUser.Allows(PrivilegeAdmin) {
		t.Fatalf("privilege 1 must not satisfy a privilege-0 requirement")
	}
	if !PrivilegeAdmin.Allows(PrivilegeUser) {
		t.Fatalf("lower number is the higher privilege; 0 must satisfy 1")
	}
}

func TestClientDayFromClientDateTime(t *testing.T) {
	ref := time.Date(2024, 3, 10, 22, 30, 0, 0, time.UTC)
	client := time.Date(2024, 3, 11, 1, 15, 0, 0, time.UTC)
	w := TimeWindow{Reference: ref, Client: client, HasClient: true}
	day := w.ClientDay()
	if day.Day() != 11 || day.Hour() != 0 {
		t.Fatalf("expected client day 2024-03-11T00:00, got %s", day)
	}
}

func TestClientDayFromOffset(t *testing.T) {
	// 22:30 UTC + 120min offset crosses midnight in the caller's zone.
	ref := time.Date(2024, 3, 10, 22, 30, 0, 0, time.UTC)
	w := TimeWindow{Reference: ref, OffsetMinutes: 120}
	day := w.ClientDay()
	if day.Day() != 11 {
		t.Fatalf("expected offset to shift the day to the 11th, got %s", day)
	}

	w = TimeWindow{Reference: ref, OffsetMinutes: -60}
	if d := w.ClientDay(); d.Day() != 10 {
		t.Fatalf("negative offset must stay on the 10th, got %s", d)
	}
}
