package rufus

import (
	"testing"
	"time"
)

func TestParseTimeStringWithZoneAbbreviation(t *testing.T) {
	got, err := ParseTimeString("2026-01-02 15:04:05 EST")
	if err != nil {
		t.Fatalf("ParseTimeString: %v", err)
	}
	est, _ := time.LoadLocation("America/New_York")
	want := time.Date(2026, 1, 2, 15, 4, 5, 0, est).UTC()
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseTimeStringWithZoneName(t *testing.T) {
	got, err := ParseTimeString("2026-01-02 15:04:05 America/Los_Angeles")
	if err != nil {
		t.Fatalf("ParseTimeString: %v", err)
	}
	la, _ := time.LoadLocation("America/Los_Angeles")
	want := time.Date(2026, 1, 2, 15, 4, 5, 0, la).UTC()
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseTimeStringNoZoneUsesLocal(t *testing.T) {
	got, err := ParseTimeString("2026-01-02 15:04:05")
	if err != nil {
		t.Fatalf("ParseTimeString: %v", err)
	}
	want := time.Date(2026, 1, 2, 15, 4, 5, 0, time.Local).UTC()
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseTimeStringRejectsGarbage(t *testing.T) {
	if _, err := ParseTimeString("not a date"); err == nil {
		t.Fatal("expected an error for unrecognised input")
	}
}

func TestParseTimeStringDateOnly(t *testing.T) {
	got, err := ParseTimeString("2026-03-15 UTC")
	if err != nil {
		t.Fatalf("ParseTimeString: %v", err)
	}
	want := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
