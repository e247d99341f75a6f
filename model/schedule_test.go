package model

import (
	"testing"
	"time"
)

func TestScheduleDeparture(t *testing.T) {
	s := Schedule{Id: 1, DepartureTime: "2026-03-04T08:30:00"}
	got, err := s.Departure(time.UTC)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	want := time.Date(2026, 3, 4, 8, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}

	if _, err := (Schedule{Id: 2, DepartureTime: "tomorrow"}).Departure(time.UTC); err == nil {
		t.Fatal("expected error")
	}
	if _, err := (Schedule{Id: 3}).Departure(time.UTC); err == nil {
		t.Fatal("expected error")
	}
}
