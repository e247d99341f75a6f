package model

import (
	"errors"
	"testing"
)

func TestNormalizeAvailability_FillsMissingSeats(t *testing.T) {
	grid, err := NormalizeAvailability(SeatAvailability{
		BusNumber:  "B-12",
		ScheduleID: 7,
		TotalSeats: 5,
		Seats: []SeatAvailabilitySeat{
			{SeatNumber: 2, Status: "PAID"},
			{SeatNumber: 4, Status: "RESERVED"},
		},
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	want := []SeatState{SeatAvailable, SeatPaid, SeatAvailable, SeatReserved, SeatAvailable}
	if len(grid.Seats) != len(want) {
		t.Fatalf("expected %d seats, got %d", len(want), len(grid.Seats))
	}
	for i, state := range want {
		if grid.Seats[i].Number != i+1 {
			t.Fatalf("expected seat %d at index %d, got %d", i+1, i, grid.Seats[i].Number)
		}
		if grid.Seats[i].State != state {
			t.Fatalf("seat %d: expected %s, got %s", i+1, state, grid.Seats[i].State)
		}
	}
}

func TestNormalizeAvailability_EveryOmittedSeatIsAvailable(t *testing.T) {
	for n := 1; n <= 12; n++ {
		for k := 1; k <= n; k++ {
			var seats []SeatAvailabilitySeat
			for i := 1; i <= n; i++ {
				if i != k {
					seats = append(seats, SeatAvailabilitySeat{SeatNumber: i, Status: "RESERVED"})
				}
			}
			grid, err := NormalizeAvailability(SeatAvailability{TotalSeats: n, Seats: seats})
			if err != nil {
				t.Fatalf("n=%d k=%d: expected nil error, got %v", n, k, err)
			}
			seat, ok := grid.Seat(k)
			if !ok || seat.State != SeatAvailable {
				t.Fatalf("n=%d k=%d: expected omitted seat to be available, got %+v", n, k, seat)
			}
		}
	}
}

func TestNormalizeAvailability_AcceptsStateField(t *testing.T) {
	grid, err := NormalizeAvailability(SeatAvailability{
		TotalSeats: 2,
		Seats:      []SeatAvailabilitySeat{{SeatNumber: 1, State: "disabled"}},
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if grid.Seats[0].State != SeatDisabled {
		t.Fatalf("expected seat 1 disabled, got %s", grid.Seats[0].State)
	}
}

func TestNormalizeAvailability_RejectsUnexpectedShapes(t *testing.T) {
	cases := map[string]SeatAvailability{
		"negative total": {TotalSeats: -1},
		"seat out of range": {
			TotalSeats: 3,
			Seats:      []SeatAvailabilitySeat{{SeatNumber: 4, Status: "PAID"}},
		},
		"seat zero": {
			TotalSeats: 3,
			Seats:      []SeatAvailabilitySeat{{SeatNumber: 0, Status: "PAID"}},
		},
		"duplicate seat": {
			TotalSeats: 3,
			Seats: []SeatAvailabilitySeat{
				{SeatNumber: 1, Status: "PAID"},
				{SeatNumber: 1, Status: "RESERVED"},
			},
		},
		"unknown status": {
			TotalSeats: 3,
			Seats:      []SeatAvailabilitySeat{{SeatNumber: 1, Status: "BROKEN"}},
		},
		"missing status": {
			TotalSeats: 3,
			Seats:      []SeatAvailabilitySeat{{SeatNumber: 1}},
		},
		"conflicting fields": {
			TotalSeats: 3,
			Seats:      []SeatAvailabilitySeat{{SeatNumber: 1, Status: "PAID", State: "RESERVED"}},
		},
	}

	for name, raw := range cases {
		if _, err := NormalizeAvailability(raw); !errors.Is(err, ErrUnexpectedShape) {
			t.Fatalf("%s: expected ErrUnexpectedShape, got %v", name, err)
		}
	}
}

func TestNormalizeSeatDetail(t *testing.T) {
	state := "paid"
	detail, err := NormalizeSeatDetail(SeatDetailPayload{
		ScheduleID:    7,
		SeatNumber:    3,
		Reserved:      true,
		ReservationID: 41,
		PassengerName: " Ana ",
		Paid:          true,
		State:         &state,
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if detail.State == nil || *detail.State != SeatPaid {
		t.Fatalf("expected PAID state, got %v", detail.State)
	}
	if detail.PassengerName != "Ana" {
		t.Fatalf("unexpected passenger name: %q", detail.PassengerName)
	}

	detail, err = NormalizeSeatDetail(SeatDetailPayload{SeatNumber: 3})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if detail.State != nil {
		t.Fatalf("expected nil state, got %v", *detail.State)
	}

	if _, err := NormalizeSeatDetail(SeatDetailPayload{SeatNumber: 0}); !errors.Is(err, ErrUnexpectedShape) {
		t.Fatalf("expected ErrUnexpectedShape, got %v", err)
	}
}

func TestParseRole(t *testing.T) {
	if got := ParseRole("role_conductor"); got != RoleConductor {
		t.Fatalf("expected CONDUCTOR, got %q", got)
	}
	if got := ParseRole("guest"); got != "" {
		t.Fatalf("expected empty role, got %q", got)
	}
}

func TestSeatGrid_Summary(t *testing.T) {
	grid, err := NormalizeAvailability(SeatAvailability{
		TotalSeats: 5,
		Seats: []SeatAvailabilitySeat{
			{SeatNumber: 2, Status: "PAID"},
			{SeatNumber: 4, Status: "RESERVED"},
		},
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got := grid.Counts()[SeatAvailable]; got != 3 {
		t.Fatalf("expected 3 available, got %d", got)
	}
	want := "Available: 3 • Reserved: 1 • Paid: 1 • Disabled: 0 • Total: 5"
	if got := grid.Summary(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestSeatDetail_Rows(t *testing.T) {
	disabled := SeatDisabled
	rows := SeatDetail{SeatNumber: 3, Reserved: true, ReservationID: 41, PassengerName: "Ana", State: &disabled}.Rows()
	want := []DetailRow{
		{"Reserved", "yes"},
		{"Paid", "no"},
		{"Reservation", "#41"},
		{"Passenger", "Ana"},
		{"Manual state", "Disabled"},
	}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %+v", len(want), rows)
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Fatalf("row %d: expected %+v, got %+v", i, want[i], rows[i])
		}
	}

	bare := SeatDetail{SeatNumber: 1}.Rows()
	if len(bare) != 3 || bare[2].Value != "-" {
		t.Fatalf("expected reserved, paid and empty manual state, got %+v", bare)
	}
}
