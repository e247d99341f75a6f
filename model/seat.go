package model

import (
	"errors"
	"fmt"
	"strings"
)

// SeatState is the server-side status of a single seat.
type SeatState string

const (
	SeatAvailable SeatState = "AVAILABLE"
	SeatReserved  SeatState = "RESERVED"
	SeatPaid      SeatState = "PAID"
	SeatDisabled  SeatState = "DISABLED"
)

// SeatStates lists every state a conductor may set, in legend order.
var SeatStates = []SeatState{SeatAvailable, SeatReserved, SeatPaid, SeatDisabled}

// ErrUnexpectedShape is wrapped by every adapter error raised when a
// backend payload does not match the normalized types.
var ErrUnexpectedShape = errors.New("unexpected response shape")

// ParseSeatState parses a state name case-insensitively.
func ParseSeatState(raw string) (SeatState, error) {
	value := SeatState(strings.ToUpper(strings.TrimSpace(raw)))
	switch value {
	case SeatAvailable, SeatReserved, SeatPaid, SeatDisabled:
		return value, nil
	}
	return "", fmt.Errorf("%w: unknown seat state %q", ErrUnexpectedShape, raw)
}

func (s SeatState) Label() string {
	switch s {
	case SeatAvailable:
		return "Available"
	case SeatReserved:
		return "Reserved"
	case SeatPaid:
		return "Paid"
	case SeatDisabled:
		return "Disabled"
	default:
		return string(s)
	}
}

type Seat struct {
	Number        int
	State         SeatState
	PassengerName string
	ReservationID int64
}

// Mine reports whether the server disclosed the passenger name for this
// seat. The backend only does that for the owner and privileged roles.
func (s Seat) Mine() bool {
	return strings.TrimSpace(s.PassengerName) != ""
}

// SeatGrid is the dense seat layout of one (bus, schedule) pair.
// Seats[i].Number is always i+1 and len(Seats) == TotalSeats.
type SeatGrid struct {
	BusID      int64
	BusNumber  string
	ScheduleID int64
	TotalSeats int
	Seats      []Seat
}

// Seat returns the seat with the given number.
func (g SeatGrid) Seat(number int) (Seat, bool) {
	if number < 1 || number > len(g.Seats) {
		return Seat{}, false
	}
	return g.Seats[number-1], true
}

// Counts tallies the seats per state.
func (g SeatGrid) Counts() map[SeatState]int {
	counts := make(map[SeatState]int, len(SeatStates))
	for _, seat := range g.Seats {
		counts[seat.State]++
	}
	return counts
}

// Summary is the one-line tally shown under a seat map.
func (g SeatGrid) Summary() string {
	counts := g.Counts()
	return fmt.Sprintf("Available: %d • Reserved: %d • Paid: %d • Disabled: %d • Total: %d",
		counts[SeatAvailable], counts[SeatReserved], counts[SeatPaid], counts[SeatDisabled], g.TotalSeats)
}

// SeatAvailability is the wire shape of the seat availability endpoint.
type SeatAvailability struct {
	BusID      int64                  `json:"busId"`
	BusNumber  string                 `json:"busNumber"`
	ScheduleID int64                  `json:"scheduleId"`
	TotalSeats int                    `json:"totalSeats"`
	Seats      []SeatAvailabilitySeat `json:"seats"`
}

type SeatAvailabilitySeat struct {
	SeatNumber    int    `json:"seatNumber"`
	Status        string `json:"status"`
	State         string `json:"state"`
	PassengerName string `json:"passengerName"`
	ReservationID int64  `json:"reservationId"`
}

// SeatDetail is the extended per-seat view shown to conductors.
// State is nil when no manual state was ever recorded.
type SeatDetail struct {
	ScheduleID    int64
	SeatNumber    int
	Reserved      bool
	ReservationID int64
	PassengerName string
	Paid          bool
	State         *SeatState
}

// SeatDetailPayload is the wire shape of the seat detail endpoint.
type SeatDetailPayload struct {
	ScheduleID    int64   `json:"scheduleId"`
	SeatNumber    int     `json:"seatNumber"`
	Reserved      bool    `json:"reserved"`
	ReservationID int64   `json:"reservationId"`
	PassengerName string  `json:"passengerName"`
	Paid          bool    `json:"paid"`
	State         *string `json:"state"`
}

// DetailRow is one labelled line of a seat detail panel.
type DetailRow struct {
	Label string
	Value string
}

// Rows lists the detail fields in display order. Reservation and
// passenger are left out when the server sent none.
func (d SeatDetail) Rows() []DetailRow {
	rows := []DetailRow{
		{"Reserved", yesNo(d.Reserved)},
		{"Paid", yesNo(d.Paid)},
	}
	if d.ReservationID > 0 {
		rows = append(rows, DetailRow{"Reservation", fmt.Sprintf("#%d", d.ReservationID)})
	}
	if d.PassengerName != "" {
		rows = append(rows, DetailRow{"Passenger", d.PassengerName})
	}
	state := "-"
	if d.State != nil {
		state = d.State.Label()
	}
	return append(rows, DetailRow{"Manual state", state})
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// NormalizeSeatDetail validates a detail payload.
func NormalizeSeatDetail(raw SeatDetailPayload) (SeatDetail, error) {
	if raw.SeatNumber < 1 {
		return SeatDetail{}, fmt.Errorf("%w: seat number %d", ErrUnexpectedShape, raw.SeatNumber)
	}
	detail := SeatDetail{
		ScheduleID:    raw.ScheduleID,
		SeatNumber:    raw.SeatNumber,
		Reserved:      raw.Reserved,
		ReservationID: raw.ReservationID,
		PassengerName: strings.TrimSpace(raw.PassengerName),
		Paid:          raw.Paid,
	}
	if raw.State != nil && strings.TrimSpace(*raw.State) != "" {
		state, err := ParseSeatState(*raw.State)
		if err != nil {
			return SeatDetail{}, err
		}
		detail.State = &state
	}
	return detail, nil
}

// NormalizeAvailability converts a sparse availability payload into a
// dense SeatGrid. Seats the server omitted are AVAILABLE.
func NormalizeAvailability(raw SeatAvailability) (SeatGrid, error) {
	if raw.TotalSeats < 0 {
		return SeatGrid{}, fmt.Errorf("%w: negative totalSeats %d", ErrUnexpectedShape, raw.TotalSeats)
	}

	grid := SeatGrid{
		BusID:      raw.BusID,
		BusNumber:  raw.BusNumber,
		ScheduleID: raw.ScheduleID,
		TotalSeats: raw.TotalSeats,
		Seats:      make([]Seat, raw.TotalSeats),
	}
	for i := range grid.Seats {
		grid.Seats[i] = Seat{Number: i + 1, State: SeatAvailable}
	}

	seen := make(map[int]bool, len(raw.Seats))
	for _, s := range raw.Seats {
		if s.SeatNumber < 1 || s.SeatNumber > raw.TotalSeats {
			return SeatGrid{}, fmt.Errorf("%w: seat %d outside 1..%d", ErrUnexpectedShape, s.SeatNumber, raw.TotalSeats)
		}
		if seen[s.SeatNumber] {
			return SeatGrid{}, fmt.Errorf("%w: seat %d listed twice", ErrUnexpectedShape, s.SeatNumber)
		}
		seen[s.SeatNumber] = true

		state, err := wireSeatState(s)
		if err != nil {
			return SeatGrid{}, fmt.Errorf("seat %d: %w", s.SeatNumber, err)
		}
		grid.Seats[s.SeatNumber-1] = Seat{
			Number:        s.SeatNumber,
			State:         state,
			PassengerName: strings.TrimSpace(s.PassengerName),
			ReservationID: s.ReservationID,
		}
	}
	return grid, nil
}

func wireSeatState(s SeatAvailabilitySeat) (SeatState, error) {
	status := strings.TrimSpace(s.Status)
	state := strings.TrimSpace(s.State)
	switch {
	case status == "" && state == "":
		return "", fmt.Errorf("%w: missing status", ErrUnexpectedShape)
	case status != "" && state != "" && !strings.EqualFold(status, state):
		return "", fmt.Errorf("%w: status %q conflicts with state %q", ErrUnexpectedShape, status, state)
	case status != "":
		return ParseSeatState(status)
	default:
		return ParseSeatState(state)
	}
}
