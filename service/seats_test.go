package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"transpo-cli/model"
)

func TestGetSeatAvailability_OK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/reservations/seat-availability" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("busNumber") != "B 12" || r.URL.Query().Get("scheduleId") != "7" {
			t.Fatalf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "busId": 3,
  "busNumber": "B 12",
  "scheduleId": 7,
  "totalSeats": 5,
  "seats": [
    {"seatNumber": 2, "status": "PAID"},
    {"seatNumber": 4, "status": "RESERVED", "passengerName": "Ana"}
  ]
}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)

	raw, err := client.GetSeatAvailability(context.Background(), "B 12", 7)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if raw.TotalSeats != 5 || len(raw.Seats) != 2 {
		t.Fatalf("unexpected payload: %+v", raw)
	}
	if raw.Seats[1].PassengerName != "Ana" {
		t.Fatalf("unexpected passenger: %+v", raw.Seats[1])
	}
}

func TestGetSeatAvailability_RequiresSelection(t *testing.T) {
	client, err := NewClient(Options{})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if _, err := client.GetSeatAvailability(context.Background(), " ", 7); err == nil {
		t.Fatal("expected error for empty bus number")
	}
	if _, err := client.GetSeatAvailability(context.Background(), "B1", 0); err == nil {
		t.Fatal("expected error for missing schedule")
	}
}

func TestGetSeatDetail_OK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/reservations/seat" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("scheduleId") != "7" || r.URL.Query().Get("seatNumber") != "3" {
			t.Fatalf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"seatNumber":3,"scheduleId":7,"reserved":true,"reservationId":41,"passengerName":"Ana","paid":false,"state":"RESERVED"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)

	detail, err := client.GetSeatDetail(context.Background(), 7, 3)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if detail.ReservationID != 41 || !detail.Reserved {
		t.Fatalf("unexpected detail: %+v", detail)
	}
	if detail.State == nil || *detail.State != model.SeatReserved {
		t.Fatalf("unexpected state: %v", detail.State)
	}
}

func TestGetSeatDetail_UnknownStateFailsLoudly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"seatNumber":3,"scheduleId":7,"state":"HALF_BROKEN"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)

	_, err := client.GetSeatDetail(context.Background(), 7, 3)
	if !errors.Is(err, model.ErrUnexpectedShape) {
		t.Fatalf("expected ErrUnexpectedShape, got %v", err)
	}
}

func TestUpdateSeatState_SendsPut(t *testing.T) {
	var gotMethod, gotState string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/reservations/seat/state" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		gotMethod = r.Method
		gotState = r.URL.Query().Get("state")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"Seat state updated"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)

	if err := client.UpdateSeatState(context.Background(), 7, 3, model.SeatDisabled); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if gotMethod != http.MethodPut {
		t.Fatalf("expected PUT, got %s", gotMethod)
	}
	if gotState != "DISABLED" {
		t.Fatalf("expected DISABLED, got %s", gotState)
	}
}

func TestUpdateSeatState_RejectsUnknownState(t *testing.T) {
	client, err := NewClient(Options{})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if err := client.UpdateSeatState(context.Background(), 7, 3, model.SeatState("SELECTED")); err == nil {
		t.Fatal("expected error")
	}
}

func TestGetSeatAvailability_FailsOnceWithoutRetry(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, server)

	if _, err := client.GetSeatAvailability(context.Background(), "B1", 7); err == nil {
		t.Fatal("expected error for 500")
	}
	if hits != 1 {
		t.Fatalf("expected 1 request, got %d", hits)
	}
}

func TestGetSeatDetail_FailsOnceWithoutRetry(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(t, server)

	if _, err := client.GetSeatDetail(context.Background(), 7, 3); err == nil {
		t.Fatal("expected error for 503")
	}
	if hits != 1 {
		t.Fatalf("expected 1 request, got %d", hits)
	}
}

func TestGetSeatAvailability_RejectsEmptyPayload(t *testing.T) {
	for name, body := range map[string]string{
		"empty body":    "",
		"empty object":  "{}",
		"no totalSeats": `{"busNumber":"B1","scheduleId":7,"seats":[]}`,
	} {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(body))
			}))
			defer server.Close()

			client := newTestClient(t, server)

			_, err := client.GetSeatAvailability(context.Background(), "B1", 7)
			if !errors.Is(err, model.ErrUnexpectedShape) {
				t.Fatalf("expected ErrUnexpectedShape, got %v", err)
			}
		})
	}
}

func TestGetSeatAvailability_AcceptsEmptyBus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"busNumber":"B1","scheduleId":7,"totalSeats":0,"seats":[]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)

	raw, err := client.GetSeatAvailability(context.Background(), "B1", 7)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if raw.TotalSeats != 0 || raw.BusNumber != "B1" {
		t.Fatalf("unexpected payload: %+v", raw)
	}
}
