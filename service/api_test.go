package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"transpo-cli/model"
)

func TestLoginKeepsSessionCookie(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			var req model.LoginRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("decode login: %v", err)
			}
			if req.Username != "carla" || req.Password != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "abc", Path: "/"})
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"message":"Login successful","username":"carla","roles":[{"authority":"ROLE_CONDUCTOR"}]}`))
		case "/auth/whoami":
			if c, err := r.Cookie("JSESSIONID"); err != nil || c.Value != "abc" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"authenticated":false}`))
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"authenticated":true,"username":"carla","role":"CONDUCTOR","assignedBusId":3,"assignedBusNumber":"B-12"}`))
		default:
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server)

	res, err := client.Login(context.Background(), "carla", "secret")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if res.Username != "carla" || len(res.Roles) != 1 {
		t.Fatalf("unexpected login response: %+v", res)
	}

	me, err := client.Whoami(context.Background())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if me.Role != "CONDUCTOR" || me.AssignedBusNumber != "B-12" {
		t.Fatalf("unexpected whoami: %+v", me)
	}

	if err := client.ClearSession(); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if _, err := client.Whoami(context.Background()); !IsUnauthorized(err) {
		t.Fatalf("expected unauthorized after clearing session, got %v", err)
	}
}

func TestSearchSchedules_OK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/schedules/search" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("pickup") != "Kandy" || r.URL.Query().Get("drop") != "Colombo" {
			t.Fatalf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":7,"busId":3,"busNumber":"B-12","origin":"Kandy","destination":"Colombo","departureTime":"2026-03-04T08:30:00","fare":450.0,"availableSeats":31}]`))
	}))
	defer server.Close()

	client := newTestClient(t, server)

	schedules, err := client.SearchSchedules(context.Background(), "Kandy", "Colombo")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(schedules) != 1 || schedules[0].BusNumber != "B-12" {
		t.Fatalf("unexpected schedules: %+v", schedules)
	}
}

func TestBookSeat_PostsPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/reservations/book" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req model.BookingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode booking: %v", err)
		}
		if req.ScheduleId != 7 || req.SeatNumber != 5 || req.PassengerName != "Ana" {
			t.Fatalf("unexpected booking: %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":99,"scheduleId":7,"seatNumber":5,"passengerName":"Ana"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)

	reservation, err := client.BookSeat(context.Background(), model.BookingRequest{ScheduleId: 7, SeatNumber: 5, PassengerName: "Ana"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if reservation.Id != 99 {
		t.Fatalf("unexpected reservation: %+v", reservation)
	}
}

func TestPayReservation_FailedStatusIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"reservationId":99,"status":"FAILED","message":"Already paid"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)

	if _, err := client.PayReservation(context.Background(), 99, "", ""); err == nil || err.Error() != "Already paid" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCancelReservation_SendsDelete(t *testing.T) {
	var gotMethod, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newTestClient(t, server)

	if err := client.CancelReservation(context.Background(), 99); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/api/reservations/99" {
		t.Fatalf("unexpected request: %s %s", gotMethod, gotPath)
	}
}

func TestUpdateDriverLocation_ValidatesCoordinates(t *testing.T) {
	client, err := NewClient(Options{})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if err := client.UpdateDriverLocation(context.Background(), 91, 0); err == nil {
		t.Fatal("expected error")
	}
}
