package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"transpo-cli/model"
)

// BookSeat reserves a seat for the current passenger.
func (c *Client) BookSeat(ctx context.Context, req model.BookingRequest) (model.Reservation, error) {
	if req.ScheduleId <= 0 || req.SeatNumber <= 0 {
		return model.Reservation{}, errors.New("schedule id and seat number are required")
	}
	if strings.TrimSpace(req.PassengerName) == "" {
		return model.Reservation{}, errors.New("passenger name is required")
	}
	var reservation model.Reservation
	if err := c.doJSON(ctx, http.MethodPost, c.endpoint("/api/reservations/book", nil), req, &reservation); err != nil {
		return model.Reservation{}, err
	}
	return reservation, nil
}

// GetMyReservations lists the reservations owned by the session user.
func (c *Client) GetMyReservations(ctx context.Context) ([]model.Reservation, error) {
	var reservations []model.Reservation
	if err := c.getJSON(ctx, c.endpoint("/api/reservations/me", nil), &reservations); err != nil {
		return nil, err
	}
	return reservations, nil
}

// CancelReservation deletes a reservation.
func (c *Client) CancelReservation(ctx context.Context, reservationID int64) error {
	if reservationID <= 0 {
		return errors.New("reservation id is required")
	}
	endpoint := c.endpoint(fmt.Sprintf("/api/reservations/%d", reservationID), nil)
	return c.doJSON(ctx, http.MethodDelete, endpoint, nil, nil)
}

// PayReservation records a payment. A FAILED status from the backend
// is returned as an error.
func (c *Client) PayReservation(ctx context.Context, reservationID int64, method string, reference string) (model.PaymentResponse, error) {
	if reservationID <= 0 {
		return model.PaymentResponse{}, errors.New("reservation id is required")
	}
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = "CASH"
	}
	body := model.PaymentRequest{ReservationId: reservationID, Method: method, Reference: reference}

	var res model.PaymentResponse
	if err := c.doJSON(ctx, http.MethodPost, c.endpoint("/api/payments", nil), body, &res); err != nil {
		return model.PaymentResponse{}, err
	}
	if !res.Succeeded() {
		msg := strings.TrimSpace(res.Message)
		if msg == "" {
			msg = "payment was not accepted"
		}
		return res, errors.New(msg)
	}
	return res, nil
}
