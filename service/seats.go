package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"transpo-cli/model"
)

// GetSeatAvailability fetches the raw seat list for a bus and schedule.
// The backend filters passenger names by the caller's role.
func (c *Client) GetSeatAvailability(ctx context.Context, busNumber string, scheduleID int64) (model.SeatAvailability, error) {
	busNumber = strings.TrimSpace(busNumber)
	if busNumber == "" || scheduleID <= 0 {
		return model.SeatAvailability{}, errors.New("bus number and schedule id are required")
	}
	query := url.Values{}
	query.Set("busNumber", busNumber)
	query.Set("scheduleId", strconv.FormatInt(scheduleID, 10))

	// totalSeats shadows the embedded field so a missing value is
	// distinguishable from an empty bus.
	var payload struct {
		model.SeatAvailability
		TotalSeats *int `json:"totalSeats"`
	}
	if err := c.getJSONOnce(ctx, c.endpoint("/api/reservations/seat-availability", query), &payload); err != nil {
		return model.SeatAvailability{}, err
	}
	if payload.TotalSeats == nil {
		return model.SeatAvailability{}, fmt.Errorf("seat availability %s/%d: %w: missing totalSeats", busNumber, scheduleID, model.ErrUnexpectedShape)
	}
	availability := payload.SeatAvailability
	availability.TotalSeats = *payload.TotalSeats
	return availability, nil
}

// GetSeatDetail fetches reservation, payment and manual state for one seat.
func (c *Client) GetSeatDetail(ctx context.Context, scheduleID int64, seatNumber int) (model.SeatDetail, error) {
	if scheduleID <= 0 || seatNumber <= 0 {
		return model.SeatDetail{}, errors.New("schedule id and seat number are required")
	}
	query := url.Values{}
	query.Set("scheduleId", strconv.FormatInt(scheduleID, 10))
	query.Set("seatNumber", strconv.Itoa(seatNumber))

	var payload model.SeatDetailPayload
	if err := c.getJSONOnce(ctx, c.endpoint("/api/reservations/seat", query), &payload); err != nil {
		return model.SeatDetail{}, err
	}
	detail, err := model.NormalizeSeatDetail(payload)
	if err != nil {
		return model.SeatDetail{}, fmt.Errorf("seat detail %d/%d: %w", scheduleID, seatNumber, err)
	}
	return detail, nil
}

// UpdateSeatState sets the manual state of a seat. The backend decides
// whether the transition is legal.
func (c *Client) UpdateSeatState(ctx context.Context, scheduleID int64, seatNumber int, state model.SeatState) error {
	if scheduleID <= 0 || seatNumber <= 0 {
		return errors.New("schedule id and seat number are required")
	}
	if _, err := model.ParseSeatState(string(state)); err != nil {
		return err
	}
	query := url.Values{}
	query.Set("scheduleId", strconv.FormatInt(scheduleID, 10))
	query.Set("seatNumber", strconv.Itoa(seatNumber))
	query.Set("state", string(state))

	return c.doJSON(ctx, http.MethodPut, c.endpoint("/api/reservations/seat/state", query), nil, nil)
}
