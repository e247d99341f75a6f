package service

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"transpo-cli/model"
)

// GetSchedules returns every schedule known to the backend.
func (c *Client) GetSchedules(ctx context.Context) ([]model.Schedule, error) {
	var schedules []model.Schedule
	if err := c.getJSON(ctx, c.endpoint("/api/schedules", nil), &schedules); err != nil {
		return nil, err
	}
	return schedules, nil
}

// SearchSchedules finds schedules whose route covers pickup then drop.
func (c *Client) SearchSchedules(ctx context.Context, pickup string, drop string) ([]model.Schedule, error) {
	pickup = strings.TrimSpace(pickup)
	drop = strings.TrimSpace(drop)
	if pickup == "" || drop == "" {
		return nil, errors.New("pickup and drop are required")
	}
	query := url.Values{}
	query.Set("pickup", pickup)
	query.Set("drop", drop)

	var schedules []model.Schedule
	if err := c.getJSON(ctx, c.endpoint("/api/schedules/search", query), &schedules); err != nil {
		return nil, err
	}
	return schedules, nil
}

// GetBuses returns the fleet.
func (c *Client) GetBuses(ctx context.Context) ([]model.Bus, error) {
	var buses []model.Bus
	if err := c.getJSON(ctx, c.endpoint("/api/buses", nil), &buses); err != nil {
		return nil, err
	}
	return buses, nil
}
