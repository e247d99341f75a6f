package service

import (
	"context"
	"fmt"
	"math"
	"net/http"

	"transpo-cli/model"
)

// GetDriverBus returns the bus assigned to the session driver.
func (c *Client) GetDriverBus(ctx context.Context) (model.Bus, error) {
	var bus model.Bus
	if err := c.getJSON(ctx, c.endpoint("/api/driver/my-bus", nil), &bus); err != nil {
		return model.Bus{}, err
	}
	return bus, nil
}

// UpdateDriverLocation reports the driver's live position.
func (c *Client) UpdateDriverLocation(ctx context.Context, lat float64, lng float64) error {
	if math.IsNaN(lat) || math.IsNaN(lng) || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return fmt.Errorf("invalid coordinates %.6f,%.6f", lat, lng)
	}
	body := model.DriverLocation{Latitude: lat, Longitude: lng}
	return c.doJSON(ctx, http.MethodPost, c.endpoint("/api/driver/location", nil), body, nil)
}

// GetDriverLocation returns the last reported position.
func (c *Client) GetDriverLocation(ctx context.Context) (model.DriverLocation, error) {
	var loc model.DriverLocation
	if err := c.getJSON(ctx, c.endpoint("/api/driver/location", nil), &loc); err != nil {
		return model.DriverLocation{}, err
	}
	return loc, nil
}
