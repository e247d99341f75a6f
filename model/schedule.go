package model

import (
	"fmt"
	"strings"
	"time"
)

type Bus struct {
	Id         int64  `json:"id"`
	BusNumber  string `json:"busNumber"`
	BusName    string `json:"busName"`
	TotalSeats int    `json:"totalSeats"`
}

type Schedule struct {
	Id             int64   `json:"id"`
	BusId          int64   `json:"busId"`
	BusNumber      string  `json:"busNumber"`
	RouteId        int64   `json:"routeId"`
	Origin         string  `json:"origin"`
	Destination    string  `json:"destination"`
	DepartureTime  string  `json:"departureTime"`
	Fare           float64 `json:"fare"`
	AvailableSeats int     `json:"availableSeats"`
}

// backend timestamps are local date-times without a zone
var departureLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339,
}

// Departure parses DepartureTime in the given location.
func (s Schedule) Departure(loc *time.Location) (time.Time, error) {
	raw := strings.TrimSpace(s.DepartureTime)
	if raw == "" {
		return time.Time{}, fmt.Errorf("schedule %d has no departure time", s.Id)
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range departureLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: departure time %q", ErrUnexpectedShape, raw)
}
