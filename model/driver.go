package model

type DriverLocation struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
	UpdatedAt string  `json:"updatedAt,omitempty"`
}
