package domain

import (
	"errors"
	"time"
)

var (
	ErrInvalidCoordinate = errors.New("coordinate out of range")
	ErrMissingVehicleID  = errors.New("vehicle_id: required")
	ErrMissingLocation   = errors.New("location: required")
	ErrVehicleNotFound   = errors.New("vehicle not found")
)

type Coordinate struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

func (c Coordinate) Validate() error {
	if c.Lat < -90 || c.Lat > 90 {
		return ErrInvalidCoordinate
	}
	if c.Lon < -180 || c.Lon > 180 {
		return ErrInvalidCoordinate
	}
	return nil
}

// LocationSample is immutable once created; heading wraps at 360.
type LocationSample struct {
	Coordinate
	SpeedKph  float64   `json:"speed"`
	Heading   float64   `json:"heading"`
	Accuracy  *float64  `json:"accuracy,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (s LocationSample) Validate() error {
	if err := s.Coordinate.Validate(); err != nil {
		return err
	}
	if s.SpeedKph < 0 {
		return errors.New("speed: must be non-negative")
	}
	return nil
}

type VehicleLocation struct {
	VehicleID string         `json:"vehicle_id"`
	DriverID  string         `json:"driver_id,omitempty"`
	Sample    LocationSample `json:"location"`
}

type HistoryQuery struct {
	VehicleID string
	Start     time.Time
	End       time.Time
}

// VehicleStats aggregates a history window for analytics consumers.
type VehicleStats struct {
	VehicleID      string  `json:"vehicle_id"`
	DistanceMeters float64 `json:"distance_meters"`
	AvgSpeedKph    float64 `json:"avg_speed_kph"`
	Samples        int     `json:"samples"`
}
