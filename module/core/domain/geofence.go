package domain

import (
	"errors"
	"time"
)

const (
	MinGeofenceRadiusMeters = 10
	MaxGeofenceRadiusMeters = 10000
)

var ErrInvalidRadius = errors.New("radius: must be between 10 and 10000 meters")

// Geofence is an administrator-defined circular zone. The core treats it as
// read-only; creation and mutation happen in the admin collaborator.
type Geofence struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Type         string     `json:"type"`
	Color        string     `json:"color,omitempty"`
	Center       Coordinate `json:"center"`
	RadiusMeters float64    `json:"radius_meters"`
	AlertOnEntry bool       `json:"alert_on_entry"`
	AlertOnExit  bool       `json:"alert_on_exit"`
	NotifyAdmin  bool       `json:"notify_admin"`
	NotifyDriver bool       `json:"notify_driver"`
	Active       bool       `json:"active"`
}

func (g Geofence) Validate() error {
	if err := g.Center.Validate(); err != nil {
		return err
	}
	if g.RadiusMeters < MinGeofenceRadiusMeters || g.RadiusMeters > MaxGeofenceRadiusMeters {
		return ErrInvalidRadius
	}
	return nil
}

type GeofenceEventType string

const (
	GeofenceEntry GeofenceEventType = "entry"
	GeofenceExit  GeofenceEventType = "exit"
)

// GeofenceEvent is created once per detected transition and never mutated.
type GeofenceEvent struct {
	ID         string            `json:"event_id"`
	GeofenceID string            `json:"geofence_id"`
	VehicleID  string            `json:"vehicle_id"`
	DriverID   string            `json:"driver_id,omitempty"`
	Type       GeofenceEventType `json:"event_type"`
	Location   Coordinate        `json:"location"`
	Timestamp  time.Time         `json:"timestamp"`
}

// GeofenceAlert pairs a transition event with the zone that produced it so
// downstream consumers can render name, color and notify targets without a
// registry lookup.
type GeofenceAlert struct {
	Event    GeofenceEvent `json:"event"`
	Geofence Geofence      `json:"geofence"`
}
