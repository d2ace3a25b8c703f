package domain

import "time"

// Subscriber groups for the event broadcaster.
const (
	GroupAdministrators = "administrators"
	GroupPublic         = "public"
	GroupDrivers        = "drivers"
)

// Event types carried on the websocket wire.
const (
	EventLocationUpdate    = "location_update"
	EventVehicleOffline    = "vehicle_offline"
	EventGeofenceAlert     = "geofence_alert"
	EventEmergencyAlert    = "emergency_alert"
	EventEmergencyResolved = "emergency_resolved"
)

// Event is a single frame fanned out to subscribers.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type LocationBroadcast struct {
	VehicleID    string         `json:"vehicle_id"`
	Number       string         `json:"vehicle_number"`
	LicensePlate string         `json:"license_plate"`
	Type         string         `json:"type"`
	DriverName   string         `json:"driver_name,omitempty"`
	CompanyName  string         `json:"company_name,omitempty"`
	RouteName    string         `json:"route_name,omitempty"`
	Location     LocationSample `json:"location"`
	Online       bool           `json:"is_online"`
}

type OfflineBroadcast struct {
	VehicleID    string `json:"vehicle_id"`
	Number       string `json:"vehicle_number"`
	LicensePlate string `json:"license_plate"`
	Online       bool   `json:"is_online"`
}

type GeofenceAlertBroadcast struct {
	EventID   string            `json:"event_id"`
	EventType GeofenceEventType `json:"event_type"`
	Geofence  GeofenceRef       `json:"geofence"`
	Vehicle   VehicleRef        `json:"vehicle"`
	Location  Coordinate        `json:"location"`
	Timestamp time.Time         `json:"timestamp"`
	Message   string            `json:"message"`
}

type GeofenceRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	Color string `json:"color,omitempty"`
}

type VehicleRef struct {
	ID         string `json:"id"`
	Number     string `json:"number"`
	Plate      string `json:"plate"`
	Type       string `json:"type"`
	DriverName string `json:"driver_name,omitempty"`
}
