package domain

import "time"

// Vehicle is the current-state record owned by the state store. It is only
// mutated through accepted ingestion events and the presence sweep.
type Vehicle struct {
	ID           string          `json:"id"`
	Number       string          `json:"number"`
	LicensePlate string          `json:"license_plate"`
	Type         string          `json:"type"`
	DriverID     string          `json:"driver_id,omitempty"`
	DriverName   string          `json:"driver_name,omitempty"`
	CompanyName  string          `json:"company_name,omitempty"`
	RouteName    string          `json:"route_name,omitempty"`
	Verified     bool            `json:"verified"`
	Active       bool            `json:"active"`
	Online       bool            `json:"online"`
	LastSeenAt   time.Time       `json:"last_seen_at"`
	Current      *LocationSample `json:"current_location,omitempty"`
}
