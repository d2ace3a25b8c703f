package domain

import (
	"errors"
	"time"
)

type AlertStatus string

const (
	AlertActive       AlertStatus = "active"
	AlertAcknowledged AlertStatus = "acknowledged"
	AlertResolved     AlertStatus = "resolved"
)

var (
	ErrAlertNotFound    = errors.New("alert not found")
	ErrAlertNotActive   = errors.New("alert is not active")
	ErrAlertNotResolver = errors.New("only an admin or the sender may resolve an alert")
)

// EmergencyAlert is a mutable record: its location may be updated repeatedly
// while active (live tracking), and its status moves
// active -> acknowledged -> resolved.
type EmergencyAlert struct {
	ID         string      `json:"id"`
	SenderID   string      `json:"sender_id"`
	SenderRole string      `json:"sender_role"`
	VehicleID  string      `json:"vehicle_id,omitempty"`
	Location   Coordinate  `json:"location"`
	Message    string      `json:"message,omitempty"`
	Status     AlertStatus `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
	ResolvedAt *time.Time  `json:"resolved_at,omitempty"`
}
