package database

import (
	"context"
	"time"

	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/domain"
)

type VehicleRepository interface {
	GetAll(ctx context.Context) ([]domain.Vehicle, error)
	Get(ctx context.Context, vehicleID string) (*domain.Vehicle, error)
	UpdateLocation(ctx context.Context, vehicleID string, sample domain.LocationSample, online bool) error
	SetOnline(ctx context.Context, vehicleID string, online bool) error
}

type HistoryRepository interface {
	Insert(ctx context.Context, vl *domain.VehicleLocation) error
	GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.VehicleLocation, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type GeofenceRepository interface {
	GetActive(ctx context.Context) ([]domain.Geofence, error)
}

type GeofenceEventRepository interface {
	Insert(ctx context.Context, ev *domain.GeofenceEvent) error
}

type AlertRepository interface {
	Insert(ctx context.Context, alert *domain.EmergencyAlert) error
	Get(ctx context.Context, alertID string) (*domain.EmergencyAlert, error)
	Update(ctx context.Context, alert *domain.EmergencyAlert) error
}
