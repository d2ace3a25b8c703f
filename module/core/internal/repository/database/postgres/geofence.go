package postgres

import (
	"context"
	"database/sql"

	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/domain"
	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/internal/repository/database"
)

var (
	_ database.GeofenceRepository      = (*GeofenceRepo)(nil)
	_ database.GeofenceEventRepository = (*GeofenceEventRepo)(nil)
)

type GeofenceRepo struct {
	db *sql.DB
}

func NewGeofenceRepo(db *sql.DB) *GeofenceRepo {
	return &GeofenceRepo{db: db}
}

func (r *GeofenceRepo) GetActive(ctx context.Context) ([]domain.Geofence, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, type, color, latitude, longitude, radius_meters,
		        alert_on_entry, alert_on_exit, notify_admin, notify_driver, active
		 FROM geofences WHERE active = true ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.Geofence
	for rows.Next() {
		var (
			g     domain.Geofence
			color sql.NullString
		)
		if err := rows.Scan(&g.ID, &g.Name, &g.Type, &color,
			&g.Center.Lat, &g.Center.Lon, &g.RadiusMeters,
			&g.AlertOnEntry, &g.AlertOnExit, &g.NotifyAdmin, &g.NotifyDriver, &g.Active); err != nil {
			return nil, err
		}
		g.Color = color.String
		results = append(results, g)
	}
	return results, rows.Err()
}

type GeofenceEventRepo struct {
	db *sql.DB
}

func NewGeofenceEventRepo(db *sql.DB) *GeofenceEventRepo {
	return &GeofenceEventRepo{db: db}
}

func (r *GeofenceEventRepo) Insert(ctx context.Context, ev *domain.GeofenceEvent) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO geofence_events (id, geofence_id, vehicle_id, driver_id, event_type, latitude, longitude, timestamp)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8)`,
		ev.ID, ev.GeofenceID, ev.VehicleID, ev.DriverID, string(ev.Type),
		ev.Location.Lat, ev.Location.Lon, ev.Timestamp,
	)
	return err
}
