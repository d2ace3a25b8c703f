package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/domain"
	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/internal/repository/database"
)

var _ database.AlertRepository = (*AlertRepo)(nil)

type AlertRepo struct {
	db *sql.DB
}

func NewAlertRepo(db *sql.DB) *AlertRepo {
	return &AlertRepo{db: db}
}

func (r *AlertRepo) Insert(ctx context.Context, alert *domain.EmergencyAlert) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO emergency_alerts
		 (id, sender_id, sender_role, vehicle_id, latitude, longitude, message, status, created_at, updated_at)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, NULLIF($7, ''), $8, $9, $10)`,
		alert.ID, alert.SenderID, alert.SenderRole, alert.VehicleID,
		alert.Location.Lat, alert.Location.Lon, alert.Message,
		string(alert.Status), alert.CreatedAt, alert.UpdatedAt,
	)
	return err
}

func (r *AlertRepo) Get(ctx context.Context, alertID string) (*domain.EmergencyAlert, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, sender_id, sender_role, vehicle_id, latitude, longitude,
		        message, status, created_at, updated_at, resolved_at
		 FROM emergency_alerts WHERE id = $1`,
		alertID,
	)

	var (
		a         domain.EmergencyAlert
		vehicleID sql.NullString
		message   sql.NullString
		status    string
		resolved  sql.NullTime
	)
	err := row.Scan(&a.ID, &a.SenderID, &a.SenderRole, &vehicleID,
		&a.Location.Lat, &a.Location.Lon, &message, &status,
		&a.CreatedAt, &a.UpdatedAt, &resolved)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAlertNotFound
	}
	if err != nil {
		return nil, err
	}
	a.VehicleID = vehicleID.String
	a.Message = message.String
	a.Status = domain.AlertStatus(status)
	if resolved.Valid {
		a.ResolvedAt = &resolved.Time
	}
	return &a, nil
}

func (r *AlertRepo) Update(ctx context.Context, alert *domain.EmergencyAlert) error {
	var resolved sql.NullTime
	if alert.ResolvedAt != nil {
		resolved = sql.NullTime{Time: *alert.ResolvedAt, Valid: true}
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE emergency_alerts
		 SET latitude = $2, longitude = $3, message = NULLIF($4, ''),
		     status = $5, updated_at = $6, resolved_at = $7
		 WHERE id = $1`,
		alert.ID, alert.Location.Lat, alert.Location.Lon, alert.Message,
		string(alert.Status), alert.UpdatedAt, resolved,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrAlertNotFound
	}
	return nil
}
