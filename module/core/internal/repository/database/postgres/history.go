package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/domain"
	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/internal/repository/database"
)

var _ database.HistoryRepository = (*HistoryRepo)(nil)

type HistoryRepo struct {
	db *sql.DB
}

func NewHistoryRepo(db *sql.DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

func (r *HistoryRepo) Insert(ctx context.Context, vl *domain.VehicleLocation) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO location_history (vehicle_id, latitude, longitude, speed, heading, timestamp)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		vl.VehicleID, vl.Sample.Lat, vl.Sample.Lon, vl.Sample.SpeedKph, vl.Sample.Heading, vl.Sample.Timestamp,
	)
	return err
}

func (r *HistoryRepo) GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.VehicleLocation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT vehicle_id, latitude, longitude, speed, heading, timestamp
		 FROM location_history
		 WHERE vehicle_id = $1 AND timestamp >= $2 AND timestamp <= $3
		 ORDER BY timestamp ASC`,
		query.VehicleID, query.Start, query.End,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.VehicleLocation
	for rows.Next() {
		var vl domain.VehicleLocation
		if err := rows.Scan(&vl.VehicleID, &vl.Sample.Lat, &vl.Sample.Lon,
			&vl.Sample.SpeedKph, &vl.Sample.Heading, &vl.Sample.Timestamp); err != nil {
			return nil, err
		}
		results = append(results, vl)
	}
	return results, rows.Err()
}

func (r *HistoryRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM location_history WHERE timestamp < $1`,
		cutoff,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
