package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/domain"
	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/internal/repository/database"
)

var _ database.VehicleRepository = (*VehicleRepo)(nil)

type VehicleRepo struct {
	db *sql.DB
}

func NewVehicleRepo(db *sql.DB) *VehicleRepo {
	return &VehicleRepo{db: db}
}

const vehicleColumns = `id, number, license_plate, type, driver_id, driver_name,
	company_name, route_name, verified, active, online, last_seen_at,
	last_latitude, last_longitude, last_speed, last_heading, last_sample_at`

func (r *VehicleRepo) GetAll(ctx context.Context) ([]domain.Vehicle, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *v)
	}
	return results, rows.Err()
}

func (r *VehicleRepo) Get(ctx context.Context, vehicleID string) (*domain.Vehicle, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`,
		vehicleID,
	)
	v, err := scanVehicle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrVehicleNotFound
	}
	return v, err
}

func (r *VehicleRepo) UpdateLocation(ctx context.Context, vehicleID string, sample domain.LocationSample, online bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE vehicles
		 SET last_latitude = $2, last_longitude = $3, last_speed = $4,
		     last_heading = $5, last_sample_at = $6, last_seen_at = now(),
		     online = $7
		 WHERE id = $1`,
		vehicleID, sample.Lat, sample.Lon, sample.SpeedKph, sample.Heading, sample.Timestamp, online,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrVehicleNotFound
	}
	return nil
}

func (r *VehicleRepo) SetOnline(ctx context.Context, vehicleID string, online bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE vehicles SET online = $2 WHERE id = $1`,
		vehicleID, online,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVehicle(row rowScanner) (*domain.Vehicle, error) {
	var (
		v          domain.Vehicle
		driverID   sql.NullString
		driverName sql.NullString
		company    sql.NullString
		route      sql.NullString
		lat        sql.NullFloat64
		lon        sql.NullFloat64
		speed      sql.NullFloat64
		heading    sql.NullFloat64
		sampleAt   sql.NullTime
	)
	err := row.Scan(
		&v.ID, &v.Number, &v.LicensePlate, &v.Type, &driverID, &driverName,
		&company, &route, &v.Verified, &v.Active, &v.Online, &v.LastSeenAt,
		&lat, &lon, &speed, &heading, &sampleAt,
	)
	if err != nil {
		return nil, err
	}
	v.DriverID = driverID.String
	v.DriverName = driverName.String
	v.CompanyName = company.String
	v.RouteName = route.String
	if lat.Valid && lon.Valid && sampleAt.Valid {
		v.Current = &domain.LocationSample{
			Coordinate: domain.Coordinate{Lat: lat.Float64, Lon: lon.Float64},
			SpeedKph:   speed.Float64,
			Heading:    heading.Float64,
			Timestamp:  sampleAt.Time,
		}
	}
	return &v, nil
}
