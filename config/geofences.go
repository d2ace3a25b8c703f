package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/domain"
)

type geofenceSeedFile struct {
	Geofences []geofenceSeed `yaml:"geofences"`
}

type geofenceSeed struct {
	ID           string  `yaml:"id"`
	Name         string  `yaml:"name"`
	Type         string  `yaml:"type"`
	Color        string  `yaml:"color"`
	Latitude     float64 `yaml:"latitude"`
	Longitude    float64 `yaml:"longitude"`
	RadiusMeters float64 `yaml:"radius_meters"`
	AlertOnEntry bool    `yaml:"alert_on_entry"`
	AlertOnExit  bool    `yaml:"alert_on_exit"`
	NotifyAdmin  bool    `yaml:"notify_admin"`
	NotifyDriver bool    `yaml:"notify_driver"`
}

// LoadGeofenceSeed reads the optional YAML seed used before the registry's
// first database reload. An empty path is not an error.
func LoadGeofenceSeed(path string) ([]domain.Geofence, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read geofence seed: %w", err)
	}

	var file geofenceSeedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse geofence seed: %w", err)
	}

	zones := make([]domain.Geofence, 0, len(file.Geofences))
	for _, g := range file.Geofences {
		zone := domain.Geofence{
			ID:           g.ID,
			Name:         g.Name,
			Type:         g.Type,
			Color:        g.Color,
			Center:       domain.Coordinate{Lat: g.Latitude, Lon: g.Longitude},
			RadiusMeters: g.RadiusMeters,
			AlertOnEntry: g.AlertOnEntry,
			AlertOnExit:  g.AlertOnExit,
			NotifyAdmin:  g.NotifyAdmin,
			NotifyDriver: g.NotifyDriver,
			Active:       true,
		}
		if err := zone.Validate(); err != nil {
			return nil, fmt.Errorf("geofence %q: %w", g.ID, err)
		}
		zones = append(zones, zone)
	}
	return zones, nil
}
