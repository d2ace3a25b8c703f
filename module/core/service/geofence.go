package service

import (
	"hash/fnv"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/domain"
	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/geo"
)

const evaluatorLocks = 64

// zoneSource is the registry surface the evaluator needs.
type zoneSource interface {
	Snapshot() []domain.Geofence
}

// GeofenceService converts a raw location into zero or more transition
// events, keeping idempotent per-vehicle membership. Evaluation for a given
// vehicle is serialized by a striped lock; different vehicles evaluate
// concurrently.
type GeofenceService struct {
	zones   zoneSource
	members MembershipStore

	// HysteresisMeters widens the exit boundary: once inside, a vehicle
	// only leaves when distance > radius + hysteresis. Zero preserves the
	// original exact-boundary behavior.
	hysteresis float64

	distance func(a, b domain.Coordinate) float64
	locks    [evaluatorLocks]sync.Mutex
}

func NewGeofenceService(zones zoneSource, members MembershipStore, hysteresisMeters float64) *GeofenceService {
	return &GeofenceService{
		zones:      zones,
		members:    members,
		hysteresis: hysteresisMeters,
		distance:   geo.DistanceMeters,
	}
}

func (s *GeofenceService) lockFor(vehicleID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(vehicleID))
	return &s.locks[h.Sum32()%evaluatorLocks]
}

// Evaluate recomputes the vehicle's zone membership for the new sample and
// returns the transitions that carry an enabled alert flag. The membership
// set is replaced in one swap; a zone whose evaluation fails keeps its
// previous membership bit and emits nothing, so one bad zone never corrupts
// or suppresses the others.
func (s *GeofenceService) Evaluate(vehicle *domain.Vehicle, sample domain.LocationSample) []domain.GeofenceAlert {
	mu := s.lockFor(vehicle.ID)
	mu.Lock()
	defer mu.Unlock()

	previous := s.members.Get(vehicle.ID)
	next := make(map[string]bool)
	var alerts []domain.GeofenceAlert

	for _, zone := range s.zones.Snapshot() {
		if !zone.Active {
			continue
		}

		wasInside := previous[zone.ID]
		inside, err := s.evaluateZone(zone, sample.Coordinate, wasInside)
		if err != nil {
			log.Printf("geofence %s evaluation skipped: %v", zone.ID, err)
			if wasInside {
				next[zone.ID] = true
			}
			continue
		}

		if inside {
			next[zone.ID] = true
		}

		switch {
		case inside && !wasInside && zone.AlertOnEntry:
			alerts = append(alerts, s.alert(zone, vehicle, sample, domain.GeofenceEntry))
		case !inside && wasInside && zone.AlertOnExit:
			alerts = append(alerts, s.alert(zone, vehicle, sample, domain.GeofenceExit))
		}
	}

	s.members.Replace(vehicle.ID, next)
	return alerts
}

// evaluateZone is the per-zone failure boundary. A sample exactly at
// distance == radius counts as inside.
func (s *GeofenceService) evaluateZone(zone domain.Geofence, point domain.Coordinate, wasInside bool) (bool, error) {
	if err := zone.Validate(); err != nil {
		return false, err
	}

	dist := s.distance(point, zone.Center)
	boundary := zone.RadiusMeters
	if wasInside {
		boundary += s.hysteresis
	}
	return dist <= boundary, nil
}

func (s *GeofenceService) alert(zone domain.Geofence, vehicle *domain.Vehicle, sample domain.LocationSample, kind domain.GeofenceEventType) domain.GeofenceAlert {
	return domain.GeofenceAlert{
		Event: domain.GeofenceEvent{
			ID:         uuid.NewString(),
			GeofenceID: zone.ID,
			VehicleID:  vehicle.ID,
			DriverID:   vehicle.DriverID,
			Type:       kind,
			Location:   sample.Coordinate,
			Timestamp:  sampleTime(sample),
		},
		Geofence: zone,
	}
}

// Occupied reports the zones the vehicle currently occupies, mainly for
// observability endpoints.
func (s *GeofenceService) Occupied(vehicleID string) []string {
	set := s.members.Get(vehicleID)
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

// sampleTime normalizes zero timestamps to now so persisted events always
// carry a usable time.
func sampleTime(sample domain.LocationSample) time.Time {
	if sample.Timestamp.IsZero() {
		return time.Now()
	}
	return sample.Timestamp
}
