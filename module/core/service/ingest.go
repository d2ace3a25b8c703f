package service

import (
	"context"
	"log"

	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/domain"
	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/internal/repository/database"
	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/internal/repository/publisher"
)

// Broadcaster is the fan-out surface the pipeline publishes to. Publishing is
// fire-and-forget: a slow subscriber never blocks ingestion.
type Broadcaster interface {
	Publish(group string, event domain.Event)
}

// IngestService is the location ingestion gateway: validate, update state,
// evaluate geofences, broadcast, record history. Stages fail independently;
// only validation and state-update errors reach the sender.
type IngestService struct {
	state     *StateStore
	geofences *GeofenceService
	recorder  *HistoryRecorder
	events    database.GeofenceEventRepository
	alertPub  publisher.GeofencePublisher
	broadcast Broadcaster
}

func NewIngestService(
	state *StateStore,
	geofences *GeofenceService,
	recorder *HistoryRecorder,
	events database.GeofenceEventRepository,
	alertPub publisher.GeofencePublisher,
	broadcast Broadcaster,
) *IngestService {
	return &IngestService{
		state:     state,
		geofences: geofences,
		recorder:  recorder,
		events:    events,
		alertPub:  alertPub,
		broadcast: broadcast,
	}
}

// Ingest applies one live location update. The state update is synchronous
// and visible before any broadcast; the history append is fire-and-forget.
// Unverified or inactive vehicles are stored but neither evaluated nor
// broadcast.
func (s *IngestService) Ingest(ctx context.Context, msg domain.VehicleLocation) (*domain.Vehicle, error) {
	if msg.VehicleID == "" {
		return nil, domain.ErrMissingVehicleID
	}
	if err := msg.Sample.Validate(); err != nil {
		return nil, err
	}

	vehicle, err := s.state.ApplySample(ctx, msg.VehicleID, msg.DriverID, msg.Sample)
	if err != nil {
		return nil, err
	}

	s.recorder.Record(msg)

	if !vehicle.Verified || !vehicle.Active {
		return vehicle, nil
	}

	for _, alert := range s.geofences.Evaluate(vehicle, msg.Sample) {
		s.dispatchAlert(ctx, vehicle, alert)
	}

	s.broadcastLocation(vehicle, msg.Sample)
	return vehicle, nil
}

// SyncItem is one entry of a batch-sync request.
type SyncItem struct {
	VehicleID string                `json:"vehicle_id"`
	Sample    domain.LocationSample `json:"location"`
}

// SyncResult reports partial success for a batch.
type SyncResult struct {
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}

// IngestBatch replays buffered samples. Each item is applied as an ingestion
// event without per-item broadcast noise: state only advances for samples
// newer than the stored one, geofence transitions still fire for samples that
// advance state, and every accepted sample is recorded to history.
func (s *IngestService) IngestBatch(ctx context.Context, items []SyncItem) SyncResult {
	var res SyncResult
	for _, item := range items {
		if item.VehicleID == "" || item.Sample.Validate() != nil {
			res.Rejected++
			continue
		}

		vehicle, advanced, err := s.state.ApplySampleIfNewer(ctx, item.VehicleID, item.Sample)
		if err != nil {
			res.Rejected++
			continue
		}

		s.recorder.Record(domain.VehicleLocation{VehicleID: item.VehicleID, Sample: item.Sample})

		if advanced && vehicle.Verified && vehicle.Active {
			for _, alert := range s.geofences.Evaluate(vehicle, item.Sample) {
				s.dispatchAlert(ctx, vehicle, alert)
			}
		}
		res.Accepted++
	}
	return res
}

// dispatchAlert persists, publishes and broadcasts one transition. Each sink
// is its own failure boundary: persistence or bus errors are logged and do
// not stop the others.
func (s *IngestService) dispatchAlert(ctx context.Context, vehicle *domain.Vehicle, alert domain.GeofenceAlert) {
	if err := s.events.Insert(ctx, &alert.Event); err != nil {
		log.Printf("persist geofence event %s: %v", alert.Event.ID, err)
	}

	if err := s.alertPub.PublishAlert(ctx, &alert); err != nil {
		log.Printf("publish geofence alert %s: %v", alert.Event.ID, err)
	}

	payload := domain.GeofenceAlertBroadcast{
		EventID:   alert.Event.ID,
		EventType: alert.Event.Type,
		Geofence: domain.GeofenceRef{
			ID:    alert.Geofence.ID,
			Name:  alert.Geofence.Name,
			Type:  alert.Geofence.Type,
			Color: alert.Geofence.Color,
		},
		Vehicle: domain.VehicleRef{
			ID:         vehicle.ID,
			Number:     vehicle.Number,
			Plate:      vehicle.LicensePlate,
			Type:       vehicle.Type,
			DriverName: vehicle.DriverName,
		},
		Location:  alert.Event.Location,
		Timestamp: alert.Event.Timestamp,
		Message:   alertMessageFor(vehicle, alert),
	}
	event := domain.Event{Type: domain.EventGeofenceAlert, Data: payload}

	if alert.Geofence.NotifyAdmin {
		s.broadcast.Publish(domain.GroupAdministrators, event)
	}
	if alert.Geofence.NotifyDriver {
		s.broadcast.Publish(domain.GroupDrivers, event)
	}
}

func (s *IngestService) broadcastLocation(vehicle *domain.Vehicle, sample domain.LocationSample) {
	event := domain.Event{
		Type: domain.EventLocationUpdate,
		Data: domain.LocationBroadcast{
			VehicleID:    vehicle.ID,
			Number:       vehicle.Number,
			LicensePlate: vehicle.LicensePlate,
			Type:         vehicle.Type,
			DriverName:   vehicle.DriverName,
			CompanyName:  vehicle.CompanyName,
			RouteName:    vehicle.RouteName,
			Location:     sample,
			Online:       true,
		},
	}
	s.broadcast.Publish(domain.GroupAdministrators, event)
	s.broadcast.Publish(domain.GroupPublic, event)
}

func alertMessageFor(vehicle *domain.Vehicle, alert domain.GeofenceAlert) string {
	verb := "entered"
	if alert.Event.Type == domain.GeofenceExit {
		verb = "left"
	}
	return "Vehicle " + vehicle.Number + " " + verb + " " + alert.Geofence.Name
}
