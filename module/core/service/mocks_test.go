package service

import (
	"context"
	"sync"
	"time"

	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/domain"
)

type mockVehicleRepo struct {
	GetAllFn         func(ctx context.Context) ([]domain.Vehicle, error)
	GetFn            func(ctx context.Context, vehicleID string) (*domain.Vehicle, error)
	UpdateLocationFn func(ctx context.Context, vehicleID string, sample domain.LocationSample, online bool) error
	SetOnlineFn      func(ctx context.Context, vehicleID string, online bool) error
}

func (m *mockVehicleRepo) GetAll(ctx context.Context) ([]domain.Vehicle, error) {
	if m.GetAllFn != nil {
		return m.GetAllFn(ctx)
	}
	return nil, nil
}

func (m *mockVehicleRepo) Get(ctx context.Context, vehicleID string) (*domain.Vehicle, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, vehicleID)
	}
	return nil, domain.ErrVehicleNotFound
}

func (m *mockVehicleRepo) UpdateLocation(ctx context.Context, vehicleID string, sample domain.LocationSample, online bool) error {
	if m.UpdateLocationFn != nil {
		return m.UpdateLocationFn(ctx, vehicleID, sample, online)
	}
	return nil
}

func (m *mockVehicleRepo) SetOnline(ctx context.Context, vehicleID string, online bool) error {
	if m.SetOnlineFn != nil {
		return m.SetOnlineFn(ctx, vehicleID, online)
	}
	return nil
}

type mockHistoryRepo struct {
	InsertFn          func(ctx context.Context, vl *domain.VehicleLocation) error
	GetHistoryFn      func(ctx context.Context, query *domain.HistoryQuery) ([]domain.VehicleLocation, error)
	DeleteOlderThanFn func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (m *mockHistoryRepo) Insert(ctx context.Context, vl *domain.VehicleLocation) error {
	if m.InsertFn != nil {
		return m.InsertFn(ctx, vl)
	}
	return nil
}

func (m *mockHistoryRepo) GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.VehicleLocation, error) {
	if m.GetHistoryFn != nil {
		return m.GetHistoryFn(ctx, query)
	}
	return nil, nil
}

func (m *mockHistoryRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.DeleteOlderThanFn != nil {
		return m.DeleteOlderThanFn(ctx, cutoff)
	}
	return 0, nil
}

type mockGeofenceEventRepo struct {
	InsertFn func(ctx context.Context, ev *domain.GeofenceEvent) error
}

func (m *mockGeofenceEventRepo) Insert(ctx context.Context, ev *domain.GeofenceEvent) error {
	if m.InsertFn != nil {
		return m.InsertFn(ctx, ev)
	}
	return nil
}

type mockAlertRepo struct {
	InsertFn func(ctx context.Context, alert *domain.EmergencyAlert) error
	GetFn    func(ctx context.Context, alertID string) (*domain.EmergencyAlert, error)
	UpdateFn func(ctx context.Context, alert *domain.EmergencyAlert) error
}

func (m *mockAlertRepo) Insert(ctx context.Context, alert *domain.EmergencyAlert) error {
	if m.InsertFn != nil {
		return m.InsertFn(ctx, alert)
	}
	return nil
}

func (m *mockAlertRepo) Get(ctx context.Context, alertID string) (*domain.EmergencyAlert, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, alertID)
	}
	return nil, domain.ErrAlertNotFound
}

func (m *mockAlertRepo) Update(ctx context.Context, alert *domain.EmergencyAlert) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, alert)
	}
	return nil
}

type mockGeofencePublisher struct {
	PublishAlertFn func(ctx context.Context, alert *domain.GeofenceAlert) error
}

func (m *mockGeofencePublisher) PublishAlert(ctx context.Context, alert *domain.GeofenceAlert) error {
	if m.PublishAlertFn != nil {
		return m.PublishAlertFn(ctx, alert)
	}
	return nil
}

type mockEmergencyPublisher struct {
	PublishEmergencyFn func(ctx context.Context, alert *domain.EmergencyAlert) error
}

func (m *mockEmergencyPublisher) PublishEmergency(ctx context.Context, alert *domain.EmergencyAlert) error {
	if m.PublishEmergencyFn != nil {
		return m.PublishEmergencyFn(ctx, alert)
	}
	return nil
}

type publishedEvent struct {
	Group string
	Event domain.Event
}

// recordingBroadcaster collects published events for assertions.
type recordingBroadcaster struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (b *recordingBroadcaster) Publish(group string, event domain.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, publishedEvent{Group: group, Event: event})
}

func (b *recordingBroadcaster) all() []publishedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]publishedEvent, len(b.events))
	copy(out, b.events)
	return out
}

func (b *recordingBroadcaster) byType(eventType string) []publishedEvent {
	var out []publishedEvent
	for _, e := range b.all() {
		if e.Event.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
