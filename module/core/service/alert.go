package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/domain"
	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/internal/repository/database"
	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/internal/repository/publisher"
)

// AlertService owns the emergency alert lifecycle: created active by a
// sender, location updated while active, resolved by an admin or by the
// sender cancelling.
type AlertService struct {
	repo      database.AlertRepository
	publisher publisher.EmergencyPublisher
	broadcast Broadcaster
}

func NewAlertService(repo database.AlertRepository, pub publisher.EmergencyPublisher, broadcast Broadcaster) *AlertService {
	return &AlertService{repo: repo, publisher: pub, broadcast: broadcast}
}

func (s *AlertService) Create(ctx context.Context, senderID, senderRole, vehicleID, message string, location domain.Coordinate) (*domain.EmergencyAlert, error) {
	if err := location.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	alert := &domain.EmergencyAlert{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		SenderRole: senderRole,
		VehicleID:  vehicleID,
		Location:   location,
		Message:    message,
		Status:     domain.AlertActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Insert(ctx, alert); err != nil {
		return nil, err
	}

	s.notify(ctx, alert, domain.EventEmergencyAlert)
	return alert, nil
}

// UpdateLocation moves an active alert — live tracking of the sender.
func (s *AlertService) UpdateLocation(ctx context.Context, alertID string, location domain.Coordinate) (*domain.EmergencyAlert, error) {
	if err := location.Validate(); err != nil {
		return nil, err
	}

	alert, err := s.repo.Get(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if alert.Status == domain.AlertResolved {
		return nil, domain.ErrAlertNotActive
	}

	alert.Location = location
	alert.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, alert); err != nil {
		return nil, err
	}

	s.notify(ctx, alert, domain.EventEmergencyAlert)
	return alert, nil
}

func (s *AlertService) Acknowledge(ctx context.Context, alertID string) (*domain.EmergencyAlert, error) {
	alert, err := s.repo.Get(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if alert.Status != domain.AlertActive {
		return nil, domain.ErrAlertNotActive
	}

	alert.Status = domain.AlertAcknowledged
	alert.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, alert); err != nil {
		return nil, err
	}

	s.notify(ctx, alert, domain.EventEmergencyAlert)
	return alert, nil
}

// Resolve closes an alert. Allowed for an administrator or for the sender
// cancelling their own alert.
func (s *AlertService) Resolve(ctx context.Context, alertID, requesterID, requesterRole string) (*domain.EmergencyAlert, error) {
	alert, err := s.repo.Get(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if alert.Status == domain.AlertResolved {
		return nil, domain.ErrAlertNotActive
	}
	if requesterRole != "admin" && requesterID != alert.SenderID {
		return nil, domain.ErrAlertNotResolver
	}

	now := time.Now()
	alert.Status = domain.AlertResolved
	alert.UpdatedAt = now
	alert.ResolvedAt = &now
	if err := s.repo.Update(ctx, alert); err != nil {
		return nil, err
	}

	s.notify(ctx, alert, domain.EventEmergencyResolved)
	return alert, nil
}

func (s *AlertService) notify(ctx context.Context, alert *domain.EmergencyAlert, eventType string) {
	if err := s.publisher.PublishEmergency(ctx, alert); err != nil {
		log.Printf("publish emergency alert %s: %v", alert.ID, err)
	}
	s.broadcast.Publish(domain.GroupAdministrators, domain.Event{Type: eventType, Data: alert})
}
