package publisher

import (
	"context"

	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/domain"
)

type GeofencePublisher interface {
	PublishAlert(ctx context.Context, alert *domain.GeofenceAlert) error
}

type EmergencyPublisher interface {
	PublishEmergency(ctx context.Context, alert *domain.EmergencyAlert) error
}
