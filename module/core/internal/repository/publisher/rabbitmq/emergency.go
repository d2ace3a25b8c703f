package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/domain"
	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/internal/repository/publisher"
)

var _ publisher.EmergencyPublisher = (*EmergencyPublisher)(nil)

type EmergencyPublisher struct {
	ch *amqp.Channel
}

func NewEmergencyPublisher(conn *amqp.Connection) (*EmergencyPublisher, error) {
	ch, err := declareTopology(conn, emergencyQueueName, emergencyRouteKey)
	if err != nil {
		return nil, err
	}
	return &EmergencyPublisher{ch: ch}, nil
}

func (p *EmergencyPublisher) PublishEmergency(ctx context.Context, alert *domain.EmergencyAlert) error {
	body, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("marshal emergency alert: %w", err)
	}

	return p.ch.PublishWithContext(ctx, exchangeName, emergencyRouteKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}
