package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/domain"
	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/internal/repository/publisher"
)

var _ publisher.GeofencePublisher = (*GeofencePublisher)(nil)

const (
	exchangeName       = "fleet.events"
	geofenceQueueName  = "geofence_alerts"
	emergencyQueueName = "emergency_alerts"
	geofenceRouteKey   = "alert.geofence"
	emergencyRouteKey  = "alert.emergency"
)

type GeofencePublisher struct {
	ch *amqp.Channel
}

func NewGeofencePublisher(conn *amqp.Connection) (*GeofencePublisher, error) {
	ch, err := declareTopology(conn, geofenceQueueName, geofenceRouteKey)
	if err != nil {
		return nil, err
	}
	return &GeofencePublisher{ch: ch}, nil
}

func declareTopology(conn *amqp.Connection, queue, routingKey string) (*amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchangeName, "direct", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(queue, routingKey, exchangeName, false, nil); err != nil {
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	return ch, nil
}

type alertMessage struct {
	EventID    string                   `json:"event_id"`
	Event      domain.GeofenceEventType `json:"event"`
	GeofenceID string                   `json:"geofence_id"`
	Geofence   string                   `json:"geofence_name"`
	VehicleID  string                   `json:"vehicle_id"`
	DriverID   string                   `json:"driver_id,omitempty"`
	Location   alertLocation            `json:"location"`
	Timestamp  int64                    `json:"timestamp"`
}

type alertLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (p *GeofencePublisher) PublishAlert(ctx context.Context, alert *domain.GeofenceAlert) error {
	msg := alertMessage{
		EventID:    alert.Event.ID,
		Event:      alert.Event.Type,
		GeofenceID: alert.Geofence.ID,
		Geofence:   alert.Geofence.Name,
		VehicleID:  alert.Event.VehicleID,
		DriverID:   alert.Event.DriverID,
		Location: alertLocation{
			Latitude:  alert.Event.Location.Lat,
			Longitude: alert.Event.Location.Lon,
		},
		Timestamp: alert.Event.Timestamp.Unix(),
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	return p.ch.PublishWithContext(ctx, exchangeName, geofenceRouteKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}
