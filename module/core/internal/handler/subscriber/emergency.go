package subscriber

import (
	"context"
	"encoding/json"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/go-playground/validator/v10"

	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/domain"
)

const emergencyTopicPattern = "/fleet/vehicle/+/emergency"

type alertService interface {
	Create(ctx context.Context, senderID, senderRole, vehicleID, message string, location domain.Coordinate) (*domain.EmergencyAlert, error)
	UpdateLocation(ctx context.Context, alertID string, location domain.Coordinate) (*domain.EmergencyAlert, error)
	Resolve(ctx context.Context, alertID, requesterID, requesterRole string) (*domain.EmergencyAlert, error)
}

type emergencyMessage struct {
	Action     string   `json:"action" validate:"required,oneof=create update cancel"`
	AlertID    string   `json:"alert_id" validate:"required_unless=Action create"`
	SenderID   string   `json:"sender_id" validate:"required"`
	SenderRole string   `json:"sender_role" validate:"required"`
	VehicleID  string   `json:"vehicle_id"`
	Message    string   `json:"message"`
	Latitude   *float64 `json:"latitude" validate:"required_unless=Action cancel"`
	Longitude  *float64 `json:"longitude" validate:"required_unless=Action cancel"`
}

type EmergencySubscriber struct {
	client   mqtt.Client
	alertSvc alertService
	validate *validator.Validate
}

func NewEmergencySubscriber(client mqtt.Client, alertSvc alertService) *EmergencySubscriber {
	return &EmergencySubscriber{
		client:   client,
		alertSvc: alertSvc,
		validate: validator.New(),
	}
}

func (s *EmergencySubscriber) Start() error {
	token := s.client.Subscribe(emergencyTopicPattern, 1, s.handleMessage)
	token.Wait()
	return token.Error()
}

func (s *EmergencySubscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	var raw emergencyMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		log.Printf("invalid emergency payload on %s: %v", msg.Topic(), err)
		return
	}
	if err := s.validate.Struct(&raw); err != nil {
		log.Printf("emergency validation on %s: %v", msg.Topic(), err)
		return
	}

	ctx := context.Background()

	var err error
	switch raw.Action {
	case "create":
		loc := domain.Coordinate{Lat: *raw.Latitude, Lon: *raw.Longitude}
		_, err = s.alertSvc.Create(ctx, raw.SenderID, raw.SenderRole, raw.VehicleID, raw.Message, loc)
	case "update":
		loc := domain.Coordinate{Lat: *raw.Latitude, Lon: *raw.Longitude}
		_, err = s.alertSvc.UpdateLocation(ctx, raw.AlertID, loc)
	case "cancel":
		_, err = s.alertSvc.Resolve(ctx, raw.AlertID, raw.SenderID, raw.SenderRole)
	}
	if err != nil {
		log.Printf("emergency %s on %s: %v", raw.Action, msg.Topic(), err)
	}
}
