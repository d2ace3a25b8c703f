package subscriber

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/go-playground/validator/v10"

	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/domain"
)

const (
	locationTopicPattern = "/fleet/vehicle/+/location"
	errorTopicPrefix     = "/fleet/vehicle/"
	errorTopicSuffix     = "/errors"
)

type ingestService interface {
	Ingest(ctx context.Context, msg domain.VehicleLocation) (*domain.Vehicle, error)
}

type locationMessage struct {
	VehicleID string   `json:"vehicle_id" validate:"required"`
	DriverID  string   `json:"driver_id"`
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	Speed     float64  `json:"speed" validate:"gte=0"`
	Heading   float64  `json:"heading" validate:"gte=0,lte=360"`
	Accuracy  *float64 `json:"accuracy"`
	Timestamp int64    `json:"timestamp" validate:"required,gt=0"`
}

// rejection is the structured error sent back to the reporting client. The
// connection stays open; the sender just learns why the sample was dropped.
type rejection struct {
	Error     string `json:"error"`
	VehicleID string `json:"vehicle_id,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

type LocationSubscriber struct {
	client    mqtt.Client
	ingestSvc ingestService
	validate  *validator.Validate
}

func NewLocationSubscriber(client mqtt.Client, ingestSvc ingestService) *LocationSubscriber {
	return &LocationSubscriber{
		client:    client,
		ingestSvc: ingestSvc,
		validate:  validator.New(),
	}
}

func (s *LocationSubscriber) Start() error {
	token := s.client.Subscribe(locationTopicPattern, 1, s.handleMessage)
	token.Wait()
	return token.Error()
}

func (s *LocationSubscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	sender := vehicleIDFromTopic(msg.Topic())

	var raw locationMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		log.Printf("invalid location payload on %s: %v", msg.Topic(), err)
		s.reject(sender, rejection{Error: "malformed payload: " + err.Error()})
		return
	}

	if err := s.validate.Struct(&raw); err != nil {
		log.Printf("location validation on %s: %v", msg.Topic(), err)
		s.reject(sender, rejection{Error: err.Error(), VehicleID: raw.VehicleID, Timestamp: raw.Timestamp})
		return
	}

	// heading wraps at 360
	if raw.Heading == 360 {
		raw.Heading = 0
	}

	vl := domain.VehicleLocation{
		VehicleID: raw.VehicleID,
		DriverID:  raw.DriverID,
		Sample: domain.LocationSample{
			Coordinate: domain.Coordinate{Lat: *raw.Latitude, Lon: *raw.Longitude},
			SpeedKph:   raw.Speed,
			Heading:    raw.Heading,
			Accuracy:   raw.Accuracy,
			Timestamp:  time.Unix(raw.Timestamp, 0),
		},
	}

	if _, err := s.ingestSvc.Ingest(context.Background(), vl); err != nil {
		if errors.Is(err, domain.ErrVehicleNotFound) {
			s.reject(raw.VehicleID, rejection{Error: "unknown vehicle", VehicleID: raw.VehicleID, Timestamp: raw.Timestamp})
			return
		}
		log.Printf("ingest for vehicle %s: %v", raw.VehicleID, err)
		s.reject(raw.VehicleID, rejection{Error: err.Error(), VehicleID: raw.VehicleID, Timestamp: raw.Timestamp})
	}
}

// reject publishes a structured error to the sender's error topic.
func (s *LocationSubscriber) reject(vehicleID string, r rejection) {
	if vehicleID == "" {
		return
	}
	body, err := json.Marshal(r)
	if err != nil {
		return
	}
	s.client.Publish(errorTopicPrefix+vehicleID+errorTopicSuffix, 0, false, body)
}

// vehicleIDFromTopic extracts the id segment of /fleet/vehicle/<id>/location.
func vehicleIDFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) < 4 {
		return ""
	}
	return parts[3]
}
