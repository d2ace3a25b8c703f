package subscriber

import (
	"context"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/domain"
)

type fakeToken struct {
	err error
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

type publishedMessage struct {
	Topic   string
	Payload []byte
}

// fakeMQTTClient records published messages and subscription topics.
type fakeMQTTClient struct {
	mu        sync.Mutex
	published []publishedMessage
	topics    []string
}

var _ mqtt.Client = (*fakeMQTTClient)(nil)

func (c *fakeMQTTClient) IsConnected() bool       { return true }
func (c *fakeMQTTClient) IsConnectionOpen() bool  { return true }
func (c *fakeMQTTClient) Connect() mqtt.Token     { return &fakeToken{} }
func (c *fakeMQTTClient) Disconnect(quiesce uint) {}

func (c *fakeMQTTClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	body, _ := payload.([]byte)
	c.published = append(c.published, publishedMessage{Topic: topic, Payload: body})
	return &fakeToken{}
}

func (c *fakeMQTTClient) Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topics = append(c.topics, topic)
	return &fakeToken{}
}

func (c *fakeMQTTClient) SubscribeMultiple(filters map[string]byte, callback mqtt.MessageHandler) mqtt.Token {
	return &fakeToken{}
}

func (c *fakeMQTTClient) Unsubscribe(topics ...string) mqtt.Token { return &fakeToken{} }

func (c *fakeMQTTClient) AddRoute(topic string, callback mqtt.MessageHandler) {}

func (c *fakeMQTTClient) OptionsReader() mqtt.ClientOptionsReader {
	return mqtt.ClientOptionsReader{}
}

func (c *fakeMQTTClient) sent() []publishedMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]publishedMessage, len(c.published))
	copy(out, c.published)
	return out
}

type fakeMessage struct {
	topic   string
	payload []byte
}

var _ mqtt.Message = (*fakeMessage)(nil)

func (m *fakeMessage) Duplicate() bool   { return false }
func (m *fakeMessage) Qos() byte         { return 1 }
func (m *fakeMessage) Retained() bool    { return false }
func (m *fakeMessage) Topic() string     { return m.topic }
func (m *fakeMessage) MessageID() uint16 { return 0 }
func (m *fakeMessage) Payload() []byte   { return m.payload }
func (m *fakeMessage) Ack()              {}

type mockIngestService struct {
	IngestFn func(ctx context.Context, msg domain.VehicleLocation) (*domain.Vehicle, error)
}

func (m *mockIngestService) Ingest(ctx context.Context, msg domain.VehicleLocation) (*domain.Vehicle, error) {
	if m.IngestFn != nil {
		return m.IngestFn(ctx, msg)
	}
	return &domain.Vehicle{ID: msg.VehicleID}, nil
}

type mockAlertService struct {
	CreateFn         func(ctx context.Context, senderID, senderRole, vehicleID, message string, location domain.Coordinate) (*domain.EmergencyAlert, error)
	UpdateLocationFn func(ctx context.Context, alertID string, location domain.Coordinate) (*domain.EmergencyAlert, error)
	ResolveFn        func(ctx context.Context, alertID, requesterID, requesterRole string) (*domain.EmergencyAlert, error)
}

func (m *mockAlertService) Create(ctx context.Context, senderID, senderRole, vehicleID, message string, location domain.Coordinate) (*domain.EmergencyAlert, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, senderID, senderRole, vehicleID, message, location)
	}
	return &domain.EmergencyAlert{}, nil
}

func (m *mockAlertService) UpdateLocation(ctx context.Context, alertID string, location domain.Coordinate) (*domain.EmergencyAlert, error) {
	if m.UpdateLocationFn != nil {
		return m.UpdateLocationFn(ctx, alertID, location)
	}
	return &domain.EmergencyAlert{}, nil
}

func (m *mockAlertService) Resolve(ctx context.Context, alertID, requesterID, requesterRole string) (*domain.EmergencyAlert, error) {
	if m.ResolveFn != nil {
		return m.ResolveFn(ctx, alertID, requesterID, requesterRole)
	}
	return &domain.EmergencyAlert{}, nil
}
