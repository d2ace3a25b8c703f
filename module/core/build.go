package core

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/domain"
	handler "github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/internal/handler/http"
	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/internal/handler/subscriber"
	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/internal/handler/ws"
	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/internal/repository/database/postgres"
	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/internal/repository/publisher/rabbitmq"
	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/service"
)

// Options are the tunables the server main reads from config.
type Options struct {
	GeofenceSeed     []domain.Geofence
	HysteresisMeters float64
	HistoryQueueSize int
	HistoryRetention time.Duration
	RetentionSweep   time.Duration
	PresenceTimeout  time.Duration
	PresenceSweep    time.Duration
	RegistryReload   time.Duration
}

type Module struct {
	StateStore  *service.StateStore
	Registry    *service.Registry
	GeofenceSvc *service.GeofenceService
	IngestSvc   *service.IngestService
	HistorySvc  *service.HistoryRecorder
	AlertSvc    *service.AlertService
	Presence    *service.PresenceMonitor
	Hub         *ws.Hub

	vehicleHandler *handler.VehicleHandler
	syncHandler    *handler.SyncHandler
	locationSub    *subscriber.LocationSubscriber
	emergencySub   *subscriber.EmergencySubscriber
}

func Build(db *sql.DB, amqpConn *amqp.Connection, mqttClient mqtt.Client, opts Options) (*Module, error) {
	vehicleRepo := postgres.NewVehicleRepo(db)
	historyRepo := postgres.NewHistoryRepo(db)
	geofenceRepo := postgres.NewGeofenceRepo(db)
	eventRepo := postgres.NewGeofenceEventRepo(db)
	alertRepo := postgres.NewAlertRepo(db)

	geofencePub, err := rabbitmq.NewGeofencePublisher(amqpConn)
	if err != nil {
		return nil, fmt.Errorf("geofence publisher: %w", err)
	}
	emergencyPub, err := rabbitmq.NewEmergencyPublisher(amqpConn)
	if err != nil {
		return nil, fmt.Errorf("emergency publisher: %w", err)
	}

	hub := ws.NewHub()

	stateStore := service.NewStateStore(vehicleRepo)
	registry := service.NewRegistry(geofenceRepo, opts.GeofenceSeed)
	geofenceSvc := service.NewGeofenceService(registry, service.NewInMemoryMembership(), opts.HysteresisMeters)
	historySvc := service.NewHistoryRecorder(historyRepo, opts.HistoryQueueSize, opts.HistoryRetention)
	ingestSvc := service.NewIngestService(stateStore, geofenceSvc, historySvc, eventRepo, geofencePub, hub)
	alertSvc := service.NewAlertService(alertRepo, emergencyPub, hub)
	presence := service.NewPresenceMonitor(stateStore, hub, opts.PresenceTimeout)

	return &Module{
		StateStore:  stateStore,
		Registry:    registry,
		GeofenceSvc: geofenceSvc,
		IngestSvc:   ingestSvc,
		HistorySvc:  historySvc,
		AlertSvc:    alertSvc,
		Presence:    presence,
		Hub:         hub,

		vehicleHandler: handler.NewVehicleHandler(stateStore, historySvc),
		syncHandler:    handler.NewSyncHandler(ingestSvc),
		locationSub:    subscriber.NewLocationSubscriber(mqttClient, ingestSvc),
		emergencySub:   subscriber.NewEmergencySubscriber(mqttClient, alertSvc),
	}, nil
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	m.vehicleHandler.Register(r)
	m.syncHandler.Register(r)
}

func (m *Module) StartSubscribers() error {
	if err := m.locationSub.Start(); err != nil {
		return fmt.Errorf("location subscriber: %w", err)
	}
	if err := m.emergencySub.Start(); err != nil {
		return fmt.Errorf("emergency subscriber: %w", err)
	}
	return nil
}

// Start warms the state store and launches the background loops: hub,
// history writer, retention sweep, presence sweep, registry reload.
func (m *Module) Start(ctx context.Context, opts Options) error {
	if err := m.StateStore.Warm(ctx); err != nil {
		return fmt.Errorf("warm state store: %w", err)
	}
	if err := m.Registry.Reload(ctx); err != nil {
		return fmt.Errorf("load geofences: %w", err)
	}

	go m.Hub.Run(ctx)
	m.HistorySvc.Start(ctx)
	m.HistorySvc.StartRetentionSweep(ctx, opts.RetentionSweep)
	m.Presence.Start(ctx, opts.PresenceSweep)
	m.Registry.StartReloader(ctx, opts.RegistryReload)
	return nil
}
