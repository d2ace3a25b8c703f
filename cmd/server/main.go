package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/markbriannn/vehicle-tracking-ap-sub000/config"
	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := config.NewPostgres(cfg)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer func() { _ = db.Close() }()

	amqpConn, err := config.NewRabbitMQ(cfg)
	if err != nil {
		log.Fatalf("rabbitmq: %v", err)
	}
	defer func() { _ = amqpConn.Close() }()

	mqttClient, err := config.NewMQTT(cfg)
	if err != nil {
		log.Fatalf("mqtt: %v", err)
	}
	defer mqttClient.Disconnect(250)

	seed, err := config.LoadGeofenceSeed(cfg.GeofenceSeedPath)
	if err != nil {
		log.Fatalf("geofence seed: %v", err)
	}

	opts := core.Options{
		GeofenceSeed:     seed,
		HysteresisMeters: cfg.HysteresisMeters,
		HistoryQueueSize: cfg.HistoryQueueSize,
		HistoryRetention: cfg.HistoryRetention,
		RetentionSweep:   cfg.RetentionSweep,
		PresenceTimeout:  cfg.PresenceTimeout,
		PresenceSweep:    cfg.PresenceSweep,
		RegistryReload:   cfg.RegistryReload,
	}

	coreModule, err := core.Build(db, amqpConn, mqttClient, opts)
	if err != nil {
		log.Fatalf("core module: %v", err)
	}

	if err := coreModule.Start(ctx, opts); err != nil {
		log.Fatalf("start core module: %v", err)
	}

	if err := coreModule.StartSubscribers(); err != nil {
		log.Fatalf("start subscribers: %v", err)
	}

	r := gin.Default()

	health := config.NewHealthChecker(db, amqpConn, mqttClient, coreModule.Hub)
	health.Register(r)

	r.GET("/ws", func(c *gin.Context) {
		coreModule.Hub.ServeWS(c.Writer, c.Request)
	})

	api := r.Group("/v1")
	coreModule.RegisterRoutes(api)

	log.Printf("listening on :%s", cfg.HTTPPort)
	if err := r.Run(":" + cfg.HTTPPort); err != nil {
		log.Fatalf("server: %v", err)
	}
}
