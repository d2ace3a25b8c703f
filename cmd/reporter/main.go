package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"gopkg.in/yaml.v3"

	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/agent/buffer"
	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/agent/syncer"
)

type reporterConfig struct {
	VehicleID string  `yaml:"vehicle_id"`
	DriverID  string  `yaml:"driver_id"`
	Broker    string  `yaml:"mqtt_broker"`
	ServerURL string  `yaml:"server_url"`
	StartLat  float64 `yaml:"start_latitude"`
	StartLon  float64 `yaml:"start_longitude"`

	IntervalSeconds      int    `yaml:"interval_seconds"`
	BufferCapacity       int    `yaml:"buffer_capacity"`
	JournalPath          string `yaml:"journal_path"`
	BatchSize            int    `yaml:"batch_size"`
	MaxRetries           int    `yaml:"max_retries"`
	ProbeIntervalSeconds int    `yaml:"probe_interval_seconds"`
}

func loadConfig(path string) (*reporterConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &reporterConfig{
		Broker:               "tcp://localhost:1883",
		ServerURL:            "http://localhost:8080",
		IntervalSeconds:      5,
		BufferCapacity:       1000,
		BatchSize:            50,
		MaxRetries:           5,
		ProbeIntervalSeconds: 10,
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.VehicleID == "" {
		return nil, fmt.Errorf("vehicle_id is required")
	}
	return cfg, nil
}

type locationMessage struct {
	VehicleID string  `json:"vehicle_id"`
	DriverID  string  `json:"driver_id,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Speed     float64 `json:"speed"`
	Heading   float64 `json:"heading"`
	Timestamp int64   `json:"timestamp"`
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <config.yaml>\n", os.Args[0])
		os.Exit(1)
	}

	cfg, err := loadConfig(os.Args[1])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	queue, err := buffer.NewQueue(cfg.BufferCapacity, cfg.JournalPath)
	if err != nil {
		log.Fatalf("offline buffer: %v", err)
	}

	uploader := syncer.NewHTTPUploader(cfg.ServerURL, 15*time.Second)
	prober := syncer.NewHTTPProber(cfg.ServerURL, 3*time.Second)
	sync := syncer.New(queue, uploader, prober, syncer.Options{
		BatchSize:     cfg.BatchSize,
		MaxRetries:    cfg.MaxRetries,
		ProbeInterval: time.Duration(cfg.ProbeIntervalSeconds) * time.Second,
	})
	go sync.Run(ctx)

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID("fleet-reporter-" + cfg.VehicleID).
		SetAutoReconnect(true).
		SetConnectRetry(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Printf("mqtt connect: %v (starting offline)", token.Error())
	}
	defer client.Disconnect(250)

	log.Printf("reporting vehicle %s every %ds", cfg.VehicleID, cfg.IntervalSeconds)

	lat, lon := cfg.StartLat, cfg.StartLon
	heading := rand.Float64() * 360

	ticker := time.NewTicker(time.Duration(cfg.IntervalSeconds) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("shutting down, %d samples still buffered", queue.Len())
			return
		case <-ticker.C:
			// random walk, ~10-50m steps
			heading += (rand.Float64() - 0.5) * 30
			for heading < 0 {
				heading += 360
			}
			for heading >= 360 {
				heading -= 360
			}
			lat += (rand.Float64() - 0.5) * 0.0005
			lon += (rand.Float64() - 0.5) * 0.0005
			speed := rand.Float64() * 60

			now := time.Now()
			if client.IsConnected() && sync.Online() {
				msg := locationMessage{
					VehicleID: cfg.VehicleID,
					DriverID:  cfg.DriverID,
					Latitude:  lat,
					Longitude: lon,
					Speed:     speed,
					Heading:   heading,
					Timestamp: now.Unix(),
				}
				payload, _ := json.Marshal(msg)
				topic := fmt.Sprintf("/fleet/vehicle/%s/location", cfg.VehicleID)
				if token := client.Publish(topic, 1, false, payload); token.Wait() && token.Error() == nil {
					continue
				}
			}

			queue.Push(buffer.Entry{
				VehicleID: cfg.VehicleID,
				Latitude:  lat,
				Longitude: lon,
				Speed:     speed,
				Heading:   heading,
				Timestamp: now,
				Priority:  buffer.Classify(now, false, now),
			})
		}
	}
}
