package service

import (
	"context"
	"log"
	"time"

	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/domain"
	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/geo"
	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/internal/repository/database"
)

// HistoryRecorder appends location samples off the critical broadcast path.
// Record never blocks the caller: samples enter a bounded queue and a single
// writer goroutine drains it. When the queue is full the sample is dropped
// with a warning — the documented backpressure policy.
type HistoryRecorder struct {
	repo      database.HistoryRepository
	queue     chan domain.VehicleLocation
	retention time.Duration
}

func NewHistoryRecorder(repo database.HistoryRepository, queueSize int, retention time.Duration) *HistoryRecorder {
	if queueSize <= 0 {
		queueSize = 1024
	}
	return &HistoryRecorder{
		repo:      repo,
		queue:     make(chan domain.VehicleLocation, queueSize),
		retention: retention,
	}
}

// Record enqueues a sample for async persistence. Fire-and-forget: a full
// queue or a failed insert is logged and never surfaces to the sender.
func (h *HistoryRecorder) Record(vl domain.VehicleLocation) {
	select {
	case h.queue <- vl:
	default:
		log.Printf("history queue full, dropping sample for vehicle %s", vl.VehicleID)
	}
}

// Start runs the writer loop until ctx is done.
func (h *HistoryRecorder) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case vl := <-h.queue:
				if err := h.repo.Insert(ctx, &vl); err != nil {
					log.Printf("history insert for vehicle %s: %v", vl.VehicleID, err)
				}
			}
		}
	}()
}

// StartRetentionSweep deletes rows older than the retention window on a timer.
func (h *HistoryRecorder) StartRetentionSweep(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().Add(-h.retention)
				n, err := h.repo.DeleteOlderThan(ctx, cutoff)
				if err != nil {
					log.Printf("history retention sweep: %v", err)
					continue
				}
				if n > 0 {
					log.Printf("history retention sweep removed %d rows", n)
				}
			}
		}
	}()
}

func (h *HistoryRecorder) GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.VehicleLocation, error) {
	return h.repo.GetHistory(ctx, query)
}

// Stats aggregates a history window: total haversine distance over the
// ordered samples and the mean reported speed.
func (h *HistoryRecorder) Stats(ctx context.Context, query *domain.HistoryQuery) (*domain.VehicleStats, error) {
	samples, err := h.repo.GetHistory(ctx, query)
	if err != nil {
		return nil, err
	}

	stats := &domain.VehicleStats{VehicleID: query.VehicleID, Samples: len(samples)}
	var speedSum float64
	for i, vl := range samples {
		speedSum += vl.Sample.SpeedKph
		if i > 0 {
			stats.DistanceMeters += geo.DistanceMeters(samples[i-1].Sample.Coordinate, vl.Sample.Coordinate)
		}
	}
	if len(samples) > 0 {
		stats.AvgSpeedKph = speedSum / float64(len(samples))
	}
	return stats, nil
}
