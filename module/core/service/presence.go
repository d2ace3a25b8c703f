package service

import (
	"context"
	"log"
	"time"

	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/domain"
)

// PresenceMonitor flips vehicles offline when no sample arrives within the
// timeout window and announces the transition to observers.
type PresenceMonitor struct {
	state     *StateStore
	broadcast Broadcaster
	timeout   time.Duration
}

func NewPresenceMonitor(state *StateStore, broadcast Broadcaster, timeout time.Duration) *PresenceMonitor {
	return &PresenceMonitor{state: state, broadcast: broadcast, timeout: timeout}
}

// Sweep marks every stale-online vehicle offline and broadcasts the change.
// Returns the number of vehicles flipped.
func (p *PresenceMonitor) Sweep(ctx context.Context) int {
	stale := p.state.StaleOnline(time.Now().Add(-p.timeout))
	for _, v := range stale {
		if err := p.state.MarkOffline(ctx, v.ID); err != nil {
			log.Printf("mark vehicle %s offline: %v", v.ID, err)
			continue
		}

		event := domain.Event{
			Type: domain.EventVehicleOffline,
			Data: domain.OfflineBroadcast{
				VehicleID:    v.ID,
				Number:       v.Number,
				LicensePlate: v.LicensePlate,
				Online:       false,
			},
		}
		p.broadcast.Publish(domain.GroupAdministrators, event)
		p.broadcast.Publish(domain.GroupPublic, event)
	}
	return len(stale)
}

// Start runs the sweep every interval until ctx is done.
func (p *PresenceMonitor) Start(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.Sweep(ctx)
			}
		}
	}()
}
