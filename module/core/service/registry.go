package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/domain"
	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/internal/repository/database"
)

// Registry holds the current set of active geofences. It is read-mostly: the
// admin collaborator mutates the underlying table, and the registry refreshes
// on a timer. Each evaluation pass works on an immutable snapshot.
type Registry struct {
	repo database.GeofenceRepository

	mu    sync.RWMutex
	zones []domain.Geofence
}

func NewRegistry(repo database.GeofenceRepository, seed []domain.Geofence) *Registry {
	return &Registry{repo: repo, zones: seed}
}

// Snapshot returns a copy of the active zones.
func (r *Registry) Snapshot() []domain.Geofence {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Geofence, len(r.zones))
	copy(out, r.zones)
	return out
}

// Reload refreshes the zone set from the repository. Seed-only deployments
// pass a nil repo and keep the boot-time zones.
func (r *Registry) Reload(ctx context.Context) error {
	if r.repo == nil {
		return nil
	}
	zones, err := r.repo.GetActive(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.zones = zones
	r.mu.Unlock()
	return nil
}

// StartReloader refreshes the registry every interval until ctx is done.
// A failed reload keeps the previous snapshot.
func (r *Registry) StartReloader(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := r.Reload(ctx); err != nil {
					log.Printf("geofence registry reload: %v", err)
				}
			}
		}
	}()
}
