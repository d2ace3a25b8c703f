package service

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/domain"
	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/internal/repository/database"
)

const stateShards = 32

// StateStore is the authoritative in-memory map of vehicle id to last known
// state, sharded so updates for different vehicles never contend while
// updates for the same vehicle are serialized by its shard lock. Writes go
// through to the vehicle repository.
type StateStore struct {
	repo   database.VehicleRepository
	shards [stateShards]stateShard
}

type stateShard struct {
	mu       sync.RWMutex
	vehicles map[string]*domain.Vehicle
}

func NewStateStore(repo database.VehicleRepository) *StateStore {
	s := &StateStore{repo: repo}
	for i := range s.shards {
		s.shards[i].vehicles = make(map[string]*domain.Vehicle)
	}
	return s
}

func shardIndex(vehicleID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(vehicleID))
	return int(h.Sum32() % stateShards)
}

func (s *StateStore) shard(vehicleID string) *stateShard {
	return &s.shards[shardIndex(vehicleID)]
}

// Warm loads the vehicle roster from the repository into memory. Called once
// at startup so unknown-vehicle rejections do not need a DB round trip.
func (s *StateStore) Warm(ctx context.Context) error {
	vehicles, err := s.repo.GetAll(ctx)
	if err != nil {
		return err
	}
	for i := range vehicles {
		v := vehicles[i]
		sh := s.shard(v.ID)
		sh.mu.Lock()
		sh.vehicles[v.ID] = &v
		sh.mu.Unlock()
	}
	return nil
}

// ApplySample writes the sample through to the repository, then updates the
// vehicle's current location, last-seen timestamp and online flag. Returns a
// copy of the updated vehicle. A failed write leaves the in-memory entry
// untouched so readers never observe an update the sender was told failed.
func (s *StateStore) ApplySample(ctx context.Context, vehicleID, driverID string, sample domain.LocationSample) (*domain.Vehicle, error) {
	sh := s.shard(vehicleID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	v, ok := sh.vehicles[vehicleID]
	if !ok {
		return nil, domain.ErrVehicleNotFound
	}

	if err := s.repo.UpdateLocation(ctx, vehicleID, sample, true); err != nil {
		return nil, err
	}

	cp := sample
	v.Current = &cp
	v.LastSeenAt = time.Now()
	v.Online = true
	if driverID != "" {
		v.DriverID = driverID
	}

	out := *v
	return &out, nil
}

// ApplySampleIfNewer is the batch-sync variant: the sample only advances the
// current state when it is newer than the stored one. Older samples are still
// accepted for history recording; the returned bool says whether state moved.
func (s *StateStore) ApplySampleIfNewer(ctx context.Context, vehicleID string, sample domain.LocationSample) (*domain.Vehicle, bool, error) {
	sh := s.shard(vehicleID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	v, ok := sh.vehicles[vehicleID]
	if !ok {
		return nil, false, domain.ErrVehicleNotFound
	}

	if v.Current != nil && !sample.Timestamp.After(v.Current.Timestamp) {
		out := *v
		return &out, false, nil
	}

	if err := s.repo.UpdateLocation(ctx, vehicleID, sample, true); err != nil {
		return nil, false, err
	}

	cp := sample
	v.Current = &cp
	v.LastSeenAt = time.Now()
	v.Online = true

	out := *v
	return &out, true, nil
}

func (s *StateStore) Get(vehicleID string) (*domain.Vehicle, bool) {
	sh := s.shard(vehicleID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	v, ok := sh.vehicles[vehicleID]
	if !ok {
		return nil, false
	}
	out := *v
	return &out, true
}

func (s *StateStore) All() []domain.Vehicle {
	var results []domain.Vehicle
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.RLock()
		for _, v := range sh.vehicles {
			results = append(results, *v)
		}
		sh.mu.RUnlock()
	}
	return results
}

// StaleOnline returns vehicles still flagged online whose last sample is
// older than the cutoff.
func (s *StateStore) StaleOnline(cutoff time.Time) []domain.Vehicle {
	var results []domain.Vehicle
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.RLock()
		for _, v := range sh.vehicles {
			if v.Online && v.LastSeenAt.Before(cutoff) {
				results = append(results, *v)
			}
		}
		sh.mu.RUnlock()
	}
	return results
}

func (s *StateStore) MarkOffline(ctx context.Context, vehicleID string) error {
	sh := s.shard(vehicleID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	v, ok := sh.vehicles[vehicleID]
	if !ok {
		return domain.ErrVehicleNotFound
	}
	v.Online = false

	return s.repo.SetOnline(ctx, vehicleID, false)
}
