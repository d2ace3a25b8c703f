package service

import "sync"

// MembershipStore keeps, per vehicle, the set of geofence ids currently
// occupied. The interface exists so multi-instance deployments can swap in a
// shared store; the in-memory map is the single-instance default.
type MembershipStore interface {
	Get(vehicleID string) map[string]bool
	Replace(vehicleID string, zones map[string]bool)
}

type InMemoryMembership struct {
	mu sync.RWMutex
	m  map[string]map[string]bool
}

var _ MembershipStore = (*InMemoryMembership)(nil)

func NewInMemoryMembership() *InMemoryMembership {
	return &InMemoryMembership{m: make(map[string]map[string]bool)}
}

// Get returns a copy of the vehicle's membership set.
func (s *InMemoryMembership) Get(vehicleID string) map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]bool, len(s.m[vehicleID]))
	for id := range s.m[vehicleID] {
		out[id] = true
	}
	return out
}

// Replace swaps the vehicle's membership set atomically.
func (s *InMemoryMembership) Replace(vehicleID string, zones map[string]bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(zones) == 0 {
		delete(s.m, vehicleID)
		return
	}
	s.m[vehicleID] = zones
}
