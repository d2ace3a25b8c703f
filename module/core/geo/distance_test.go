package geo

import (
	"testing"

	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/domain"
)

func TestDistanceMeters_SamePoint(t *testing.T) {
	p := domain.Coordinate{Lat: 10.1319, Lon: 124.8348}
	if d := DistanceMeters(p, p); d != 0 {
		t.Errorf("expected 0, got %f", d)
	}
}

func TestDistanceMeters_Symmetric(t *testing.T) {
	a := domain.Coordinate{Lat: 10.1319, Lon: 124.8348}
	b := domain.Coordinate{Lat: 10.1500, Lon: 124.8500}

	ab := DistanceMeters(a, b)
	ba := DistanceMeters(b, a)
	if ab != ba {
		t.Errorf("expected symmetric distance, got %f and %f", ab, ba)
	}
	if ab <= 0 {
		t.Errorf("expected positive distance, got %f", ab)
	}
}

func TestDistanceMeters_KnownDistance(t *testing.T) {
	// (10.1319, 124.8348) to (10.1500, 124.8500) is roughly 2.6km
	a := domain.Coordinate{Lat: 10.1319, Lon: 124.8348}
	b := domain.Coordinate{Lat: 10.1500, Lon: 124.8500}

	d := DistanceMeters(a, b)
	if d < 2400 || d > 2800 {
		t.Errorf("expected ~2600m, got %f", d)
	}
}

func TestDistanceMeters_NonNegative(t *testing.T) {
	pairs := [][2]domain.Coordinate{
		{{Lat: -90, Lon: -180}, {Lat: 90, Lon: 180}},
		{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 0.0001}},
		{{Lat: -6.2088, Lon: 106.8456}, {Lat: -6.2100, Lon: 106.8456}},
	}
	for _, p := range pairs {
		if d := DistanceMeters(p[0], p[1]); d < 0 {
			t.Errorf("negative distance %f for %+v", d, p)
		}
	}
}
