package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/agent/buffer"
)

// HTTPUploader drains batches into the server's POST /v1/sync/locations.
type HTTPUploader struct {
	baseURL string
	client  *http.Client
}

func NewHTTPUploader(baseURL string, timeout time.Duration) *HTTPUploader {
	return &HTTPUploader{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type syncItem struct {
	VehicleID string  `json:"vehicle_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Speed     float64 `json:"speed"`
	Heading   float64 `json:"heading"`
	Timestamp int64   `json:"timestamp"`
}

type syncRequest struct {
	Locations []syncItem `json:"locations"`
}

type syncResponse struct {
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}

func (u *HTTPUploader) UploadBatch(ctx context.Context, entries []buffer.Entry) (int, error) {
	req := syncRequest{Locations: make([]syncItem, len(entries))}
	for i, e := range entries {
		req.Locations[i] = syncItem{
			VehicleID: e.VehicleID,
			Latitude:  e.Latitude,
			Longitude: e.Longitude,
			Speed:     e.Speed,
			Heading:   e.Heading,
			Timestamp: e.Timestamp.Unix(),
		}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return 0, fmt.Errorf("marshal batch: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u.baseURL+"/v1/sync/locations", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := u.client.Do(httpReq)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("batch sync: unexpected status %d", resp.StatusCode)
	}

	var out syncResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode sync response: %w", err)
	}
	return out.Accepted, nil
}

// HTTPProber is the bounded reachability check against the server's health
// endpoint.
type HTTPProber struct {
	url    string
	client *http.Client
}

func NewHTTPProber(baseURL string, timeout time.Duration) *HTTPProber {
	return &HTTPProber{
		url:    baseURL + "/healthz",
		client: &http.Client{Timeout: timeout},
	}
}

func (p *HTTPProber) Online(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK
}
