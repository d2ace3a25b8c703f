package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/service"
)

type mockBatchIngester struct {
	IngestBatchFn func(ctx context.Context, items []service.SyncItem) service.SyncResult
}

func (m *mockBatchIngester) IngestBatch(ctx context.Context, items []service.SyncItem) service.SyncResult {
	if m.IngestBatchFn != nil {
		return m.IngestBatchFn(ctx, items)
	}
	return service.SyncResult{}
}

func syncRouter(ingest batchIngester) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewSyncHandler(ingest).Register(r.Group("/v1"))
	return r
}

func TestSyncLocations(t *testing.T) {
	var gotItems []service.SyncItem
	ingest := &mockBatchIngester{
		IngestBatchFn: func(ctx context.Context, items []service.SyncItem) service.SyncResult {
			gotItems = items
			return service.SyncResult{Accepted: 1, Rejected: 1}
		},
	}
	r := syncRouter(ingest)

	body := []byte(`{"locations":[
		{"vehicle_id":"VH-1","latitude":10.1319,"longitude":124.8348,"speed":42.5,"heading":270,"timestamp":1715003456},
		{"vehicle_id":"ghost","latitude":10.1,"longitude":124.8,"timestamp":1715003457}
	]}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/sync/locations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(gotItems) != 2 {
		t.Fatalf("expected 2 items forwarded, got %d", len(gotItems))
	}
	if gotItems[0].VehicleID != "VH-1" || gotItems[0].Sample.Lat != 10.1319 {
		t.Errorf("unexpected first item: %+v", gotItems[0])
	}
	if gotItems[0].Sample.Timestamp.Unix() != 1715003456 {
		t.Errorf("unexpected timestamp: %v", gotItems[0].Sample.Timestamp)
	}

	var res service.SyncResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if res.Accepted != 1 || res.Rejected != 1 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestSyncLocations_BadRequests(t *testing.T) {
	r := syncRouter(&mockBatchIngester{
		IngestBatchFn: func(ctx context.Context, items []service.SyncItem) service.SyncResult {
			t.Error("invalid request reached the service")
			return service.SyncResult{}
		},
	})

	cases := []struct {
		name string
		body string
	}{
		{"not json", `{nope`},
		{"empty batch", `{"locations":[]}`},
		{"missing locations", `{}`},
		{"item missing coordinates", `{"locations":[{"vehicle_id":"VH-1","timestamp":1715003456}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/v1/sync/locations", bytes.NewReader([]byte(tc.body)))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
		})
	}
}
