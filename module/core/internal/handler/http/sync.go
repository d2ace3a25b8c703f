package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/domain"
	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/service"
)

type batchIngester interface {
	IngestBatch(ctx context.Context, items []service.SyncItem) service.SyncResult
}

type syncItemRequest struct {
	VehicleID string   `json:"vehicle_id" binding:"required"`
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
	Speed     float64  `json:"speed"`
	Heading   float64  `json:"heading"`
	Timestamp int64    `json:"timestamp" binding:"required"`
}

type syncRequest struct {
	Locations []syncItemRequest `json:"locations" binding:"required,min=1"`
}

// SyncHandler is the batch-sync endpoint the offline buffer drains into.
// Partial success: invalid or unknown items are counted, not fatal.
type SyncHandler struct {
	ingestSvc batchIngester
}

func NewSyncHandler(ingestSvc batchIngester) *SyncHandler {
	return &SyncHandler{ingestSvc: ingestSvc}
}

func (h *SyncHandler) Register(r *gin.RouterGroup) {
	r.POST("/sync/locations", h.SyncLocations)
}

func (h *SyncHandler) SyncLocations(c *gin.Context) {
	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items := make([]service.SyncItem, len(req.Locations))
	for i, loc := range req.Locations {
		items[i] = service.SyncItem{
			VehicleID: loc.VehicleID,
			Sample: domain.LocationSample{
				Coordinate: domain.Coordinate{Lat: *loc.Latitude, Lon: *loc.Longitude},
				SpeedKph:   loc.Speed,
				Heading:    loc.Heading,
				Timestamp:  time.Unix(loc.Timestamp, 0),
			},
		}
	}

	res := h.ingestSvc.IngestBatch(c.Request.Context(), items)
	c.JSON(http.StatusOK, res)
}
