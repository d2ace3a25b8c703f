package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/domain"
)

type stateStore interface {
	All() []domain.Vehicle
	Get(vehicleID string) (*domain.Vehicle, bool)
}

type historyService interface {
	GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.VehicleLocation, error)
	Stats(ctx context.Context, query *domain.HistoryQuery) (*domain.VehicleStats, error)
}

type locationResponse struct {
	VehicleID string  `json:"vehicle_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Speed     float64 `json:"speed"`
	Heading   float64 `json:"heading"`
	Timestamp int64   `json:"timestamp"`
	Online    bool    `json:"is_online"`
}

type VehicleHandler struct {
	state      stateStore
	historySvc historyService
}

func NewVehicleHandler(state stateStore, historySvc historyService) *VehicleHandler {
	return &VehicleHandler{state: state, historySvc: historySvc}
}

func (h *VehicleHandler) Register(r *gin.RouterGroup) {
	r.GET("/vehicles", h.GetAllVehicles)
	r.GET("/vehicles/:vehicle_id/location", h.GetLatestLocation)
	r.GET("/vehicles/:vehicle_id/history", h.GetHistory)
	r.GET("/vehicles/:vehicle_id/stats", h.GetStats)
}

func (h *VehicleHandler) GetAllVehicles(c *gin.Context) {
	c.JSON(http.StatusOK, h.state.All())
}

func (h *VehicleHandler) GetLatestLocation(c *gin.Context) {
	vehicleID := c.Param("vehicle_id")

	v, ok := h.state.Get(vehicleID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "vehicle not found"})
		return
	}
	if v.Current == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no location reported yet"})
		return
	}

	c.JSON(http.StatusOK, locationResponse{
		VehicleID: v.ID,
		Latitude:  v.Current.Lat,
		Longitude: v.Current.Lon,
		Speed:     v.Current.SpeedKph,
		Heading:   v.Current.Heading,
		Timestamp: v.Current.Timestamp.Unix(),
		Online:    v.Online,
	})
}

func (h *VehicleHandler) GetHistory(c *gin.Context) {
	query, ok := historyQueryFrom(c)
	if !ok {
		return
	}

	locations, err := h.historySvc.GetHistory(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch history"})
		return
	}

	results := make([]locationResponse, len(locations))
	for i, vl := range locations {
		results[i] = locationResponse{
			VehicleID: vl.VehicleID,
			Latitude:  vl.Sample.Lat,
			Longitude: vl.Sample.Lon,
			Speed:     vl.Sample.SpeedKph,
			Heading:   vl.Sample.Heading,
			Timestamp: vl.Sample.Timestamp.Unix(),
		}
	}
	c.JSON(http.StatusOK, results)
}

func (h *VehicleHandler) GetStats(c *gin.Context) {
	query, ok := historyQueryFrom(c)
	if !ok {
		return
	}

	stats, err := h.historySvc.Stats(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func historyQueryFrom(c *gin.Context) (*domain.HistoryQuery, bool) {
	start, err := strconv.ParseInt(c.Query("start"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start parameter"})
		return nil, false
	}

	end, err := strconv.ParseInt(c.Query("end"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end parameter"})
		return nil, false
	}

	return &domain.HistoryQuery{
		VehicleID: c.Param("vehicle_id"),
		Start:     time.Unix(start, 0),
		End:       time.Unix(end, 0),
	}, true
}
