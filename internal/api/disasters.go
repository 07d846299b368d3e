package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/reliefops/volunteer-match/internal/auth"
	"github.com/reliefops/volunteer-match/internal/models"
	"github.com/reliefops/volunteer-match/internal/repository"
)

type createDisasterRequest struct {
	Name         string   `json:"name" binding:"required"`
	Description  string   `json:"description"`
	DisasterType string   `json:"disaster_type" binding:"required"`
	Urgency      string   `json:"urgency"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	Country      string   `json:"country"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}

func (h *Handler) createDisaster(c *gin.Context) {
	var req createDisasterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and disaster_type are required"})
		return
	}
	if req.Urgency != "" && !models.ValidUrgency(req.Urgency) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "urgency must be critical, high, medium, or low"})
		return
	}

	lat, lng := req.Latitude, req.Longitude
	if lat == nil && lng == nil && h.geocoder != nil &&
		(req.City != "" || req.State != "" || req.Country != "") {
		coords, err := h.geocoder.Geocode(c.Request.Context(), req.City, req.State, req.Country)
		if err != nil {
			slog.Warn("geocoding failed", "city", req.City, "error", err)
		} else {
			lat, lng = &coords.Latitude, &coords.Longitude
		}
	}

	now := time.Now().UTC()
	disaster := &models.Disaster{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Description:  req.Description,
		DisasterType: req.DisasterType,
		Urgency:      models.ParseUrgency(req.Urgency),
		City:         req.City,
		State:        req.State,
		Country:      req.Country,
		Latitude:     lat,
		Longitude:    lng,
		Status:       "active",
		CreatedBy:    auth.UserID(c),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.store.AddDisaster(c.Request.Context(), disaster); err != nil {
		storeError(c, err, "disaster")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "disaster created", "disaster": disaster})
}

func (h *Handler) listDisasters(c *gin.Context) {
	filter := repository.DisasterFilter{}
	if s := c.Query("status"); s != "" {
		filter.Status = &s
	}

	disasters, err := h.store.ListDisasters(c.Request.Context(), filter)
	if err != nil {
		storeError(c, err, "disasters")
		return
	}
	c.JSON(http.StatusOK, gin.H{"disasters": disasters})
}

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// toGeoJSON renders disasters as a point FeatureCollection for map clients.
// Disasters without coordinates are skipped.
func toGeoJSON(disasters []models.Disaster) FeatureCollection {
	features := make([]Feature, 0, len(disasters))

	for _, d := range disasters {
		coords := d.Coordinates()
		if coords == nil {
			continue
		}
		f := Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: []float64{coords.Longitude, coords.Latitude},
			},
			Properties: map[string]any{
				"id":          d.ID,
				"name":        d.Name,
				"description": d.Description,
				"type":        d.DisasterType,
				"urgency":     string(d.Urgency),
				"status":      d.Status,
				"created_at":  d.CreatedAt,
			},
		}
		features = append(features, f)
	}

	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}

func (h *Handler) disastersGeoJSON(c *gin.Context) {
	filter := repository.DisasterFilter{}
	if s := c.Query("status"); s != "" {
		filter.Status = &s
	}

	disasters, err := h.store.ListDisasters(c.Request.Context(), filter)
	if err != nil {
		storeError(c, err, "disasters")
		return
	}
	c.JSON(http.StatusOK, toGeoJSON(disasters))
}

func (h *Handler) getDisaster(c *gin.Context) {
	disaster, err := h.store.GetDisaster(c.Request.Context(), c.Param("id"))
	if err != nil {
		storeError(c, err, "disaster")
		return
	}
	c.JSON(http.StatusOK, gin.H{"disaster": disaster})
}

func (h *Handler) updateDisasterStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}
	switch req.Status {
	case "active", "resolved", "monitoring":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be active, resolved, or monitoring"})
		return
	}

	disaster, err := h.store.SetDisasterStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		storeError(c, err, "disaster")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "disaster updated", "disaster": disaster})
}

func (h *Handler) deleteDisaster(c *gin.Context) {
	if err := h.store.DeleteDisaster(c.Request.Context(), c.Param("id")); err != nil {
		storeError(c, err, "disaster")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "disaster deleted"})
}
