package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/reliefops/volunteer-match/internal/auth"
	"github.com/reliefops/volunteer-match/internal/models"
	"github.com/reliefops/volunteer-match/internal/repository"
)

type volunteerProfileRequest struct {
	Name         string   `json:"name" binding:"required"`
	Email        string   `json:"email" binding:"required,email"`
	Phone        string   `json:"phone"`
	Skills       []string `json:"skills"`
	Availability string   `json:"availability"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	Country      string   `json:"country"`
}

// saveVolunteerProfile creates or updates the caller's volunteer profile.
// Location fields are geocoded when given; a failed geocode leaves the
// coordinates unset rather than blocking registration.
func (h *Handler) saveVolunteerProfile(c *gin.Context) {
	var req volunteerProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and email are required"})
		return
	}

	availability := models.Available
	if req.Availability != "" {
		if !models.ValidAvailability(req.Availability) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid availability status"})
			return
		}
		availability = models.Availability(strings.ToLower(req.Availability))
	}

	ctx := c.Request.Context()
	profileID := auth.UserID(c)

	existing, err := h.store.GetVolunteerByProfile(ctx, profileID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		storeError(c, err, "volunteer profile")
		return
	}

	var lat, lng *float64
	if h.geocoder != nil && (req.City != "" || req.State != "" || req.Country != "") {
		coords, gerr := h.geocoder.Geocode(ctx, req.City, req.State, req.Country)
		if gerr != nil {
			slog.Warn("geocoding failed", "city", req.City, "error", gerr)
		} else {
			lat, lng = &coords.Latitude, &coords.Longitude
		}
	}
	// Without a fresh geocode result, keep whatever position the profile
	// already had instead of erasing it.
	if lat == nil && existing != nil {
		lat, lng = existing.Latitude, existing.Longitude
	}

	now := time.Now().UTC()

	volunteer := &models.Volunteer{
		ProfileID:    profileID,
		Name:         req.Name,
		Email:        strings.ToLower(req.Email),
		Phone:        req.Phone,
		Skills:       req.Skills,
		Availability: availability,
		City:         req.City,
		State:        req.State,
		Country:      req.Country,
		Latitude:     lat,
		Longitude:    lng,
		UpdatedAt:    now,
	}

	if existing != nil {
		volunteer.ID = existing.ID
		volunteer.CreatedAt = existing.CreatedAt
		if err := h.store.UpdateVolunteer(ctx, volunteer); err != nil {
			storeError(c, err, "volunteer profile")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "profile updated", "volunteer": volunteer})
		return
	}

	volunteer.ID = uuid.NewString()
	volunteer.CreatedAt = now
	if err := h.store.AddVolunteer(ctx, volunteer); err != nil {
		storeError(c, err, "volunteer profile")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "profile created", "volunteer": volunteer})
}

func (h *Handler) listVolunteers(c *gin.Context) {
	filter := repository.VolunteerFilter{}
	if a := c.Query("availability"); a != "" && models.ValidAvailability(a) {
		availability := models.Availability(strings.ToLower(a))
		filter.Availability = &availability
	}

	volunteers, err := h.store.ListVolunteers(c.Request.Context(), filter)
	if err != nil {
		storeError(c, err, "volunteers")
		return
	}
	c.JSON(http.StatusOK, gin.H{"volunteers": volunteers})
}

func (h *Handler) myVolunteerProfile(c *gin.Context) {
	volunteer, err := h.store.GetVolunteerByProfile(c.Request.Context(), auth.UserID(c))
	if err != nil {
		storeError(c, err, "volunteer profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"volunteer": volunteer})
}

func (h *Handler) getVolunteer(c *gin.Context) {
	volunteer, err := h.store.GetVolunteer(c.Request.Context(), c.Param("id"))
	if err != nil {
		storeError(c, err, "volunteer")
		return
	}
	c.JSON(http.StatusOK, gin.H{"volunteer": volunteer})
}

func (h *Handler) setAvailability(c *gin.Context) {
	var req struct {
		Availability string `json:"availability" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !models.ValidAvailability(req.Availability) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid availability status"})
		return
	}

	volunteer, err := h.store.SetAvailability(c.Request.Context(), auth.UserID(c),
		models.Availability(strings.ToLower(req.Availability)))
	if err != nil {
		storeError(c, err, "volunteer profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "availability updated", "volunteer": volunteer})
}
