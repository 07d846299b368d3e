package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reliefops/volunteer-match/internal/assignment"
	"github.com/reliefops/volunteer-match/internal/auth"
	"github.com/reliefops/volunteer-match/internal/geo"
	"github.com/reliefops/volunteer-match/internal/notify"
	"github.com/reliefops/volunteer-match/internal/repository"
)

type Handler struct {
	store       repository.Store
	tokens      *auth.Manager
	geocoder    geo.Geocoder
	matcher     *assignment.Service
	notifier    *notify.Dispatcher
	broadcaster *notify.Broadcaster
}

func NewHandler(store repository.Store, tokens *auth.Manager, geocoder geo.Geocoder, matcher *assignment.Service, notifier *notify.Dispatcher, broadcaster *notify.Broadcaster) *Handler {
	return &Handler{
		store:       store,
		tokens:      tokens,
		geocoder:    geocoder,
		matcher:     matcher,
		notifier:    notifier,
		broadcaster: broadcaster,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.health)

	authGroup := r.Group("/api/auth")
	authGroup.POST("/register", h.register)
	authGroup.POST("/login", h.login)
	authGroup.GET("/me", auth.RequireAuth(h.tokens), h.me)

	api := r.Group("/api", auth.RequireAuth(h.tokens))
	admin := auth.RequireAdmin()

	api.POST("/volunteers", h.saveVolunteerProfile)
	api.GET("/volunteers", admin, h.listVolunteers)
	api.GET("/volunteers/me", h.myVolunteerProfile)
	api.GET("/volunteers/:id", h.getVolunteer)
	api.PATCH("/volunteers/availability", h.setAvailability)

	api.POST("/disasters", admin, h.createDisaster)
	api.GET("/disasters", h.listDisasters)
	api.GET("/disasters/geojson", h.disastersGeoJSON)
	api.GET("/disasters/:id", h.getDisaster)
	api.PATCH("/disasters/:id", admin, h.updateDisasterStatus)
	api.DELETE("/disasters/:id", admin, h.deleteDisaster)

	api.POST("/tasks", admin, h.createTask)
	api.GET("/tasks", h.listTasks)
	api.GET("/tasks/my-tasks", h.myTasks)
	api.GET("/tasks/:id", h.getTask)
	api.POST("/tasks/:id/assign", admin, h.assignVolunteers)
	api.PATCH("/tasks/:id/status", admin, h.updateTaskStatus)
	api.PATCH("/assignments/:id", h.updateAssignmentStatus)

	api.POST("/match/rank", admin, h.rankVolunteers)
	api.POST("/match/auto-assign", admin, h.autoAssign)

	api.POST("/updates", admin, h.createUpdate)
	api.GET("/updates", h.listUpdates)
	api.GET("/updates/stream", h.streamUpdates)
	api.DELETE("/updates/:id", admin, h.deleteUpdate)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// storeError maps ErrNotFound to 404 and everything else to a logged 500.
func storeError(c *gin.Context, err error, what string) {
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": what + " not found"})
		return
	}
	slog.Error("store error", "what", what, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to access " + what})
}
