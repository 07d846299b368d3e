package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/reliefops/volunteer-match/internal/auth"
	"github.com/reliefops/volunteer-match/internal/models"
	"github.com/reliefops/volunteer-match/internal/repository"
)

type createUpdateRequest struct {
	Title      string `json:"title" binding:"required"`
	Message    string `json:"message" binding:"required"`
	Priority   string `json:"priority"`
	Category   string `json:"category"`
	DisasterID string `json:"disaster_id"`
}

func (h *Handler) createUpdate(c *gin.Context) {
	var req createUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and message are required"})
		return
	}

	priority := req.Priority
	if priority == "" {
		priority = "medium"
	}

	update := &models.Update{
		Title:      req.Title,
		Message:    req.Message,
		Priority:   priority,
		Category:   req.Category,
		DisasterID: req.DisasterID,
		CreatedBy:  auth.UserID(c),
	}

	// The dispatcher fills ID and timestamp and pushes the update to stream
	// subscribers off the request path.
	h.notifier.Publish(update)
	c.JSON(http.StatusAccepted, gin.H{"message": "update published", "update": update})
}

func (h *Handler) listUpdates(c *gin.Context) {
	filter := repository.UpdateFilter{}
	if p := c.Query("priority"); p != "" {
		filter.Priority = &p
	}
	if cat := c.Query("category"); cat != "" {
		filter.Category = &cat
	}

	updates, err := h.store.ListUpdates(c.Request.Context(), filter)
	if err != nil {
		storeError(c, err, "updates")
		return
	}
	c.JSON(http.StatusOK, gin.H{"updates": updates})
}

// streamUpdates pushes updates to the client as server-sent events until the
// client disconnects.
func (h *Handler) streamUpdates(c *gin.Context) {
	id, ch := h.broadcaster.Subscribe()
	defer h.broadcaster.Unsubscribe(id)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.SSEvent("connected", gin.H{"time": time.Now().UTC()})
	c.Writer.Flush()

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case update, ok := <-ch:
			if !ok {
				return
			}
			c.SSEvent("update", update)
			c.Writer.Flush()
		case <-heartbeat.C:
			c.SSEvent("heartbeat", gin.H{"time": time.Now().UTC()})
			c.Writer.Flush()
		case <-c.Request.Context().Done():
			return
		}
	}
}

func (h *Handler) deleteUpdate(c *gin.Context) {
	if err := h.store.DeleteUpdate(c.Request.Context(), c.Param("id")); err != nil {
		storeError(c, err, "update")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "update deleted"})
}
