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

type createTaskRequest struct {
	DisasterID     string   `json:"disaster_id" binding:"required"`
	Title          string   `json:"title" binding:"required"`
	Description    string   `json:"description"`
	RequiredSkills []string `json:"required_skills"`
	Priority       string   `json:"priority"`
	Address        string   `json:"address"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
}

func (h *Handler) createTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "disaster_id and title are required"})
		return
	}

	ctx := c.Request.Context()
	disaster, err := h.store.GetDisaster(ctx, req.DisasterID)
	if err != nil {
		storeError(c, err, "disaster")
		return
	}

	priority := req.Priority
	if priority == "" {
		priority = "medium"
	}

	now := time.Now().UTC()
	task := &models.Task{
		ID:             uuid.NewString(),
		DisasterID:     disaster.ID,
		Title:          req.Title,
		Description:    req.Description,
		RequiredSkills: req.RequiredSkills,
		Priority:       priority,
		Status:         models.TaskOpen,
		Address:        req.Address,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		CreatedBy:      auth.UserID(c),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := h.store.AddTask(ctx, task); err != nil {
		storeError(c, err, "task")
		return
	}

	if h.notifier != nil {
		h.notifier.TaskCreated(task, disaster, auth.UserID(c))
	}

	c.JSON(http.StatusCreated, gin.H{"message": "task created", "task": task})
}

func (h *Handler) listTasks(c *gin.Context) {
	filter := repository.TaskFilter{}
	if d := c.Query("disaster_id"); d != "" {
		filter.DisasterID = &d
	}
	if s := c.Query("status"); s != "" {
		filter.Status = &s
	}

	tasks, err := h.store.ListTasks(c.Request.Context(), filter)
	if err != nil {
		storeError(c, err, "tasks")
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// myTasks returns the caller's assignments joined with their tasks.
func (h *Handler) myTasks(c *gin.Context) {
	ctx := c.Request.Context()
	volunteer, err := h.store.GetVolunteerByProfile(ctx, auth.UserID(c))
	if err != nil {
		storeError(c, err, "volunteer profile")
		return
	}

	assignments, err := h.store.ListAssignmentsByVolunteer(ctx, volunteer.ID)
	if err != nil {
		storeError(c, err, "assignments")
		return
	}

	type assignedTask struct {
		Assignment models.Assignment `json:"assignment"`
		Task       *models.Task      `json:"task"`
	}
	out := make([]assignedTask, 0, len(assignments))
	for _, a := range assignments {
		task, err := h.store.GetTask(ctx, a.TaskID)
		if err != nil {
			slog.Warn("assignment references missing task", "assignment", a.ID, "task", a.TaskID)
			continue
		}
		out = append(out, assignedTask{Assignment: a, Task: task})
	}
	c.JSON(http.StatusOK, gin.H{"tasks": out})
}

func (h *Handler) getTask(c *gin.Context) {
	task, err := h.store.GetTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		storeError(c, err, "task")
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

func (h *Handler) assignVolunteers(c *gin.Context) {
	var req struct {
		VolunteerIDs []string `json:"volunteer_ids" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "volunteer_ids is required"})
		return
	}

	assignments, err := h.matcher.Assign(c.Request.Context(), c.Param("id"), req.VolunteerIDs, auth.UserID(c))
	if err != nil {
		storeError(c, err, "task")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "volunteers assigned", "assignments": assignments})
}

func (h *Handler) updateTaskStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !models.ValidTaskStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be open, in_progress, completed, or cancelled"})
		return
	}

	task, err := h.store.SetTaskStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		storeError(c, err, "task")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "task updated", "task": task})
}

// updateAssignmentStatus lets a volunteer accept, decline, or complete one of
// their own assignments.
func (h *Handler) updateAssignmentStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !models.ValidAssignmentTransition(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be accepted, declined, or completed"})
		return
	}

	assignment, err := h.matcher.UpdateStatus(c.Request.Context(), c.Param("id"), auth.UserID(c), req.Status)
	if err != nil {
		storeError(c, err, "assignment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "assignment updated", "assignment": assignment})
}
