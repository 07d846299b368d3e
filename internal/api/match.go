package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reliefops/volunteer-match/internal/assignment"
	"github.com/reliefops/volunteer-match/internal/auth"
	"github.com/reliefops/volunteer-match/internal/ranking"
)

type rankRequest struct {
	TaskID string `json:"task_id" binding:"required"`
	TopN   int    `json:"top_n"`
}

// rankVolunteers scores every registered volunteer against a task and returns
// the top candidates for review. Nothing is persisted.
func (h *Handler) rankVolunteers(c *gin.Context) {
	var req rankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "task_id is required"})
		return
	}
	if req.TopN <= 0 {
		req.TopN = ranking.DefaultTopN
	}

	result, err := h.matcher.RankForTask(c.Request.Context(), req.TaskID, req.TopN)
	if err != nil {
		storeError(c, err, "task")
		return
	}
	c.JSON(http.StatusOK, result)
}

// defaultAssignCount bounds how many volunteers auto-assignment commits when
// the caller does not say.
const defaultAssignCount = 3

type autoAssignRequest struct {
	TaskID string `json:"task_id" binding:"required"`
	Count  int    `json:"count"`
}

func (h *Handler) autoAssign(c *gin.Context) {
	var req autoAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "task_id is required"})
		return
	}
	if req.Count <= 0 {
		req.Count = defaultAssignCount
	}

	result, err := h.matcher.AutoAssign(c.Request.Context(), req.TaskID, req.Count, auth.UserID(c))
	if err != nil {
		if errors.Is(err, assignment.ErrNoVolunteers) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no available volunteers"})
			return
		}
		storeError(c, err, "task")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "volunteers auto-assigned", "result": result})
}
