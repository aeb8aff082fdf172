package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sigalit/guide-scheduler-api/pkg/engine"
	"github.com/sigalit/guide-scheduler-api/pkg/models"
)

// CheckAvailability exposes the availability evaluator for a single
// (guide, date, schedule) combination.
func (h *Handler) CheckAvailability(c *gin.Context) {
	guideID := c.Query("guide_id")
	date := c.Query("date")
	scheduleID := c.Query("schedule_id")
	if guideID == "" || date == "" || scheduleID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "guide_id, date and schedule_id are required"})
		return
	}

	availability, err := h.Engine.Evaluate(guideID, date, scheduleID, c.Query("exclude_assignment_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, availability)
}

// CountConsecutiveDays exposes the consecutive-day calculator.
func (h *Handler) CountConsecutiveDays(c *gin.Context) {
	guideID := c.Query("guide_id")
	date := c.Query("date")
	if guideID == "" || date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "guide_id and date are required"})
		return
	}

	days, err := h.Engine.Count(guideID, date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, days)
}

// ValidateAssignment runs the full rule validator against a draft without
// persisting anything, so callers can preview every problem at once.
func (h *Handler) ValidateAssignment(c *gin.Context) {
	var req struct {
		ScheduleID          string                `json:"schedule_id" binding:"required"`
		GuideID             string                `json:"guide_id" binding:"required"`
		Date                string                `json:"date" binding:"required"`
		Role                models.AssignmentRole `json:"role"`
		ShiftType           models.ShiftType      `json:"shift_type" binding:"required"`
		ExcludeAssignmentID string                `json:"exclude_assignment_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Role == "" {
		req.Role = models.RoleRegular
	}

	result, err := h.Engine.Validate(engine.AssignmentDraft{
		ScheduleID: req.ScheduleID,
		GuideID:    req.GuideID,
		Date:       req.Date,
		Role:       req.Role,
		ShiftType:  req.ShiftType,
	}, req.ExcludeAssignmentID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
