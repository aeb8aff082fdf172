package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sigalit/guide-scheduler-api/pkg/engine"
	"github.com/sigalit/guide-scheduler-api/pkg/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CreateAssignment validates a proposed assignment and, if it passes,
// persists it together with its two derived adjacency constraints in one
// transaction. Partial application would corrupt the derived-state invariant.
func (h *Handler) CreateAssignment(c *gin.Context) {
	var req struct {
		ScheduleID string                `json:"schedule_id" binding:"required"`
		GuideID    string                `json:"guide_id" binding:"required"`
		Date       string                `json:"date" binding:"required"`
		Role       models.AssignmentRole `json:"role"`
		ShiftType  models.ShiftType      `json:"shift_type" binding:"required"`
		IsManual   *bool                 `json:"is_manual"`
		IsLocked   bool                  `json:"is_locked"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Role == "" {
		req.Role = models.RoleRegular
	}

	var schedule models.Schedule
	if err := h.DB.First(&schedule, "id = ?", req.ScheduleID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
		return
	}

	claims := claimsFrom(c)
	if !canManageHouse(claims, schedule.HouseID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only coordinators and admins can create assignments for this house"})
		return
	}
	if schedule.Status != models.ScheduleDraft {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot modify assignments in a formal or archived schedule"})
		return
	}

	draft := engine.AssignmentDraft{
		ScheduleID: req.ScheduleID,
		GuideID:    req.GuideID,
		Date:       req.Date,
		Role:       req.Role,
		ShiftType:  req.ShiftType,
	}
	validation, err := h.Engine.Validate(draft, "")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !validation.IsValid {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":    "Assignment validation failed",
			"errors":   validation.Errors,
			"warnings": validation.Warnings,
		})
		return
	}

	isManual := true
	if req.IsManual != nil {
		isManual = *req.IsManual
	}
	assignment := models.Assignment{
		ScheduleID: req.ScheduleID,
		GuideID:    req.GuideID,
		Date:       req.Date,
		Role:       req.Role,
		ShiftType:  req.ShiftType,
		IsManual:   isManual,
		IsLocked:   req.IsLocked,
		CreatedBy:  claims.UserID,
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&assignment).Error; err != nil {
			return err
		}
		return h.Engine.WithTx(tx).OnAssignmentCreated(&assignment)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "Guide is already assigned on this date"})
			return
		}
		logrus.WithError(err).Error("creating assignment")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create assignment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"assignment": assignment, "warnings": validation.Warnings})
}

// UpdateAssignment changes role/shift/flags on an existing assignment,
// re-validating the scheduling rules when the role or shift type changes.
func (h *Handler) UpdateAssignment(c *gin.Context) {
	id := c.Param("id")
	var req struct {
		Role            *models.AssignmentRole `json:"role"`
		ShiftType       *models.ShiftType      `json:"shift_type"`
		IsLocked        *bool                  `json:"is_locked"`
		IsConfirmed     *bool                  `json:"is_confirmed"`
		RejectionReason *string                `json:"rejection_reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var assignment models.Assignment
	if err := h.DB.Preload("Schedule").First(&assignment, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Assignment not found"})
		return
	}

	claims := claimsFrom(c)
	// Guides may only confirm or decline their own assignment.
	guideSelfUpdate := claims.Role == models.RoleGuide &&
		claims.UserID == assignment.GuideID && req.IsConfirmed != nil &&
		req.Role == nil && req.ShiftType == nil && req.IsLocked == nil
	if !canManageHouse(claims, assignment.Schedule.HouseID) && !guideSelfUpdate {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to update this assignment"})
		return
	}

	if req.Role != nil || req.ShiftType != nil {
		draft := engine.AssignmentDraft{
			ScheduleID: assignment.ScheduleID,
			GuideID:    assignment.GuideID,
			Date:       assignment.Date,
			Role:       assignment.Role,
			ShiftType:  assignment.ShiftType,
		}
		if req.Role != nil {
			draft.Role = *req.Role
		}
		if req.ShiftType != nil {
			draft.ShiftType = *req.ShiftType
		}

		validation, err := h.Engine.Validate(draft, assignment.ID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if !validation.IsValid {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":    "Assignment validation failed",
				"errors":   validation.Errors,
				"warnings": validation.Warnings,
			})
			return
		}
	}

	if req.Role != nil {
		assignment.Role = *req.Role
	}
	if req.ShiftType != nil {
		assignment.ShiftType = *req.ShiftType
	}
	if req.IsLocked != nil {
		assignment.IsLocked = *req.IsLocked
	}
	if req.IsConfirmed != nil {
		assignment.IsConfirmed = *req.IsConfirmed
	}
	if req.RejectionReason != nil {
		assignment.RejectionReason = *req.RejectionReason
	}

	if err := h.DB.Save(&assignment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update assignment"})
		return
	}
	c.JSON(http.StatusOK, assignment)
}

// DeleteAssignment removes an assignment and retracts its derived adjacency
// constraints atomically.
func (h *Handler) DeleteAssignment(c *gin.Context) {
	id := c.Param("id")

	var assignment models.Assignment
	if err := h.DB.Preload("Schedule").First(&assignment, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Assignment not found"})
		return
	}
	if !canManageHouse(claimsFrom(c), assignment.Schedule.HouseID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only coordinators and admins can delete assignments"})
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := h.Engine.WithTx(tx).OnAssignmentRemoved(&assignment); err != nil {
			return err
		}
		return tx.Delete(&models.Assignment{}, "id = ?", id).Error
	})
	if err != nil {
		logrus.WithError(err).Error("deleting assignment")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete assignment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Assignment deleted"})
}

// GetAvailableGuides ranks the schedule's house guides for a date: available
// first, fairest (fewest monthly shifts) on top.
func (h *Handler) GetAvailableGuides(c *gin.Context) {
	date := c.Query("date")
	scheduleID := c.Query("schedule_id")
	if date == "" || scheduleID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date and schedule_id are required"})
		return
	}

	var schedule models.Schedule
	if err := h.DB.First(&schedule, "id = ?", scheduleID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
		return
	}
	if !canViewHouse(claimsFrom(c), schedule.HouseID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only view guides for your assigned house"})
		return
	}

	query := h.DB.Where("role = ? AND house_id = ? AND is_active = ?",
		models.RoleGuide, schedule.HouseID, true)
	if exclude := c.Query("exclude_guide_id"); exclude != "" {
		query = query.Where("id <> ?", exclude)
	}

	var guides []models.User
	if err := query.Order("name asc").Find(&guides).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load guides"})
		return
	}

	ranked, err := h.Engine.Rank(guides, date, scheduleID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"guides": ranked})
}
