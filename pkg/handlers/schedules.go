package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sigalit/guide-scheduler-api/pkg/models"
)

// CreateSchedule opens a new schedule version for a month/year/house. If one
// already exists the next version number is allocated.
func (h *Handler) CreateSchedule(c *gin.Context) {
	var req struct {
		Month   int    `json:"month" binding:"required,min=1,max=12"`
		Year    int    `json:"year" binding:"required,min=2024"`
		HouseID string `json:"house_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims := claimsFrom(c)
	if !canManageHouse(claims, req.HouseID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only coordinators and admins can create schedules for this house"})
		return
	}

	var latest models.Schedule
	version := 1
	err := h.DB.Where("month = ? AND year = ? AND house_id = ?", req.Month, req.Year, req.HouseID).
		Order("version desc").First(&latest).Error
	if err == nil {
		version = latest.Version + 1
	}

	schedule := models.Schedule{
		Month:     req.Month,
		Year:      req.Year,
		Version:   version,
		HouseID:   req.HouseID,
		Status:    models.ScheduleDraft,
		CreatedBy: claims.UserID,
	}
	if err := h.DB.Create(&schedule).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create schedule"})
		return
	}

	c.JSON(http.StatusOK, schedule)
}

// GetScheduleByMonth returns the latest (or requested) version of a house's
// month schedule with its assignments.
func (h *Handler) GetScheduleByMonth(c *gin.Context) {
	month, _ := strconv.Atoi(c.Query("month"))
	year, _ := strconv.Atoi(c.Query("year"))
	houseID := c.Query("house_id")
	if month < 1 || month > 12 || year == 0 || houseID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month, year and house_id are required"})
		return
	}

	claims := claimsFrom(c)
	if !canViewHouse(claims, houseID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only view schedules for your assigned house"})
		return
	}

	query := h.DB.Where("month = ? AND year = ? AND house_id = ?", month, year, houseID)
	if v := c.Query("version"); v != "" {
		version, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid version"})
			return
		}
		query = query.Where("version = ?", version)
	}

	var schedule models.Schedule
	if err := query.Order("version desc").Preload("House").First(&schedule).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
		return
	}

	var assignments []models.Assignment
	h.DB.Where("schedule_id = ?", schedule.ID).Preload("Guide").Order("date asc").Find(&assignments)

	c.JSON(http.StatusOK, gin.H{"schedule": schedule, "assignments": assignments})
}

// GetAssignmentsBySchedule lists every assignment of a schedule.
func (h *Handler) GetAssignmentsBySchedule(c *gin.Context) {
	scheduleID := c.Param("id")

	var schedule models.Schedule
	if err := h.DB.First(&schedule, "id = ?", scheduleID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
		return
	}
	if !canViewHouse(claimsFrom(c), schedule.HouseID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only view schedules for your assigned house"})
		return
	}

	var assignments []models.Assignment
	h.DB.Where("schedule_id = ?", scheduleID).Preload("Guide").Order("date asc").Find(&assignments)
	c.JSON(http.StatusOK, gin.H{"assignments": assignments})
}

// RegenerateDynamicConstraints rebuilds all derived adjacency constraints of a
// schedule from its live assignments. Recovery path for drifted derived state.
func (h *Handler) RegenerateDynamicConstraints(c *gin.Context) {
	scheduleID := c.Param("id")

	var schedule models.Schedule
	if err := h.DB.First(&schedule, "id = ?", scheduleID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
		return
	}
	if !canManageHouse(claimsFrom(c), schedule.HouseID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only coordinators and admins can regenerate constraints"})
		return
	}

	generated, err := h.Engine.Regenerate(scheduleID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not regenerate constraints"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"schedule_id":           scheduleID,
		"constraints_generated": generated,
	})
}
