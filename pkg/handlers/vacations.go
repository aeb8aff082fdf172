package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sigalit/guide-scheduler-api/pkg/engine"
	"github.com/sigalit/guide-scheduler-api/pkg/models"
)

// CreateVacationRequest records a vacation as per-day constraints over a date
// range, all-or-nothing.
func (h *Handler) CreateVacationRequest(c *gin.Context) {
	var req struct {
		UserID    string `json:"user_id" binding:"required"`
		HouseID   string `json:"house_id" binding:"required"`
		StartDate string `json:"start_date" binding:"required"`
		EndDate   string `json:"end_date" binding:"required"`
		Reason    string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !canActForUser(claimsFrom(c), req.UserID, req.HouseID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to create vacation requests for this user"})
		return
	}

	constraints, err := h.Engine.CreateVacationRange(req.UserID, req.HouseID, req.StartDate, req.EndDate, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrInvalidDateRange):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Start date must be before end date"})
		case errors.Is(err, engine.ErrOverlappingVacation):
			c.JSON(http.StatusConflict, gin.H{"error": "Overlapping vacation request already exists"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"constraints": constraints,
		"start_date":  req.StartDate,
		"end_date":    req.EndDate,
	})
}

// GetVacationRequests lists a house's vacation days, optionally per user.
func (h *Handler) GetVacationRequests(c *gin.Context) {
	houseID := c.Query("house_id")
	if houseID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "house_id is required"})
		return
	}
	if !canViewHouse(claimsFrom(c), houseID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only view vacation requests for your assigned house"})
		return
	}

	query := h.DB.Where("house_id = ? AND kind = ?", houseID, models.ConstraintVacation)
	if userID := c.Query("user_id"); userID != "" {
		query = query.Where("user_id = ?", userID)
	}

	var vacations []models.Constraint
	query.Preload("User").Order("date asc").Find(&vacations)
	c.JSON(http.StatusOK, gin.H{"vacations": vacations})
}

// ApproveVacationRequest approves one vacation day.
func (h *Handler) ApproveVacationRequest(c *gin.Context) {
	constraint, ok := h.manageableVacation(c)
	if !ok {
		return
	}

	updated, err := h.Engine.ApproveVacation(constraint.ID, claimsFrom(c).Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not approve vacation request"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// RejectVacationRequest rejects (removes) one vacation day.
func (h *Handler) RejectVacationRequest(c *gin.Context) {
	constraint, ok := h.manageableVacation(c)
	if !ok {
		return
	}

	var req struct {
		RejectionReason string `json:"rejection_reason"`
	}
	_ = c.ShouldBindJSON(&req)

	if err := h.Engine.RejectVacation(constraint.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not reject vacation request"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":          "Vacation request rejected and removed",
		"rejection_reason": req.RejectionReason,
		"rejected_by":      claimsFrom(c).Username,
	})
}

// CancelVacationRequest removes every vacation day of a guide inside a range.
func (h *Handler) CancelVacationRequest(c *gin.Context) {
	var req struct {
		UserID    string `json:"user_id" binding:"required"`
		StartDate string `json:"start_date" binding:"required"`
		EndDate   string `json:"end_date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", req.UserID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	houseID := ""
	if user.HouseID != nil {
		houseID = *user.HouseID
	}
	if !canActForUser(claimsFrom(c), req.UserID, houseID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to cancel vacation requests for this user"})
		return
	}

	removed, err := h.Engine.CancelVacationRange(req.UserID, req.StartDate, req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"days_removed": removed})
}

func (h *Handler) manageableVacation(c *gin.Context) (*models.Constraint, bool) {
	var constraint models.Constraint
	if err := h.DB.First(&constraint, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vacation request not found"})
		return nil, false
	}
	if constraint.Kind != models.ConstraintVacation {
		c.JSON(http.StatusBadRequest, gin.H{"error": "This is not a vacation request"})
		return nil, false
	}
	if !canManageHouse(claimsFrom(c), constraint.HouseID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only coordinators and admins can manage vacation requests"})
		return nil, false
	}
	return &constraint, true
}
