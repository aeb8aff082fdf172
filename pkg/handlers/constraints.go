package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sigalit/guide-scheduler-api/pkg/auth"
	"github.com/sigalit/guide-scheduler-api/pkg/engine"
	"github.com/sigalit/guide-scheduler-api/pkg/models"
)

// canActForUser reports whether the caller may create or remove constraints
// for the given user in the given house: managers of the house, or the user
// themselves.
func canActForUser(claims *auth.Claims, userID, houseID string) bool {
	if canManageHouse(claims, houseID) {
		return true
	}
	return claims != nil && claims.Role == models.RoleGuide &&
		claims.UserID == userID && claims.HouseID == houseID
}

// GetMonthlyConstraints lists a house's one-time constraints for a month.
func (h *Handler) GetMonthlyConstraints(c *gin.Context) {
	month, _ := strconv.Atoi(c.Query("month"))
	year, _ := strconv.Atoi(c.Query("year"))
	houseID := c.Query("house_id")
	if month < 1 || month > 12 || year == 0 || houseID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month, year and house_id are required"})
		return
	}
	if !canViewHouse(claimsFrom(c), houseID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only view constraints for your assigned house"})
		return
	}

	first, last := monthBounds(year, month)
	query := h.DB.Where("house_id = ? AND date >= ? AND date <= ?", houseID, first, last)
	if userID := c.Query("user_id"); userID != "" {
		query = query.Where("user_id = ?", userID)
	}

	var constraints []models.Constraint
	query.Preload("User").Order("date asc").Find(&constraints)
	c.JSON(http.StatusOK, gin.H{"constraints": constraints})
}

// CreateMonthlyConstraint records a one-time constraint for a guide.
func (h *Handler) CreateMonthlyConstraint(c *gin.Context) {
	var req struct {
		UserID      string                `json:"user_id" binding:"required"`
		HouseID     string                `json:"house_id" binding:"required"`
		Date        string                `json:"date" binding:"required"`
		Kind        models.ConstraintKind `json:"kind" binding:"required"`
		Description string                `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !canActForUser(claimsFrom(c), req.UserID, req.HouseID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to create constraints for this user"})
		return
	}

	constraint, err := h.Engine.CreateOneTimeConstraint(req.UserID, req.HouseID, req.Date, req.Kind, req.Description)
	if err != nil {
		if errors.Is(err, engine.ErrConstraintExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "Constraint already exists for this date"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, constraint)
}

// DeleteMonthlyConstraint removes a one-time constraint.
func (h *Handler) DeleteMonthlyConstraint(c *gin.Context) {
	id := c.Param("id")

	var constraint models.Constraint
	if err := h.DB.First(&constraint, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Constraint not found"})
		return
	}
	if !canActForUser(claimsFrom(c), constraint.UserID, constraint.HouseID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to delete this constraint"})
		return
	}

	if err := h.Engine.DeleteOneTimeConstraint(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete constraint"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Constraint deleted"})
}

// GetWeeklyConstraints lists recurring constraints for a house, optionally
// filtered by user and status.
func (h *Handler) GetWeeklyConstraints(c *gin.Context) {
	houseID := c.Query("house_id")
	if houseID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "house_id is required"})
		return
	}
	if !canViewHouse(claimsFrom(c), houseID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only view constraints for your assigned house"})
		return
	}

	query := h.DB.Model(&models.WeeklyConstraint{}).
		Joins("JOIN users ON users.id = weekly_constraints.user_id").
		Where("users.house_id = ?", houseID)
	if userID := c.Query("user_id"); userID != "" {
		query = query.Where("weekly_constraints.user_id = ?", userID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("weekly_constraints.status = ?", status)
	}

	var constraints []models.WeeklyConstraint
	query.Preload("User").Order("weekly_constraints.day_of_week asc").Find(&constraints)
	c.JSON(http.StatusOK, gin.H{"constraints": constraints})
}

// CreateWeeklyConstraint records a recurring day-of-week constraint. A guide's
// own request starts PENDING_APPROVAL; one created by a coordinator or admin
// is active immediately.
func (h *Handler) CreateWeeklyConstraint(c *gin.Context) {
	var req struct {
		UserID    string `json:"user_id" binding:"required"`
		DayOfWeek *int   `json:"day_of_week" binding:"required"`
		Reason    string `json:"reason"`
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

	claims := claimsFrom(c)
	if !canActForUser(claims, req.UserID, houseID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to create constraints for this user"})
		return
	}

	status := models.StatusPendingApproval
	if canManageHouse(claims, houseID) {
		status = models.StatusActive
	}

	constraint, err := h.Engine.UpsertWeeklyConstraint(req.UserID, *req.DayOfWeek, req.Reason, status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, constraint)
}

// ApproveWeeklyConstraint activates a pending weekly constraint.
func (h *Handler) ApproveWeeklyConstraint(c *gin.Context) {
	constraint, ok := h.manageableWeeklyConstraint(c)
	if !ok {
		return
	}

	updated, err := h.Engine.ApproveWeeklyConstraint(constraint.ID, claimsFrom(c).UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not approve constraint"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// RejectWeeklyConstraint marks a weekly constraint rejected.
func (h *Handler) RejectWeeklyConstraint(c *gin.Context) {
	constraint, ok := h.manageableWeeklyConstraint(c)
	if !ok {
		return
	}

	var req struct {
		RejectionReason string `json:"rejection_reason"`
	}
	_ = c.ShouldBindJSON(&req)

	updated, err := h.Engine.RejectWeeklyConstraint(constraint.ID, req.RejectionReason)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not reject constraint"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) manageableWeeklyConstraint(c *gin.Context) (*models.WeeklyConstraint, bool) {
	var constraint models.WeeklyConstraint
	if err := h.DB.Preload("User").First(&constraint, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Weekly constraint not found"})
		return nil, false
	}

	houseID := ""
	if constraint.User != nil && constraint.User.HouseID != nil {
		houseID = *constraint.User.HouseID
	}
	if !canManageHouse(claimsFrom(c), houseID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only coordinators and admins can manage weekly constraints"})
		return nil, false
	}
	return &constraint, true
}

// GetConstraintsForApproval lists everything awaiting a coordinator decision
// for a house: pending weekly constraints and vacation days.
func (h *Handler) GetConstraintsForApproval(c *gin.Context) {
	houseID := c.Query("house_id")
	if houseID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "house_id is required"})
		return
	}
	if !canManageHouse(claimsFrom(c), houseID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only coordinators and admins can view pending approvals"})
		return
	}

	var weekly []models.WeeklyConstraint
	h.DB.Joins("JOIN users ON users.id = weekly_constraints.user_id").
		Where("users.house_id = ? AND weekly_constraints.status = ?", houseID, models.StatusPendingApproval).
		Preload("User").Find(&weekly)

	var vacations []models.Constraint
	h.DB.Where("house_id = ? AND kind = ?", houseID, models.ConstraintVacation).
		Preload("User").Order("date asc").Find(&vacations)

	c.JSON(http.StatusOK, gin.H{
		"weekly_constraints": weekly,
		"vacations":          vacations,
	})
}
