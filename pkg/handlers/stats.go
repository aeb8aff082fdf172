package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sigalit/guide-scheduler-api/pkg/models"
)

// GetGuideMonthlyStats returns per-guide assignment counts for a house's
// month, the same workload numbers the fairness ranker sorts by.
func (h *Handler) GetGuideMonthlyStats(c *gin.Context) {
	month, year, houseID, ok := h.statsParams(c)
	if !ok {
		return
	}

	var guides []models.User
	h.DB.Where("role = ? AND house_id = ? AND is_active = ?", models.RoleGuide, houseID, true).
		Order("name asc").Find(&guides)

	first, last := monthBounds(year, month)
	stats := make([]gin.H, 0, len(guides))
	for _, guide := range guides {
		var total, weekend int64
		h.DB.Model(&models.Assignment{}).
			Where("guide_id = ? AND date >= ? AND date <= ?", guide.ID, first, last).
			Count(&total)
		h.DB.Model(&models.Assignment{}).
			Where("guide_id = ? AND date >= ? AND date <= ? AND shift_type IN ?",
				guide.ID, first, last,
				[]models.ShiftType{models.ShiftOpenWeekend, models.ShiftClosedWeekend}).
			Count(&weekend)

		stats = append(stats, gin.H{
			"guide_id":            guide.ID,
			"name":                guide.Name,
			"monthly_assignments": total,
			"weekend_assignments": weekend,
		})
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// GetGuideConstraintCounts returns how many one-time constraints each guide
// filed for a month plus their active weekly constraints.
func (h *Handler) GetGuideConstraintCounts(c *gin.Context) {
	month, year, houseID, ok := h.statsParams(c)
	if !ok {
		return
	}

	var guides []models.User
	h.DB.Where("role = ? AND house_id = ? AND is_active = ?", models.RoleGuide, houseID, true).
		Order("name asc").Find(&guides)

	first, last := monthBounds(year, month)
	counts := make([]gin.H, 0, len(guides))
	for _, guide := range guides {
		var oneTime, weekly int64
		h.DB.Model(&models.Constraint{}).
			Where("user_id = ? AND date >= ? AND date <= ?", guide.ID, first, last).
			Count(&oneTime)
		h.DB.Model(&models.WeeklyConstraint{}).
			Where("user_id = ? AND status = ?", guide.ID, models.StatusActive).
			Count(&weekly)

		counts = append(counts, gin.H{
			"guide_id":           guide.ID,
			"name":               guide.Name,
			"monthly_count":      oneTime,
			"weekly_count":       weekly,
			"total_restrictions": oneTime + weekly,
		})
	}

	c.JSON(http.StatusOK, gin.H{"counts": counts})
}

func (h *Handler) statsParams(c *gin.Context) (month, year int, houseID string, ok bool) {
	month, _ = strconv.Atoi(c.Query("month"))
	year, _ = strconv.Atoi(c.Query("year"))
	houseID = c.Query("house_id")
	if month < 1 || month > 12 || year == 0 || houseID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month, year and house_id are required"})
		return 0, 0, "", false
	}
	if !canViewHouse(claimsFrom(c), houseID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only view stats for your assigned house"})
		return 0, 0, "", false
	}
	return month, year, houseID, true
}
