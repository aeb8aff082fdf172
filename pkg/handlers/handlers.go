package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sigalit/guide-scheduler-api/pkg/auth"
	"github.com/sigalit/guide-scheduler-api/pkg/engine"
	"github.com/sigalit/guide-scheduler-api/pkg/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Handler contains dependencies for the route handlers.
type Handler struct {
	DB     *gorm.DB
	Engine *engine.Engine
}

func New(db *gorm.DB) *Handler {
	return &Handler{DB: db, Engine: engine.New(db)}
}

const claimsKey = "claims"

// monthBounds returns the first and last schedule date of a calendar month.
func monthBounds(year, month int) (string, string) {
	return engine.MonthRange(time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC))
}

// AuthMiddleware verifies the JWT token and stores its claims on the context.
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}
		token = strings.TrimPrefix(token, "Bearer ")

		claims, err := auth.VerifyToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

func claimsFrom(c *gin.Context) *auth.Claims {
	raw, _ := c.Get(claimsKey)
	claims, _ := raw.(*auth.Claims)
	return claims
}

// canManageHouse reports whether the caller may administer the given house:
// admins anywhere, coordinators only their own.
func canManageHouse(claims *auth.Claims, houseID string) bool {
	if claims == nil {
		return false
	}
	if claims.Role == models.RoleAdmin {
		return true
	}
	return claims.Role == models.RoleCoordinator && claims.HouseID == houseID
}

// canViewHouse additionally lets guides read their own house.
func canViewHouse(claims *auth.Claims, houseID string) bool {
	if canManageHouse(claims, houseID) {
		return true
	}
	return claims != nil && claims.Role == models.RoleGuide && claims.HouseID == houseID
}

// Login authenticates a user and issues a JWT.
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := h.DB.Where("username = ? AND is_active = ?", req.Username, true).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := auth.CreateToken(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return
	}

	logrus.WithFields(logrus.Fields{"username": user.Username, "role": user.Role}).Debug("user logged in")
	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer", "user": user})
}

// RegisterRoutes wires every endpoint onto the router. Shared between the
// server binary and the serverless entrypoint.
func RegisterRoutes(r *gin.Engine, h *Handler) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Guide Scheduler API",
			"version": "1.0.0",
		})
	})

	r.POST("/auth/login", h.Login)

	api := r.Group("/api")
	api.Use(h.AuthMiddleware())
	{
		api.POST("/schedules", h.CreateSchedule)
		api.GET("/schedules", h.GetScheduleByMonth)
		api.GET("/schedules/:id/assignments", h.GetAssignmentsBySchedule)
		api.POST("/schedules/:id/regenerate-constraints", h.RegenerateDynamicConstraints)

		api.POST("/assignments", h.CreateAssignment)
		api.PUT("/assignments/:id", h.UpdateAssignment)
		api.DELETE("/assignments/:id", h.DeleteAssignment)
		api.POST("/assignments/validate", h.ValidateAssignment)

		api.GET("/guides/available", h.GetAvailableGuides)
		api.GET("/availability", h.CheckAvailability)
		api.GET("/consecutive-days", h.CountConsecutiveDays)

		api.GET("/constraints", h.GetMonthlyConstraints)
		api.POST("/constraints", h.CreateMonthlyConstraint)
		api.DELETE("/constraints/:id", h.DeleteMonthlyConstraint)
		api.GET("/constraints/pending", h.GetConstraintsForApproval)

		api.GET("/weekly-constraints", h.GetWeeklyConstraints)
		api.POST("/weekly-constraints", h.CreateWeeklyConstraint)
		api.POST("/weekly-constraints/:id/approve", h.ApproveWeeklyConstraint)
		api.POST("/weekly-constraints/:id/reject", h.RejectWeeklyConstraint)

		api.GET("/vacations", h.GetVacationRequests)
		api.POST("/vacations", h.CreateVacationRequest)
		api.POST("/vacations/cancel", h.CancelVacationRequest)
		api.POST("/vacations/:id/approve", h.ApproveVacationRequest)
		api.POST("/vacations/:id/reject", h.RejectVacationRequest)

		api.GET("/stats/guides", h.GetGuideMonthlyStats)
		api.GET("/stats/constraints", h.GetGuideConstraintCounts)
	}
}
