package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sigalit/guide-scheduler-api/pkg/auth"
	"github.com/sigalit/guide-scheduler-api/pkg/database"
	"github.com/sigalit/guide-scheduler-api/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	router := gin.New()
	RegisterRoutes(router, New(db))
	return &testServer{router: router, db: db}
}

var userSeq int

func (s *testServer) seedUser(t *testing.T, role models.UserRole, houseID *string) (models.User, string) {
	t.Helper()
	userSeq++
	user := models.User{
		Username:     fmt.Sprintf("user-%d", userSeq),
		Name:         fmt.Sprintf("User %d", userSeq),
		PasswordHash: "x",
		Role:         role,
		HouseID:      houseID,
		IsActive:     true,
	}
	require.NoError(t, s.db.Create(&user).Error)
	token, err := auth.CreateToken(&user)
	require.NoError(t, err)
	return user, token
}

func (s *testServer) seedHouse(t *testing.T) models.House {
	t.Helper()
	userSeq++
	house := models.House{Name: "Dror", Code: fmt.Sprintf("house-%d", userSeq)}
	require.NoError(t, s.db.Create(&house).Error)
	return house
}

func (s *testServer) seedSchedule(t *testing.T, house models.House, status models.ScheduleStatus) models.Schedule {
	t.Helper()
	schedule := models.Schedule{Month: 6, Year: 2025, Version: 1, HouseID: house.ID, Status: status}
	require.NoError(t, s.db.Create(&schedule).Error)
	return schedule
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	hash, err := auth.HashPassword("secret")
	require.NoError(t, err)
	user := models.User{
		Username: "dana", Name: "Dana", PasswordHash: hash,
		Role: models.RoleCoordinator, IsActive: true,
	}
	require.NoError(t, s.db.Create(&user).Error)

	rec := s.do(t, http.MethodPost, "/auth/login", "", gin.H{"username": "dana", "password": "secret"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "bearer", resp.TokenType)
	assert.NotEmpty(t, resp.AccessToken)

	rec = s.do(t, http.MethodPost, "/auth/login", "", gin.H{"username": "dana", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_RejectsMissingToken(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/schedules?month=6&year=2025", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/schedules?month=6&year=2025", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateAssignment_PersistsWithAdjacencyBlocks(t *testing.T) {
	s := newTestServer(t)
	house := s.seedHouse(t)
	guide, _ := s.seedUser(t, models.RoleGuide, &house.ID)
	_, coordToken := s.seedUser(t, models.RoleCoordinator, &house.ID)
	schedule := s.seedSchedule(t, house, models.ScheduleDraft)

	rec := s.do(t, http.MethodPost, "/api/assignments", coordToken, gin.H{
		"schedule_id": schedule.ID,
		"guide_id":    guide.ID,
		"date":        "2025-06-10",
		"shift_type":  models.ShiftWeekday,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var blocks []models.DynamicConstraint
	require.NoError(t, s.db.Where("guide_id = ?", guide.ID).Order("blocked_date").Find(&blocks).Error)
	require.Len(t, blocks, 2)
	assert.Equal(t, "2025-06-09", blocks[0].BlockedDate)
	assert.Equal(t, "2025-06-11", blocks[1].BlockedDate)

	// Same guide, same date again fails validation.
	rec = s.do(t, http.MethodPost, "/api/assignments", coordToken, gin.H{
		"schedule_id": schedule.ID,
		"guide_id":    guide.ID,
		"date":        "2025-06-10",
		"shift_type":  models.ShiftWeekday,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateAssignment_RequiresDraftSchedule(t *testing.T) {
	s := newTestServer(t)
	house := s.seedHouse(t)
	guide, _ := s.seedUser(t, models.RoleGuide, &house.ID)
	_, coordToken := s.seedUser(t, models.RoleCoordinator, &house.ID)
	schedule := s.seedSchedule(t, house, models.ScheduleFormal)

	rec := s.do(t, http.MethodPost, "/api/assignments", coordToken, gin.H{
		"schedule_id": schedule.ID,
		"guide_id":    guide.ID,
		"date":        "2025-06-10",
		"shift_type":  models.ShiftWeekday,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateAssignment_ForbiddenAcrossHouses(t *testing.T) {
	s := newTestServer(t)
	house := s.seedHouse(t)
	otherHouse := s.seedHouse(t)
	guide, _ := s.seedUser(t, models.RoleGuide, &house.ID)
	_, otherCoordToken := s.seedUser(t, models.RoleCoordinator, &otherHouse.ID)
	schedule := s.seedSchedule(t, house, models.ScheduleDraft)

	rec := s.do(t, http.MethodPost, "/api/assignments", otherCoordToken, gin.H{
		"schedule_id": schedule.ID,
		"guide_id":    guide.ID,
		"date":        "2025-06-10",
		"shift_type":  models.ShiftWeekday,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Guides cannot create assignments either.
	_, guideToken := s.seedUser(t, models.RoleGuide, &house.ID)
	rec = s.do(t, http.MethodPost, "/api/assignments", guideToken, gin.H{
		"schedule_id": schedule.ID,
		"guide_id":    guide.ID,
		"date":        "2025-06-10",
		"shift_type":  models.ShiftWeekday,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeleteAssignment_RetractsAdjacencyBlocks(t *testing.T) {
	s := newTestServer(t)
	house := s.seedHouse(t)
	guide, _ := s.seedUser(t, models.RoleGuide, &house.ID)
	_, coordToken := s.seedUser(t, models.RoleCoordinator, &house.ID)
	schedule := s.seedSchedule(t, house, models.ScheduleDraft)

	rec := s.do(t, http.MethodPost, "/api/assignments", coordToken, gin.H{
		"schedule_id": schedule.ID,
		"guide_id":    guide.ID,
		"date":        "2025-06-10",
		"shift_type":  models.ShiftWeekday,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Assignment models.Assignment `json:"assignment"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	rec = s.do(t, http.MethodDelete, "/api/assignments/"+resp.Assignment.ID, coordToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var remaining int64
	require.NoError(t, s.db.Model(&models.Assignment{}).Count(&remaining).Error)
	assert.Zero(t, remaining)
	require.NoError(t, s.db.Model(&models.DynamicConstraint{}).Count(&remaining).Error)
	assert.Zero(t, remaining)
}

func TestUpdateAssignment_GuideConfirmsOwnShift(t *testing.T) {
	s := newTestServer(t)
	house := s.seedHouse(t)
	guide, guideToken := s.seedUser(t, models.RoleGuide, &house.ID)
	_, otherToken := s.seedUser(t, models.RoleGuide, &house.ID)
	_, coordToken := s.seedUser(t, models.RoleCoordinator, &house.ID)
	schedule := s.seedSchedule(t, house, models.ScheduleDraft)

	rec := s.do(t, http.MethodPost, "/api/assignments", coordToken, gin.H{
		"schedule_id": schedule.ID,
		"guide_id":    guide.ID,
		"date":        "2025-06-10",
		"shift_type":  models.ShiftWeekday,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Assignment models.Assignment `json:"assignment"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	rec = s.do(t, http.MethodPut, "/api/assignments/"+resp.Assignment.ID, guideToken, gin.H{"is_confirmed": true})
	require.Equal(t, http.StatusOK, rec.Code)

	var stored models.Assignment
	require.NoError(t, s.db.First(&stored, "id = ?", resp.Assignment.ID).Error)
	assert.True(t, stored.IsConfirmed)

	// Another guide may not touch it, and the owner may not change the shift.
	rec = s.do(t, http.MethodPut, "/api/assignments/"+resp.Assignment.ID, otherToken, gin.H{"is_confirmed": true})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(t, http.MethodPut, "/api/assignments/"+resp.Assignment.ID, guideToken, gin.H{
		"is_confirmed": true,
		"shift_type":   models.ShiftOpenWeekend,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetAvailableGuides_FairnessOrder(t *testing.T) {
	s := newTestServer(t)
	house := s.seedHouse(t)
	_, coordToken := s.seedUser(t, models.RoleCoordinator, &house.ID)
	schedule := s.seedSchedule(t, house, models.ScheduleDraft)

	busy, _ := s.seedUser(t, models.RoleGuide, &house.ID)
	idle, _ := s.seedUser(t, models.RoleGuide, &house.ID)
	blocked, _ := s.seedUser(t, models.RoleGuide, &house.ID)

	for _, date := range []string{"2025-06-02", "2025-06-04", "2025-06-09"} {
		require.NoError(t, s.db.Create(&models.Assignment{
			ScheduleID: schedule.ID, GuideID: busy.ID, Date: date,
			Role: models.RoleRegular, ShiftType: models.ShiftWeekday,
		}).Error)
	}
	require.NoError(t, s.db.Create(&models.Constraint{
		UserID: blocked.ID, HouseID: house.ID, Date: "2025-06-17",
		Kind: models.ConstraintUnavailable,
	}).Error)

	rec := s.do(t, http.MethodGet,
		"/api/guides/available?date=2025-06-17&schedule_id="+schedule.ID, coordToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Guides []struct {
			ID          string `json:"id"`
			IsAvailable bool   `json:"is_available"`
		} `json:"guides"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Guides, 3)
	assert.Equal(t, idle.ID, resp.Guides[0].ID)
	assert.Equal(t, busy.ID, resp.Guides[1].ID)
	assert.Equal(t, blocked.ID, resp.Guides[2].ID)
	assert.False(t, resp.Guides[2].IsAvailable)
}

func TestRegenerateDynamicConstraints(t *testing.T) {
	s := newTestServer(t)
	house := s.seedHouse(t)
	guide, _ := s.seedUser(t, models.RoleGuide, &house.ID)
	_, coordToken := s.seedUser(t, models.RoleCoordinator, &house.ID)
	schedule := s.seedSchedule(t, house, models.ScheduleDraft)

	// An assignment inserted without lifecycle hooks, as a sync job might.
	require.NoError(t, s.db.Create(&models.Assignment{
		ScheduleID: schedule.ID, GuideID: guide.ID, Date: "2025-06-10",
		Role: models.RoleRegular, ShiftType: models.ShiftWeekday,
	}).Error)

	rec := s.do(t, http.MethodPost, "/api/schedules/"+schedule.ID+"/regenerate-constraints", coordToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var blocks int64
	require.NoError(t, s.db.Model(&models.DynamicConstraint{}).
		Where("schedule_id = ?", schedule.ID).Count(&blocks).Error)
	assert.EqualValues(t, 2, blocks)
}
