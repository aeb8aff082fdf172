package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/sigalit/guide-scheduler-api/pkg/database"
	"github.com/sigalit/guide-scheduler-api/pkg/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestEngine opens an in-memory sqlite store with the production schema.
// Single connection so every query sees the same memory database.
func newTestEngine(t *testing.T) (*Engine, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return New(db), db
}

func seedHouse(t *testing.T, db *gorm.DB) models.House {
	t.Helper()
	house := models.House{Name: "Dror", Code: fmt.Sprintf("house-%d", seq())}
	require.NoError(t, db.Create(&house).Error)
	return house
}

func seedGuide(t *testing.T, db *gorm.DB, house models.House, name string) models.User {
	t.Helper()
	guide := models.User{
		Username:     fmt.Sprintf("%s-%d", name, seq()),
		Name:         name,
		PasswordHash: "x",
		Role:         models.RoleGuide,
		HouseID:      &house.ID,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&guide).Error)
	return guide
}

func seedSchedule(t *testing.T, db *gorm.DB, house models.House, month, year int) models.Schedule {
	t.Helper()
	schedule := models.Schedule{
		Month:   month,
		Year:    year,
		Version: 1,
		HouseID: house.ID,
		Status:  models.ScheduleDraft,
	}
	require.NoError(t, db.Create(&schedule).Error)
	return schedule
}

// seedAssignment inserts an assignment row directly, without deriving dynamic
// constraints, so tests control derived state explicitly.
func seedAssignment(t *testing.T, db *gorm.DB, schedule models.Schedule, guide models.User, date string, shiftType models.ShiftType) models.Assignment {
	t.Helper()
	assignment := models.Assignment{
		ScheduleID: schedule.ID,
		GuideID:    guide.ID,
		Date:       date,
		Role:       models.RoleRegular,
		ShiftType:  shiftType,
	}
	require.NoError(t, db.Create(&assignment).Error)
	return assignment
}

func mustDate(t *testing.T, year, month, day int) time.Time {
	t.Helper()
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

var seqCounter int

func seq() int {
	seqCounter++
	return seqCounter
}
