package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/sigalit/guide-scheduler-api/pkg/models"
	"gorm.io/gorm"
)

// Availability is the verdict for one (guide, date, schedule) combination.
type Availability struct {
	Available bool        `json:"is_available"`
	BlockedBy ReasonCode  `json:"blocked_by,omitempty"`
	Warning   WarningCode `json:"warning,omitempty"`
}

func blocked(reason ReasonCode) Availability {
	return Availability{Available: false, BlockedBy: reason}
}

// Evaluate checks whether a guide may be assigned on a date, short-circuiting
// at the first hard block. The check order (weekly, one-time, dynamic,
// existing assignment, coordinator rules) is fixed so the reported reason is
// stable; the boolean outcome would be the same in any order.
//
// Evaluate is a pure read. An unknown guide is reported as blocked with
// guide_not_found rather than as an error: availability is a query, not an
// assertion.
func (e *Engine) Evaluate(guideID, date, scheduleID, excludeAssignmentID string) (Availability, error) {
	day, err := ParseDate(date)
	if err != nil {
		return Availability{}, fmt.Errorf("invalid date %q: %w", date, err)
	}

	var count int64
	err = e.db.Model(&models.WeeklyConstraint{}).
		Where("user_id = ? AND day_of_week = ? AND status = ?", guideID, int(day.Weekday()), models.StatusActive).
		Count(&count).Error
	if err != nil {
		return Availability{}, fmt.Errorf("checking weekly constraints: %w", err)
	}
	if count > 0 {
		return blocked(ReasonWeeklyConstraint), nil
	}

	err = e.db.Model(&models.Constraint{}).
		Where("user_id = ? AND date = ? AND kind = ?", guideID, date, models.ConstraintUnavailable).
		Count(&count).Error
	if err != nil {
		return Availability{}, fmt.Errorf("checking one-time constraints: %w", err)
	}
	if count > 0 {
		return blocked(ReasonMonthlyConstraint), nil
	}

	err = e.db.Model(&models.DynamicConstraint{}).
		Where("guide_id = ? AND blocked_date = ? AND schedule_id = ?", guideID, date, scheduleID).
		Count(&count).Error
	if err != nil {
		return Availability{}, fmt.Errorf("checking dynamic constraints: %w", err)
	}
	if count > 0 {
		return blocked(ReasonDynamicConstraint), nil
	}

	assignments := e.db.Model(&models.Assignment{}).Where("guide_id = ? AND date = ?", guideID, date)
	if excludeAssignmentID != "" {
		assignments = assignments.Where("id <> ?", excludeAssignmentID)
	}
	if err := assignments.Count(&count).Error; err != nil {
		return Availability{}, fmt.Errorf("checking existing assignments: %w", err)
	}
	if count > 0 {
		return blocked(ReasonExistingAssignment), nil
	}

	var guide models.User
	if err := e.db.First(&guide, "id = ?", guideID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return blocked(ReasonGuideNotFound), nil
		}
		return Availability{}, fmt.Errorf("loading guide: %w", err)
	}

	if guide.HouseID != nil {
		hit, err := e.coordinatorRuleBlocks(guide, day)
		if err != nil {
			return Availability{}, err
		}
		if hit {
			return blocked(ReasonCoordinatorRule), nil
		}
	}

	monthly, err := e.MonthlyAssignmentCount(guideID, day)
	if err != nil {
		return Availability{}, err
	}

	result := Availability{Available: true}
	switch {
	case monthly >= highWorkloadThreshold:
		result.Warning = WarningHighWorkload
	case monthly >= mediumWorkloadThreshold:
		result.Warning = WarningMediumWorkload
	}
	return result, nil
}

// coordinatorRuleBlocks evaluates every active rule of the guide's house.
func (e *Engine) coordinatorRuleBlocks(guide models.User, day time.Time) (bool, error) {
	var rules []models.CoordinatorRule
	err := e.db.Where("house_id = ? AND is_active = ?", *guide.HouseID, true).Find(&rules).Error
	if err != nil {
		return false, fmt.Errorf("loading coordinator rules: %w", err)
	}

	for _, rule := range rules {
		switch spec := DecodeRule(rule).(type) {
		case NoWeekendsRule:
			if isWeekend(day) && containsString(spec.GuideIDs, guide.ID) {
				return true, nil
			}
		case MaxWeekendShiftsRule:
			if !isWeekend(day) {
				continue
			}
			weekendShifts, err := e.weekendAssignmentCount(guide.ID, day)
			if err != nil {
				return false, err
			}
			if weekendShifts >= spec.MaxPerMonth {
				return true, nil
			}
		case UnknownRule:
			// Forward compatibility: skip rules this engine does not know.
		}
	}
	return false, nil
}

// MonthlyAssignmentCount counts a guide's assignments in the calendar month
// containing day. Also used by the fairness ranker.
func (e *Engine) MonthlyAssignmentCount(guideID string, day time.Time) (int, error) {
	first, last := MonthRange(day)
	var count int64
	err := e.db.Model(&models.Assignment{}).
		Where("guide_id = ? AND date >= ? AND date <= ?", guideID, first, last).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting monthly assignments: %w", err)
	}
	return int(count), nil
}

// weekendAssignmentCount counts the guide's Friday/Saturday assignments in the
// calendar month containing day. Weekday extraction from the stored date
// string is done in Go to stay portable across sqlite and postgres.
func (e *Engine) weekendAssignmentCount(guideID string, day time.Time) (int, error) {
	first, last := MonthRange(day)
	var dates []string
	err := e.db.Model(&models.Assignment{}).
		Where("guide_id = ? AND date >= ? AND date <= ?", guideID, first, last).
		Pluck("date", &dates).Error
	if err != nil {
		return 0, fmt.Errorf("counting weekend assignments: %w", err)
	}

	count := 0
	for _, d := range dates {
		t, err := ParseDate(d)
		if err != nil {
			continue
		}
		if isWeekend(t) {
			count++
		}
	}
	return count, nil
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
