package engine

import (
	"fmt"

	"github.com/sigalit/guide-scheduler-api/pkg/models"
)

// maxWeekdayShiftsPerWeek caps WEEKDAY shifts inside one Sunday-Saturday week.
const maxWeekdayShiftsPerWeek = 2

// openWeekendTargetGuides is the intended headcount of an open weekend day.
const openWeekendTargetGuides = 2

// AssignmentDraft is a proposed assignment to validate before persisting.
type AssignmentDraft struct {
	ScheduleID string                `json:"schedule_id"`
	GuideID    string                `json:"guide_id"`
	Date       string                `json:"date"`
	Role       models.AssignmentRole `json:"role"`
	ShiftType  models.ShiftType      `json:"shift_type"`
}

// ValidationResult itemizes every problem with a draft so the caller can show
// them all at once. Warnings never block persistence.
type ValidationResult struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Validate composes every hard and soft check for one proposed assignment.
// Unlike Evaluate it does not short-circuit: all errors accumulate.
// excludeAssignmentID carries the assignment's own id when re-validating an
// update so the draft does not collide with itself.
func (e *Engine) Validate(draft AssignmentDraft, excludeAssignmentID string) (ValidationResult, error) {
	day, err := ParseDate(draft.Date)
	if err != nil {
		return ValidationResult{}, fmt.Errorf("invalid date %q: %w", draft.Date, err)
	}

	var result ValidationResult

	availability, err := e.Evaluate(draft.GuideID, draft.Date, draft.ScheduleID, excludeAssignmentID)
	if err != nil {
		return ValidationResult{}, err
	}
	if !availability.Available {
		result.Errors = append(result.Errors, fmt.Sprintf("guide_not_available:%s", availability.BlockedBy))
	}
	if availability.Warning != "" {
		result.Warnings = append(result.Warnings, string(availability.Warning))
	}

	consecutive, err := e.Count(draft.GuideID, draft.Date)
	if err != nil {
		return ValidationResult{}, err
	}
	// Largely redundant with the dynamic-constraint block above, kept as a
	// second line of defence against stale derived state.
	if consecutive.Total > 1 {
		result.Errors = append(result.Errors,
			fmt.Sprintf("assignment would create %d consecutive working days", consecutive.Total))
	}

	if draft.ShiftType == models.ShiftWeekday {
		weekStart, weekEnd := WeekRange(day)
		query := e.db.Model(&models.Assignment{}).
			Where("guide_id = ? AND date >= ? AND date <= ? AND shift_type = ?",
				draft.GuideID, weekStart, weekEnd, models.ShiftWeekday)
		if excludeAssignmentID != "" {
			query = query.Where("id <> ?", excludeAssignmentID)
		}
		var weekdayShifts int64
		if err := query.Count(&weekdayShifts).Error; err != nil {
			return ValidationResult{}, fmt.Errorf("counting weekday shifts: %w", err)
		}
		if weekdayShifts >= maxWeekdayShiftsPerWeek {
			result.Errors = append(result.Errors,
				fmt.Sprintf("maximum %d weekday shifts per week exceeded", maxWeekdayShiftsPerWeek))
		}
	}

	if isWeekend(day) && draft.ShiftType == models.ShiftOpenWeekend {
		headcount, err := e.houseHeadcountOn(draft.ScheduleID, draft.Date, excludeAssignmentID)
		if err != nil {
			return ValidationResult{}, err
		}
		if headcount >= openWeekendTargetGuides {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("open weekend already has %d guides assigned", openWeekendTargetGuides))
		}
	}

	result.IsValid = len(result.Errors) == 0
	return result, nil
}

// houseHeadcountOn counts assignments on a date across every schedule of the
// house owning scheduleID. A missing schedule is a caller precondition failure
// and surfaces as an error.
func (e *Engine) houseHeadcountOn(scheduleID, date, excludeAssignmentID string) (int, error) {
	var schedule models.Schedule
	if err := e.db.First(&schedule, "id = ?", scheduleID).Error; err != nil {
		return 0, fmt.Errorf("resolving schedule %s: %w", scheduleID, err)
	}

	query := e.db.Model(&models.Assignment{}).
		Joins("JOIN schedules ON schedules.id = assignments.schedule_id").
		Where("assignments.date = ? AND schedules.house_id = ?", date, schedule.HouseID)
	if excludeAssignmentID != "" {
		query = query.Where("assignments.id <> ?", excludeAssignmentID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting same-day assignments: %w", err)
	}
	return int(count), nil
}
