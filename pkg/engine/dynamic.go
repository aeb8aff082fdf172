package engine

import (
	"fmt"

	"github.com/sigalit/guide-scheduler-api/pkg/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm/clause"
)

// OnAssignmentCreated derives the two adjacency blocks for an assignment: the
// guide may not work the day before or the day after. Insertion is idempotent;
// a row that already exists under the (guide, blockedDate, sourceDate,
// schedule) key is silently kept, so re-deriving for the same assignment
// yields the same two rows.
//
// Call through WithTx so the constraints commit atomically with the
// assignment itself.
func (e *Engine) OnAssignmentCreated(a *models.Assignment) error {
	day, err := ParseDate(a.Date)
	if err != nil {
		return fmt.Errorf("invalid assignment date %q: %w", a.Date, err)
	}

	for _, blockedDate := range []string{ShiftDate(day, -1), ShiftDate(day, 1)} {
		dc := models.DynamicConstraint{
			GuideID:     a.GuideID,
			BlockedDate: blockedDate,
			SourceDate:  a.Date,
			ScheduleID:  a.ScheduleID,
		}
		err := e.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&dc).Error
		if err != nil {
			return fmt.Errorf("creating dynamic constraint for %s: %w", blockedDate, err)
		}
	}
	return nil
}

// OnAssignmentRemoved retracts the adjacency blocks derived from an
// assignment. Deletion is keyed by (guide, sourceDate, schedule), never by the
// assignment's row id, so it is the exact inverse of OnAssignmentCreated and
// survives bulk regeneration.
func (e *Engine) OnAssignmentRemoved(a *models.Assignment) error {
	err := e.db.
		Where("guide_id = ? AND source_date = ? AND schedule_id = ?", a.GuideID, a.Date, a.ScheduleID).
		Delete(&models.DynamicConstraint{}).Error
	if err != nil {
		return fmt.Errorf("removing dynamic constraints: %w", err)
	}
	return nil
}

// Regenerate rebuilds every dynamic constraint of a schedule from its live
// assignments: clear, then re-derive. This is the reconciliation path for
// derived state suspected to have drifted. Returns the number of constraints
// derived.
func (e *Engine) Regenerate(scheduleID string) (int, error) {
	err := e.db.Where("schedule_id = ?", scheduleID).Delete(&models.DynamicConstraint{}).Error
	if err != nil {
		return 0, fmt.Errorf("clearing dynamic constraints: %w", err)
	}

	var assignments []models.Assignment
	if err := e.db.Where("schedule_id = ?", scheduleID).Find(&assignments).Error; err != nil {
		return 0, fmt.Errorf("loading assignments: %w", err)
	}

	generated := 0
	for i := range assignments {
		if err := e.OnAssignmentCreated(&assignments[i]); err != nil {
			return generated, err
		}
		generated += 2
	}

	logrus.WithFields(logrus.Fields{
		"schedule_id": scheduleID,
		"assignments": len(assignments),
		"constraints": generated,
	}).Info("regenerated dynamic constraints")

	return generated, nil
}
