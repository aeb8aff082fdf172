package engine

import (
	"fmt"

	"github.com/sigalit/guide-scheduler-api/pkg/models"
)

// maxConsecutiveScan bounds the day-by-day walk in both directions. A guide is
// never expected to work more than a week unbroken, so a miss beyond seven
// days is not re-scanned.
const maxConsecutiveScan = 7

// ConsecutiveDays describes the contiguous working days around a candidate
// date. Total counts the candidate date itself, so an isolated date is 1.
type ConsecutiveDays struct {
	Before int `json:"before"`
	After  int `json:"after"`
	Total  int `json:"total"`
}

// Count walks backward then forward from date, counting contiguous days with
// an existing assignment for the guide and stopping at the first gap.
func (e *Engine) Count(guideID, date string) (ConsecutiveDays, error) {
	day, err := ParseDate(date)
	if err != nil {
		return ConsecutiveDays{}, fmt.Errorf("invalid date %q: %w", date, err)
	}

	before := 0
	for offset := -1; offset >= -maxConsecutiveScan; offset-- {
		assigned, err := e.hasAssignmentOn(guideID, ShiftDate(day, offset))
		if err != nil {
			return ConsecutiveDays{}, err
		}
		if !assigned {
			break
		}
		before++
	}

	after := 0
	for offset := 1; offset <= maxConsecutiveScan; offset++ {
		assigned, err := e.hasAssignmentOn(guideID, ShiftDate(day, offset))
		if err != nil {
			return ConsecutiveDays{}, err
		}
		if !assigned {
			break
		}
		after++
	}

	return ConsecutiveDays{
		Before: before,
		After:  after,
		Total:  before + 1 + after,
	}, nil
}

func (e *Engine) hasAssignmentOn(guideID, date string) (bool, error) {
	var count int64
	err := e.db.Model(&models.Assignment{}).
		Where("guide_id = ? AND date = ?", guideID, date).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("checking assignment on %s: %w", date, err)
	}
	return count > 0, nil
}
