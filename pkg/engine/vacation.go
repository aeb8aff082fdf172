package engine

import (
	"errors"
	"fmt"

	"github.com/sigalit/guide-scheduler-api/pkg/models"
	"gorm.io/gorm"
)

// CreateVacationRange records a vacation as one VACATION constraint per day in
// [startDate, endDate], created in a single transaction so a range never
// half-applies. Overlap with an existing vacation day is a conflict.
func (e *Engine) CreateVacationRange(userID, houseID, startDate, endDate, reason string) ([]models.Constraint, error) {
	start, err := ParseDate(startDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", startDate, err)
	}
	end, err := ParseDate(endDate)
	if err != nil {
		return nil, fmt.Errorf("invalid end date %q: %w", endDate, err)
	}
	if !start.Before(end) {
		return nil, ErrInvalidDateRange
	}

	var overlapping int64
	err = e.db.Model(&models.Constraint{}).
		Where("user_id = ? AND kind = ? AND date >= ? AND date <= ?",
			userID, models.ConstraintVacation, startDate, endDate).
		Count(&overlapping).Error
	if err != nil {
		return nil, fmt.Errorf("checking overlapping vacations: %w", err)
	}
	if overlapping > 0 {
		return nil, ErrOverlappingVacation
	}

	if reason == "" {
		reason = "vacation"
	}

	var created []models.Constraint
	err = e.db.Transaction(func(tx *gorm.DB) error {
		for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
			constraint := models.Constraint{
				UserID:      userID,
				HouseID:     houseID,
				Date:        FormatDate(day),
				Kind:        models.ConstraintVacation,
				Description: reason,
			}
			if err := tx.Create(&constraint).Error; err != nil {
				return fmt.Errorf("creating vacation day %s: %w", constraint.Date, err)
			}
			created = append(created, constraint)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// CancelVacationRange deletes every vacation day of the guide inside the
// range. Cancellation is keyed by the matched set, not by individual row ids,
// because a stored range is nothing more than its per-day rows. Returns how
// many days were removed.
func (e *Engine) CancelVacationRange(userID, startDate, endDate string) (int64, error) {
	if _, err := ParseDate(startDate); err != nil {
		return 0, fmt.Errorf("invalid start date %q: %w", startDate, err)
	}
	if _, err := ParseDate(endDate); err != nil {
		return 0, fmt.Errorf("invalid end date %q: %w", endDate, err)
	}

	result := e.db.
		Where("user_id = ? AND kind = ? AND date >= ? AND date <= ?",
			userID, models.ConstraintVacation, startDate, endDate).
		Delete(&models.Constraint{})
	if result.Error != nil {
		return 0, fmt.Errorf("cancelling vacation range: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// ApproveVacation marks one vacation day approved by appending the approver
// to its description.
func (e *Engine) ApproveVacation(constraintID, approverName string) (*models.Constraint, error) {
	constraint, err := e.vacationByID(constraintID)
	if err != nil {
		return nil, err
	}

	constraint.Description = constraint.Description + " / approved by " + approverName
	if err := e.db.Save(constraint).Error; err != nil {
		return nil, fmt.Errorf("approving vacation: %w", err)
	}
	return constraint, nil
}

// RejectVacation removes one vacation day; rejection means removal.
func (e *Engine) RejectVacation(constraintID string) error {
	constraint, err := e.vacationByID(constraintID)
	if err != nil {
		return err
	}
	if err := e.db.Delete(constraint).Error; err != nil {
		return fmt.Errorf("rejecting vacation: %w", err)
	}
	return nil
}

func (e *Engine) vacationByID(constraintID string) (*models.Constraint, error) {
	var constraint models.Constraint
	if err := e.db.First(&constraint, "id = ?", constraintID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConstraintNotFound
		}
		return nil, fmt.Errorf("loading constraint: %w", err)
	}
	if constraint.Kind != models.ConstraintVacation {
		return nil, ErrNotVacation
	}
	return &constraint, nil
}
