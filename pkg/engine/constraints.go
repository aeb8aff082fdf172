package engine

import (
	"errors"
	"fmt"

	"github.com/sigalit/guide-scheduler-api/pkg/models"
	"gorm.io/gorm"
)

var ErrConstraintExists = errors.New("constraint already exists for this date")

// CreateOneTimeConstraint records a single-date constraint for a guide. The
// (guide, date) pair is unique; a second constraint on the same date is a
// conflict, not an overwrite.
func (e *Engine) CreateOneTimeConstraint(userID, houseID, date string, kind models.ConstraintKind, description string) (*models.Constraint, error) {
	if _, err := ParseDate(date); err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	var existing int64
	err := e.db.Model(&models.Constraint{}).
		Where("user_id = ? AND date = ?", userID, date).
		Count(&existing).Error
	if err != nil {
		return nil, fmt.Errorf("checking existing constraint: %w", err)
	}
	if existing > 0 {
		return nil, ErrConstraintExists
	}

	constraint := models.Constraint{
		UserID:      userID,
		HouseID:     houseID,
		Date:        date,
		Kind:        kind,
		Description: description,
	}
	if err := e.db.Create(&constraint).Error; err != nil {
		return nil, fmt.Errorf("creating constraint: %w", err)
	}
	return &constraint, nil
}

// DeleteOneTimeConstraint removes a single-date constraint by id.
func (e *Engine) DeleteOneTimeConstraint(constraintID string) error {
	result := e.db.Delete(&models.Constraint{}, "id = ?", constraintID)
	if result.Error != nil {
		return fmt.Errorf("deleting constraint: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrConstraintNotFound
	}
	return nil
}

// UpsertWeeklyConstraint records a recurring day-of-week constraint. At most
// one row exists per (guide, day); re-submitting the same day revives the
// existing row instead of violating the unique index, which keeps rejected
// (DELETED) rows reusable.
func (e *Engine) UpsertWeeklyConstraint(userID string, dayOfWeek int, reason string, status models.ConstraintStatus) (*models.WeeklyConstraint, error) {
	if dayOfWeek < 0 || dayOfWeek > 6 {
		return nil, fmt.Errorf("invalid day of week %d", dayOfWeek)
	}

	var constraint models.WeeklyConstraint
	err := e.db.Where("user_id = ? AND day_of_week = ?", userID, dayOfWeek).First(&constraint).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		constraint = models.WeeklyConstraint{
			UserID:    userID,
			DayOfWeek: dayOfWeek,
			Reason:    reason,
			Status:    status,
		}
		if err := e.db.Create(&constraint).Error; err != nil {
			return nil, fmt.Errorf("creating weekly constraint: %w", err)
		}
		return &constraint, nil
	case err != nil:
		return nil, fmt.Errorf("loading weekly constraint: %w", err)
	}

	constraint.Reason = reason
	constraint.Status = status
	constraint.ApprovedBy = nil
	if err := e.db.Save(&constraint).Error; err != nil {
		return nil, fmt.Errorf("updating weekly constraint: %w", err)
	}
	return &constraint, nil
}

// ApproveWeeklyConstraint activates a pending weekly constraint and records
// who approved it.
func (e *Engine) ApproveWeeklyConstraint(constraintID, approverID string) (*models.WeeklyConstraint, error) {
	var constraint models.WeeklyConstraint
	if err := e.db.First(&constraint, "id = ?", constraintID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConstraintNotFound
		}
		return nil, fmt.Errorf("loading weekly constraint: %w", err)
	}

	constraint.Status = models.StatusActive
	constraint.ApprovedBy = &approverID
	if err := e.db.Save(&constraint).Error; err != nil {
		return nil, fmt.Errorf("approving weekly constraint: %w", err)
	}
	return &constraint, nil
}

// RejectWeeklyConstraint marks a weekly constraint DELETED, keeping the row
// with the rejection reason for the audit trail.
func (e *Engine) RejectWeeklyConstraint(constraintID, rejectionReason string) (*models.WeeklyConstraint, error) {
	var constraint models.WeeklyConstraint
	if err := e.db.First(&constraint, "id = ?", constraintID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConstraintNotFound
		}
		return nil, fmt.Errorf("loading weekly constraint: %w", err)
	}

	constraint.Status = models.StatusDeleted
	if rejectionReason != "" {
		if constraint.Reason != "" {
			constraint.Reason = constraint.Reason + " / rejected: " + rejectionReason
		} else {
			constraint.Reason = "rejected: " + rejectionReason
		}
	}
	if err := e.db.Save(&constraint).Error; err != nil {
		return nil, fmt.Errorf("rejecting weekly constraint: %w", err)
	}
	return &constraint, nil
}
