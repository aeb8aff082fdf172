// Package engine implements the shift assignment constraint and availability
// engine: availability evaluation, consecutive-day counting, assignment rule
// validation, derived adjacency-constraint lifecycle and fairness ranking.
//
// All reads and writes of constraint and assignment records go through this
// package; HTTP handlers only orchestrate transactions around it.
package engine

import (
	"errors"

	"gorm.io/gorm"
)

// ReasonCode identifies the structural reason a guide is blocked on a date.
type ReasonCode string

const (
	ReasonWeeklyConstraint   ReasonCode = "weekly_constraint"
	ReasonMonthlyConstraint  ReasonCode = "monthly_constraint"
	ReasonDynamicConstraint  ReasonCode = "dynamic_constraint"
	ReasonExistingAssignment ReasonCode = "existing_assignment"
	ReasonCoordinatorRule    ReasonCode = "coordinator_rule"
	ReasonGuideNotFound      ReasonCode = "guide_not_found"
)

// WarningCode is a soft signal that never blocks persistence.
type WarningCode string

const (
	WarningHighWorkload   WarningCode = "high_workload"
	WarningMediumWorkload WarningCode = "medium_workload"
)

// Monthly workload thresholds for the soft warnings.
const (
	highWorkloadThreshold   = 8
	mediumWorkloadThreshold = 6
)

var (
	ErrInvalidDateRange    = errors.New("start date must be before end date")
	ErrOverlappingVacation = errors.New("overlapping vacation request already exists")
	ErrConstraintNotFound  = errors.New("constraint not found")
	ErrNotVacation         = errors.New("constraint is not a vacation request")
)

// Engine evaluates and maintains scheduling constraints against a store.
type Engine struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// WithTx returns an engine bound to the given transaction so lifecycle writes
// can commit atomically with the assignment they mirror.
func (e *Engine) WithTx(tx *gorm.DB) *Engine {
	return &Engine{db: tx}
}
