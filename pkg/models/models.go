package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DateLayout is the canonical format for schedule dates. Dates are stored as
// zero-padded ISO strings so day and range queries can use plain string
// comparison.
const DateLayout = "2006-01-02"

// UserRole determines what a user may do and which house they act for.
type UserRole string

const (
	RoleGuide       UserRole = "GUIDE"
	RoleCoordinator UserRole = "COORDINATOR"
	RoleAdmin       UserRole = "ADMIN"
)

// ScheduleStatus is monotonic: DRAFT -> FORMAL -> ARCHIVED.
type ScheduleStatus string

const (
	ScheduleDraft    ScheduleStatus = "DRAFT"
	ScheduleFormal   ScheduleStatus = "FORMAL"
	ScheduleArchived ScheduleStatus = "ARCHIVED"
)

// AssignmentRole distinguishes the primary guide from the backup slot.
type AssignmentRole string

const (
	RoleRegular AssignmentRole = "REGULAR"
	RoleBackup  AssignmentRole = "BACKUP"
)

// ShiftType is the day-granularity category of a shift.
type ShiftType string

const (
	ShiftWeekday       ShiftType = "WEEKDAY"
	ShiftOpenWeekend   ShiftType = "OPEN_WEEKEND"
	ShiftClosedWeekend ShiftType = "CLOSED_WEEKEND"
	ShiftHoliday       ShiftType = "HOLIDAY"
)

// ConstraintKind is the kind of a one-time (single date) constraint.
type ConstraintKind string

const (
	ConstraintUnavailable ConstraintKind = "UNAVAILABLE"
	ConstraintPreferred   ConstraintKind = "PREFERRED"
	ConstraintVacation    ConstraintKind = "VACATION"
)

// ConstraintStatus is the approval state of a recurring weekly constraint.
type ConstraintStatus string

const (
	StatusActive          ConstraintStatus = "ACTIVE"
	StatusInactive        ConstraintStatus = "INACTIVE"
	StatusPendingApproval ConstraintStatus = "PENDING_APPROVAL"
	StatusDeleted         ConstraintStatus = "DELETED"
)

// House is a scheduling tenant. It owns guides, schedules and coordinator rules.
type House struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Code      string    `gorm:"unique;not null" json:"code"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *House) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}

// User is a guide, coordinator or admin. Guides and coordinators belong to a house.
type User struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null" json:"username"`
	Name         string    `gorm:"not null" json:"name"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         UserRole  `gorm:"not null;default:GUIDE" json:"role"`
	HouseID      *string   `gorm:"index" json:"house_id,omitempty"`
	House        *House    `json:"house,omitempty"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Schedule is one house's month plan. Re-planning a month creates a new version.
type Schedule struct {
	ID        string         `gorm:"primaryKey" json:"id"`
	Month     int            `gorm:"not null;uniqueIndex:idx_schedule_version" json:"month"`
	Year      int            `gorm:"not null;uniqueIndex:idx_schedule_version" json:"year"`
	Version   int            `gorm:"not null;default:1;uniqueIndex:idx_schedule_version" json:"version"`
	HouseID   string         `gorm:"not null;uniqueIndex:idx_schedule_version" json:"house_id"`
	House     *House         `json:"house,omitempty"`
	Status    ScheduleStatus `gorm:"not null;default:DRAFT" json:"status"`
	CreatedBy string         `json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
}

func (s *Schedule) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Assignment binds a guide to a date within a schedule. The unique index on
// (guide_id, date) is the real defence against racing writers; rule validation
// is only a best-effort pre-filter.
type Assignment struct {
	ID              string         `gorm:"primaryKey" json:"id"`
	ScheduleID      string         `gorm:"not null;index" json:"schedule_id"`
	Schedule        *Schedule      `json:"schedule,omitempty"`
	GuideID         string         `gorm:"not null;uniqueIndex:idx_assignment_guide_date" json:"guide_id"`
	Guide           *User          `json:"guide,omitempty"`
	Date            string         `gorm:"not null;uniqueIndex:idx_assignment_guide_date" json:"date"`
	Role            AssignmentRole `gorm:"not null;default:REGULAR" json:"role"`
	ShiftType       ShiftType      `gorm:"not null" json:"shift_type"`
	IsManual        bool           `gorm:"default:true" json:"is_manual"`
	IsLocked        bool           `gorm:"default:false" json:"is_locked"`
	IsConfirmed     bool           `gorm:"default:false" json:"is_confirmed"`
	RejectionReason string         `json:"rejection_reason,omitempty"`
	CreatedBy       string         `json:"created_by"`
	CreatedAt       time.Time      `json:"created_at"`
}

func (a *Assignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// Constraint is a one-time, single-date availability restriction or preference.
// Vacation ranges are stored as one VACATION row per day.
type Constraint struct {
	ID          string         `gorm:"primaryKey" json:"id"`
	UserID      string         `gorm:"not null;uniqueIndex:idx_constraint_user_date" json:"user_id"`
	User        *User          `json:"user,omitempty"`
	HouseID     string         `gorm:"not null;index" json:"house_id"`
	Date        string         `gorm:"not null;uniqueIndex:idx_constraint_user_date" json:"date"`
	Kind        ConstraintKind `gorm:"not null" json:"kind"`
	Description string         `json:"description,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

func (c *Constraint) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// WeeklyConstraint recurs on every instance of DayOfWeek (0=Sunday) until its
// status changes. One row per (user, day); rejection flips the status rather
// than deleting the row.
type WeeklyConstraint struct {
	ID         string           `gorm:"primaryKey" json:"id"`
	UserID     string           `gorm:"not null;uniqueIndex:idx_weekly_user_day" json:"user_id"`
	User       *User            `json:"user,omitempty"`
	DayOfWeek  int              `gorm:"not null;uniqueIndex:idx_weekly_user_day" json:"day_of_week"`
	Status     ConstraintStatus `gorm:"not null;default:PENDING_APPROVAL" json:"status"`
	Reason     string           `json:"reason,omitempty"`
	ApprovedBy *string          `json:"approved_by,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

func (w *WeeklyConstraint) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}

// DynamicConstraint is a derived adjacency block: the guide may not work on
// BlockedDate because of their assignment on SourceDate. Rows are created and
// removed only by the engine's lifecycle manager, never by users, and are
// always addressed by the logical key (guide, source date, schedule) so that
// bulk regeneration stays consistent. The unique index makes re-derivation
// idempotent.
type DynamicConstraint struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	GuideID     string    `gorm:"not null;uniqueIndex:idx_dynamic_key" json:"guide_id"`
	BlockedDate string    `gorm:"not null;uniqueIndex:idx_dynamic_key" json:"blocked_date"`
	SourceDate  string    `gorm:"not null;uniqueIndex:idx_dynamic_key" json:"source_date"`
	ScheduleID  string    `gorm:"not null;uniqueIndex:idx_dynamic_key" json:"schedule_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func (d *DynamicConstraint) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// CoordinatorRule is a house-level policy. RuleType selects the behaviour and
// Parameters carries its JSON-encoded settings; unknown types are ignored by
// the availability evaluator so old databases keep working.
type CoordinatorRule struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	HouseID    string    `gorm:"not null;index" json:"house_id"`
	RuleType   string    `gorm:"not null" json:"rule_type"`
	Parameters string    `json:"parameters"`
	IsActive   bool      `gorm:"default:true" json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

func (r *CoordinatorRule) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
