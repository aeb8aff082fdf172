package engine

import (
	"testing"

	"github.com/sigalit/guide-scheduler-api/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOneTimeConstraint_DuplicateDateConflicts(t *testing.T) {
	e, db := newTestEngine(t)
	house := seedHouse(t, db)
	guide := seedGuide(t, db, house, "Noam")

	first, err := e.CreateOneTimeConstraint(guide.ID, house.ID, "2025-06-10", models.ConstraintUnavailable, "doctor")
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	// The second submission conflicts even with a different kind.
	_, err = e.CreateOneTimeConstraint(guide.ID, house.ID, "2025-06-10", models.ConstraintPreferred, "")
	assert.ErrorIs(t, err, ErrConstraintExists)

	// Other dates and other guides are unaffected.
	_, err = e.CreateOneTimeConstraint(guide.ID, house.ID, "2025-06-11", models.ConstraintUnavailable, "")
	assert.NoError(t, err)

	other := seedGuide(t, db, house, "Rotem")
	_, err = e.CreateOneTimeConstraint(other.ID, house.ID, "2025-06-10", models.ConstraintUnavailable, "")
	assert.NoError(t, err)
}

func TestDeleteOneTimeConstraint(t *testing.T) {
	e, db := newTestEngine(t)
	house := seedHouse(t, db)
	guide := seedGuide(t, db, house, "Noam")

	created, err := e.CreateOneTimeConstraint(guide.ID, house.ID, "2025-06-10", models.ConstraintUnavailable, "")
	require.NoError(t, err)

	require.NoError(t, e.DeleteOneTimeConstraint(created.ID))
	assert.ErrorIs(t, e.DeleteOneTimeConstraint(created.ID), ErrConstraintNotFound)
}

func TestUpsertWeeklyConstraint_CreatesThenRevives(t *testing.T) {
	e, db := newTestEngine(t)
	house := seedHouse(t, db)
	guide := seedGuide(t, db, house, "Noam")

	created, err := e.UpsertWeeklyConstraint(guide.ID, 5, "studies", models.StatusPendingApproval)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingApproval, created.Status)

	rejected, err := e.RejectWeeklyConstraint(created.ID, "coverage too thin")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDeleted, rejected.Status)

	// Re-submitting the same day revives the existing row rather than
	// inserting a second one for the (guide, day) pair.
	revived, err := e.UpsertWeeklyConstraint(guide.ID, 5, "studies again", models.StatusPendingApproval)
	require.NoError(t, err)
	assert.Equal(t, created.ID, revived.ID)
	assert.Equal(t, models.StatusPendingApproval, revived.Status)
	assert.Equal(t, "studies again", revived.Reason)
	assert.Nil(t, revived.ApprovedBy)

	var count int64
	require.NoError(t, db.Model(&models.WeeklyConstraint{}).
		Where("user_id = ? AND day_of_week = ?", guide.ID, 5).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpsertWeeklyConstraint_RejectsBadDay(t *testing.T) {
	e, db := newTestEngine(t)
	house := seedHouse(t, db)
	guide := seedGuide(t, db, house, "Noam")

	_, err := e.UpsertWeeklyConstraint(guide.ID, 7, "", models.StatusActive)
	assert.Error(t, err)
	_, err = e.UpsertWeeklyConstraint(guide.ID, -1, "", models.StatusActive)
	assert.Error(t, err)
}

func TestApproveWeeklyConstraint(t *testing.T) {
	e, db := newTestEngine(t)
	house := seedHouse(t, db)
	guide := seedGuide(t, db, house, "Noam")
	coordinator := seedGuide(t, db, house, "Dana")

	created, err := e.UpsertWeeklyConstraint(guide.ID, 5, "studies", models.StatusPendingApproval)
	require.NoError(t, err)

	approved, err := e.ApproveWeeklyConstraint(created.ID, coordinator.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, coordinator.ID, *approved.ApprovedBy)

	// Approval makes the constraint bind: the next Friday is now blocked.
	schedule := seedSchedule(t, db, house, 6, 2025)
	av, err := e.Evaluate(guide.ID, "2025-06-06", schedule.ID, "")
	require.NoError(t, err)
	assert.False(t, av.Available)
	assert.Equal(t, ReasonWeeklyConstraint, av.BlockedBy)
}

func TestRejectWeeklyConstraint_KeepsAuditTrail(t *testing.T) {
	e, db := newTestEngine(t)
	house := seedHouse(t, db)
	guide := seedGuide(t, db, house, "Noam")

	created, err := e.UpsertWeeklyConstraint(guide.ID, 2, "studies", models.StatusPendingApproval)
	require.NoError(t, err)

	rejected, err := e.RejectWeeklyConstraint(created.ID, "coverage too thin")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDeleted, rejected.Status)
	assert.Equal(t, "studies / rejected: coverage too thin", rejected.Reason)

	var stored models.WeeklyConstraint
	require.NoError(t, db.First(&stored, "id = ?", created.ID).Error)
	assert.Equal(t, models.StatusDeleted, stored.Status)
}

func TestWeeklyConstraintOps_NotFound(t *testing.T) {
	e, _ := newTestEngine(t)

	_, err := e.ApproveWeeklyConstraint("no-such-id", "approver")
	assert.ErrorIs(t, err, ErrConstraintNotFound)
	_, err = e.RejectWeeklyConstraint("no-such-id", "")
	assert.ErrorIs(t, err, ErrConstraintNotFound)
}
