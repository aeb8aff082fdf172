package engine

import (
	"fmt"
	"sort"

	"github.com/sigalit/guide-scheduler-api/pkg/models"
)

// RankedGuide is one candidate in a fairness-ordered suggestion list.
type RankedGuide struct {
	ID                 string      `json:"id"`
	Name               string      `json:"name"`
	Username           string      `json:"username"`
	IsAvailable        bool        `json:"is_available"`
	BlockedBy          ReasonCode  `json:"blocked_by,omitempty"`
	Warning            WarningCode `json:"warning,omitempty"`
	MonthlyAssignments int         `json:"monthly_assignments"`
}

// Rank orders candidate guides for a date: available guides first, sorted by
// ascending monthly assignment count so lightly-loaded guides are suggested
// first; unavailable guides trail, alphabetical by name as a deterministic
// tie-break. The order is advisory only and never a hard constraint.
func (e *Engine) Rank(candidates []models.User, date, scheduleID string) ([]RankedGuide, error) {
	day, err := ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	ranked := make([]RankedGuide, 0, len(candidates))
	for _, guide := range candidates {
		availability, err := e.Evaluate(guide.ID, date, scheduleID, "")
		if err != nil {
			return nil, err
		}
		monthly, err := e.MonthlyAssignmentCount(guide.ID, day)
		if err != nil {
			return nil, err
		}
		ranked = append(ranked, RankedGuide{
			ID:                 guide.ID,
			Name:               guide.Name,
			Username:           guide.Username,
			IsAvailable:        availability.Available,
			BlockedBy:          availability.BlockedBy,
			Warning:            availability.Warning,
			MonthlyAssignments: monthly,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.IsAvailable != b.IsAvailable {
			return a.IsAvailable
		}
		if a.IsAvailable {
			return a.MonthlyAssignments < b.MonthlyAssignments
		}
		return a.Name < b.Name
	})

	return ranked, nil
}
