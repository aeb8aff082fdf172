package engine

import (
	"testing"

	"github.com/sigalit/guide-scheduler-api/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRule_NoWeekends(t *testing.T) {
	spec := DecodeRule(models.CoordinatorRule{
		RuleType:   RuleNoWeekends,
		Parameters: `{"guideIds":["a","b"]}`,
	})
	require.IsType(t, NoWeekendsRule{}, spec)
	assert.Equal(t, []string{"a", "b"}, spec.(NoWeekendsRule).GuideIDs)
}

func TestDecodeRule_MaxWeekendShifts(t *testing.T) {
	spec := DecodeRule(models.CoordinatorRule{
		RuleType:   RuleMaxWeekendShifts,
		Parameters: `{"maxPerMonth":3}`,
	})
	require.IsType(t, MaxWeekendShiftsRule{}, spec)
	assert.Equal(t, 3, spec.(MaxWeekendShiftsRule).MaxPerMonth)
}

func TestDecodeRule_UnknownType(t *testing.T) {
	spec := DecodeRule(models.CoordinatorRule{
		RuleType:   "MIN_REST_HOURS",
		Parameters: `{"hours":12}`,
	})
	require.IsType(t, UnknownRule{}, spec)
	assert.Equal(t, "MIN_REST_HOURS", spec.(UnknownRule).Type)
}

func TestDecodeRule_MalformedParameters(t *testing.T) {
	// Broken or meaningless parameters degrade to UnknownRule so a bad rule
	// row never blocks the whole availability check.
	for _, params := range []string{`not-json`, `{"maxPerMonth":0}`, `{"maxPerMonth":-1}`} {
		spec := DecodeRule(models.CoordinatorRule{
			RuleType:   RuleMaxWeekendShifts,
			Parameters: params,
		})
		assert.IsType(t, UnknownRule{}, spec, "params %s", params)
	}

	spec := DecodeRule(models.CoordinatorRule{
		RuleType:   RuleNoWeekends,
		Parameters: `[`,
	})
	assert.IsType(t, UnknownRule{}, spec)
}

func TestEncodeRuleParams_RoundTrip(t *testing.T) {
	params, err := EncodeRuleParams(NoWeekendsRule{GuideIDs: []string{"g1"}})
	require.NoError(t, err)

	spec := DecodeRule(models.CoordinatorRule{RuleType: RuleNoWeekends, Parameters: params})
	require.IsType(t, NoWeekendsRule{}, spec)
	assert.Equal(t, []string{"g1"}, spec.(NoWeekendsRule).GuideIDs)
}
