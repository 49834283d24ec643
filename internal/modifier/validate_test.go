package modifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/internal/domain"
)

func intPtr(v int) *int { return &v }

func sizeGroup() domain.ModifierGroup {
	return domain.ModifierGroup{
		ID:       "grp-size",
		Name:     "Size",
		Required: true,
		Modifiers: []domain.Modifier{
			{ID: "mod-small", Name: "Small", Available: true},
			{ID: "mod-large", Name: "Large", Available: true},
			{ID: "mod-retired", Name: "Retired", Available: false},
		},
	}
}

func TestValidateGroup_RequiredMissing(t *testing.T) {
	res := ValidateGroup(sizeGroup(), nil)

	assert.False(t, res.Valid)
	assert.Equal(t, CodeRequiredMissing, res.Code)
	assert.Contains(t, res.Message, "Size")
}

func TestValidateGroup_OptionalEmptyShortCircuits(t *testing.T) {
	g := sizeGroup()
	g.Required = false
	g.MinSelections = 2 // would fail if the short-circuit did not fire

	res := ValidateGroup(g, nil)
	assert.True(t, res.Valid)
}

func TestValidateGroup_UnavailableModifier(t *testing.T) {
	t.Run("unknown id", func(t *testing.T) {
		res := ValidateGroup(sizeGroup(), []string{"mod-deleted"})
		assert.Equal(t, CodeUnavailable, res.Code)
	})
	t.Run("present but marked unavailable", func(t *testing.T) {
		res := ValidateGroup(sizeGroup(), []string{"mod-retired"})
		assert.Equal(t, CodeUnavailable, res.Code)
	})
}

func TestValidateGroup_MinNotMet(t *testing.T) {
	g := sizeGroup()
	g.MinSelections = 2

	res := ValidateGroup(g, []string{"mod-small"})
	assert.Equal(t, CodeMinNotMet, res.Code)
}

func TestValidateGroup_MaxExceeded(t *testing.T) {
	g := sizeGroup()
	g.MaxSelections = intPtr(1)

	res := ValidateGroup(g, []string{"mod-small", "mod-large"})
	assert.Equal(t, CodeMaxExceeded, res.Code)
}

func TestValidateGroup_UnavailableWinsOverMin(t *testing.T) {
	g := sizeGroup()
	g.MinSelections = 2

	res := ValidateGroup(g, []string{"mod-deleted"})
	assert.Equal(t, CodeUnavailable, res.Code)
}

func TestValidateGroup_Valid(t *testing.T) {
	res := ValidateGroup(sizeGroup(), []string{"mod-large"})
	assert.True(t, res.Valid)
	assert.Empty(t, res.Code)
}

func TestValidateItem_AggregatesAllFailures(t *testing.T) {
	sauces := domain.ModifierGroup{
		ID:            "grp-sauce",
		Name:          "Sauces",
		MinSelections: 2,
		Modifiers:     []domain.Modifier{{ID: "mod-bbq", Available: true}},
	}
	groups := []domain.ModifierGroup{sizeGroup(), sauces}

	res := ValidateItem(groups, map[string][]string{
		"grp-sauce": {"mod-bbq"},
	})

	assert.False(t, res.Valid)
	assert.Len(t, res.Errors, 2)
	assert.Equal(t, CodeRequiredMissing, res.Errors["grp-size"].Code)
	assert.Equal(t, CodeMinNotMet, res.Errors["grp-sauce"].Code)
}

func TestValidateItem_Valid(t *testing.T) {
	res := ValidateItem([]domain.ModifierGroup{sizeGroup()}, map[string][]string{
		"grp-size": {"mod-small"},
	})

	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
}

func TestValidateItem_UndeclaredGroupRejected(t *testing.T) {
	res := ValidateItem([]domain.ModifierGroup{}, map[string][]string{
		"grp-ghost": {"mod-x"},
	})

	assert.False(t, res.Valid)
	assert.Equal(t, CodeUnavailable, res.Errors["grp-ghost"].Code)
}

func TestFirstInvalidGroupID_DeclaredOrder(t *testing.T) {
	second := domain.ModifierGroup{ID: "grp-b", Name: "B", Required: true}
	first := domain.ModifierGroup{ID: "grp-a", Name: "A", Required: true}

	got := FirstInvalidGroupID([]domain.ModifierGroup{first, second}, nil)
	assert.Equal(t, "grp-a", got)

	got = FirstInvalidGroupID([]domain.ModifierGroup{first, second}, map[string][]string{
		"grp-a": {"mod-x"},
	})
	// grp-a fails on availability, still first in declared order.
	assert.Equal(t, "grp-a", got)
}
