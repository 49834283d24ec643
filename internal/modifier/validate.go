// Package modifier implements the selection validation and conditional
// visibility rules for menu item modifier groups. Both engines are pure
// functions over catalog data and the customer's current selections.
package modifier

import (
	"fmt"

	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/internal/domain"
)

// Validation failure codes.
const (
	CodeRequiredMissing = "REQUIRED_MISSING"
	CodeUnavailable     = "UNAVAILABLE"
	CodeMinNotMet       = "MIN_NOT_MET"
	CodeMaxExceeded     = "MAX_EXCEEDED"
)

// GroupResult is the outcome of validating one group's selections.
type GroupResult struct {
	Valid   bool   `json:"valid"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// ValidateGroup checks one group's selections against its rules. Conditions
// are checked in a fixed order and the first failure wins: required-missing,
// then the empty short-circuit for optional groups, then unavailable
// modifiers, then min, then max.
func ValidateGroup(group domain.ModifierGroup, selections []string) GroupResult {
	if group.Required && len(selections) == 0 {
		return GroupResult{
			Code:    CodeRequiredMissing,
			Message: fmt.Sprintf("%s requires a selection", group.Name),
		}
	}
	if len(selections) == 0 {
		return GroupResult{Valid: true}
	}

	for _, id := range selections {
		m, ok := group.Modifier(id)
		if !ok || !m.Available {
			return GroupResult{
				Code:    CodeUnavailable,
				Message: fmt.Sprintf("A selected option in %s is no longer available", group.Name),
			}
		}
	}

	if group.MinSelections > 0 && len(selections) < group.MinSelections {
		return GroupResult{
			Code:    CodeMinNotMet,
			Message: fmt.Sprintf("%s requires at least %d selections", group.Name, group.MinSelections),
		}
	}
	if group.MaxSelections != nil && len(selections) > *group.MaxSelections {
		return GroupResult{
			Code:    CodeMaxExceeded,
			Message: fmt.Sprintf("%s allows at most %d selections", group.Name, *group.MaxSelections),
		}
	}

	return GroupResult{Valid: true}
}

// ItemResult aggregates every failing group on an item so the caller can
// surface all errors at once.
type ItemResult struct {
	Valid  bool                   `json:"valid"`
	Errors map[string]GroupResult `json:"errors,omitempty"`
}

// ValidateItem runs ValidateGroup for every group on the item against the
// selections keyed by group ID. Groups absent from the map are validated with
// empty selections, so missing required groups still fail. Selections keyed
// by a group the item does not declare fail as unavailable.
func ValidateItem(groups []domain.ModifierGroup, selectionsByGroup map[string][]string) ItemResult {
	errs := make(map[string]GroupResult)
	declared := make(map[string]bool, len(groups))
	for _, g := range groups {
		declared[g.ID] = true
		if res := ValidateGroup(g, selectionsByGroup[g.ID]); !res.Valid {
			errs[g.ID] = res
		}
	}
	for groupID, ids := range selectionsByGroup {
		if !declared[groupID] && len(ids) > 0 {
			errs[groupID] = GroupResult{
				Code:    CodeUnavailable,
				Message: "These options are no longer offered for this item",
			}
		}
	}
	if len(errs) == 0 {
		return ItemResult{Valid: true}
	}
	return ItemResult{Errors: errs}
}

// FirstInvalidGroupID returns the ID of the first failing group in
// catalog-declared order, or "" when everything is valid. Declared order
// keeps "scroll to first error" behavior deterministic.
func FirstInvalidGroupID(groups []domain.ModifierGroup, selectionsByGroup map[string][]string) string {
	for _, g := range groups {
		if res := ValidateGroup(g, selectionsByGroup[g.ID]); !res.Valid {
			return g.ID
		}
	}
	return ""
}
