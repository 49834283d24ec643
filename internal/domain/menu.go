package domain

import (
	"time"
)

// Modifier is a single selectable option within a modifier group.
type Modifier struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	PriceAdjustmentCents int64  `json:"price_adjustment_cents"`
	Available            bool   `json:"available"`
}

// ModifierGroup is a named set of modifiers with selection rules.
// MaxSelections of nil means unlimited.
type ModifierGroup struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Required      bool       `json:"required"`
	MinSelections int        `json:"min_selections"`
	MaxSelections *int       `json:"max_selections,omitempty"`
	DisplayOrder  int        `json:"display_order"`
	Modifiers     []Modifier `json:"modifiers"`
}

// Modifier returns the modifier with the given ID and whether it exists.
func (g ModifierGroup) Modifier(id string) (Modifier, bool) {
	for _, m := range g.Modifiers {
		if m.ID == id {
			return m, true
		}
	}
	return Modifier{}, false
}

// HasModifier reports whether the group currently contains the given modifier.
func (g ModifierGroup) HasModifier(id string) bool {
	_, ok := g.Modifier(id)
	return ok
}

// MenuItem is an item in the authoritative menu catalog. Its base price and
// modifier price adjustments are the only prices the checkout pipeline trusts.
type MenuItem struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	BasePriceCents  int64            `json:"base_price_cents"`
	Active          bool             `json:"active"`
	ModifierGroups  []ModifierGroup  `json:"modifier_groups,omitempty"`
	VisibilityRules []VisibilityRule `json:"visibility_rules,omitempty"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// Group returns the modifier group with the given ID and whether it exists.
func (i MenuItem) Group(id string) (ModifierGroup, bool) {
	for _, g := range i.ModifierGroups {
		if g.ID == id {
			return g, true
		}
	}
	return ModifierGroup{}, false
}
