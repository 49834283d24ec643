package domain

// Visibility rule effects.
const (
	EffectShow    = "show"
	EffectHide    = "hide"
	EffectRequire = "require"
	EffectDisable = "disable"
)

// Visibility rule condition operators.
const (
	OpModifierSelected     = "modifier_selected"
	OpModifierNotSelected  = "modifier_not_selected"
	OpGroupHasAnySelection = "group_has_any_selection"
	OpGroupHasNoSelection  = "group_has_no_selection"
)

// RuleCondition is a single predicate over the current selection state.
// TargetModifierID is only meaningful for the modifier_selected and
// modifier_not_selected operators.
type RuleCondition struct {
	Operator         string `json:"operator"`
	TargetGroupID    string `json:"target_group_id"`
	TargetModifierID string `json:"target_modifier_id,omitempty"`
}

// VisibilityRule declares an effect applied to a controlled modifier group
// when all of its conditions hold (AND semantics, no nesting).
type VisibilityRule struct {
	ControlledGroupID string          `json:"controlled_group_id"`
	Effect            string          `json:"effect"`
	Conditions        []RuleCondition `json:"conditions"`
}
