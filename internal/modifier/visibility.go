package modifier

import (
	"fmt"

	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/internal/domain"
)

// GroupState is the resolved presentation state of one controlled group.
type GroupState struct {
	Visible  bool `json:"visible"`
	Required bool `json:"required"`
	Disabled bool `json:"disabled"`
}

// EvaluateRules resolves the visibility state of every controlled group. A
// rule fires when all of its conditions hold (AND semantics, no nesting).
// Within a group, show and hide overwrite the visible flag so the last
// matching rule wins, while require and disable are sticky: once any matching
// rule sets them they stay set. The asymmetry is intentional.
func EvaluateRules(rules []domain.VisibilityRule, selectionsByGroup map[string][]string) map[string]GroupState {
	states := make(map[string]GroupState)
	for _, rule := range rules {
		state, ok := states[rule.ControlledGroupID]
		if !ok {
			state = GroupState{Visible: true}
		}
		if !conditionsHold(rule.Conditions, selectionsByGroup) {
			states[rule.ControlledGroupID] = state
			continue
		}
		switch rule.Effect {
		case domain.EffectShow:
			state.Visible = true
		case domain.EffectHide:
			state.Visible = false
		case domain.EffectRequire:
			state.Required = true
		case domain.EffectDisable:
			state.Disabled = true
		}
		states[rule.ControlledGroupID] = state
	}
	return states
}

func conditionsHold(conds []domain.RuleCondition, selectionsByGroup map[string][]string) bool {
	for _, c := range conds {
		if !conditionHolds(c, selectionsByGroup) {
			return false
		}
	}
	return true
}

func conditionHolds(c domain.RuleCondition, selectionsByGroup map[string][]string) bool {
	selected := selectionsByGroup[c.TargetGroupID]
	switch c.Operator {
	case domain.OpModifierSelected:
		return containsID(selected, c.TargetModifierID)
	case domain.OpModifierNotSelected:
		return !containsID(selected, c.TargetModifierID)
	case domain.OpGroupHasAnySelection:
		return len(selected) > 0
	case domain.OpGroupHasNoSelection:
		return len(selected) == 0
	default:
		return false
	}
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// DetectSelfReferences flags rules whose conditions target the group the rule
// itself controls. This is a direct-reference check only; DetectCycles covers
// transitive cycles across multiple rules.
func DetectSelfReferences(rules []domain.VisibilityRule) []string {
	var warnings []string
	for i, rule := range rules {
		for _, c := range rule.Conditions {
			if c.TargetGroupID == rule.ControlledGroupID {
				warnings = append(warnings,
					fmt.Sprintf("rule %d: group %q is controlled by its own selection state", i, rule.ControlledGroupID))
				break
			}
		}
	}
	return warnings
}

// DetectCycles finds transitive dependency cycles across the rule set, e.g. a
// rule on A targeting B combined with a rule on B targeting A. Each cycle is
// reported once as the list of group IDs along it.
func DetectCycles(rules []domain.VisibilityRule) [][]string {
	deps := make(map[string][]string)
	for _, rule := range rules {
		for _, c := range rule.Conditions {
			deps[rule.ControlledGroupID] = append(deps[rule.ControlledGroupID], c.TargetGroupID)
		}
	}

	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)
	state := make(map[string]int)
	var cycles [][]string
	var stack []string

	var visit func(node string)
	visit = func(node string) {
		state[node] = inStack
		stack = append(stack, node)
		for _, next := range deps[node] {
			switch state[next] {
			case unvisited:
				visit(next)
			case inStack:
				for i, n := range stack {
					if n == next {
						cycle := make([]string, len(stack)-i)
						copy(cycle, stack[i:])
						cycles = append(cycles, cycle)
						break
					}
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[node] = done
	}

	for node := range deps {
		if state[node] == unvisited {
			visit(node)
		}
	}
	return cycles
}

// FilterSelectionsToVisible drops selections belonging to groups resolved as
// not visible. Groups without an entry in the visibility map are untouched.
func FilterSelectionsToVisible(selectionsByGroup map[string][]string, states map[string]GroupState) map[string][]string {
	filtered := make(map[string][]string, len(selectionsByGroup))
	for groupID, ids := range selectionsByGroup {
		if state, ok := states[groupID]; ok && !state.Visible {
			continue
		}
		filtered[groupID] = ids
	}
	return filtered
}
