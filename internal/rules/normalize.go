// internal/rules/normalize.go
package rules

import "github.com/lazymak3r/meta-bulk-assign/internal/types"

/*
 * Authoring-side normalization and validation.
 *
 * NormalizeSiblingOperators implements the sibling coercion invariant as one
 * explicit pass rather than implicit mutation inside the builder: when any
 * rule in a sibling group carries OR, the whole group is coerced to OR. The
 * cross-sibling effect is surprising on purpose-built trees, so it lives in
 * one visible, testable function.
 *
 * ValidateRuleSet enforces the invariants only the authoring path guarantees:
 * a kind may not repeat along an ancestor chain, and at most one product rule
 * exists per configuration, always as a root (product rules are not
 * composable with AND). The evaluator does not re-enforce either; trees
 * written to storage directly evaluate mechanically.
 */

// NormalizeSiblingOperators returns a copy of the rule list where every
// sibling group containing an OR rule has all members coerced to OR.
// Run after every bulk insert of a configuration's rule set.
func NormalizeSiblingOperators(flat []types.Rule) []types.Rule {
	hasOr := make(map[types.RuleID]bool)
	for _, r := range flat {
		if r.Operator == types.OperatorOr {
			hasOr[r.ParentID] = true
		}
	}

	out := make([]types.Rule, len(flat))
	copy(out, flat)
	for i := range out {
		if hasOr[out[i].ParentID] {
			out[i].Operator = types.OperatorOr
		}
	}
	return out
}

// ValidateRuleSet checks authoring invariants over a configuration's flat
// rule list. Returns the first violation found.
func ValidateRuleSet(flat []types.Rule) error {
	byID := make(map[types.RuleID]types.Rule, len(flat))
	for _, r := range flat {
		byID[r.ID] = r
	}

	productRules := 0
	for _, r := range flat {
		if r.Kind == types.KindProduct {
			productRules++
			if productRules > 1 {
				return types.ErrMultipleProductRules
			}
			if !r.IsRoot() {
				return types.ErrProductRuleNotRoot
			}
		}

		if err := checkAncestorKinds(r, byID, len(flat)); err != nil {
			return err
		}
	}
	return nil
}

// checkAncestorKinds walks the parent chain rejecting repeated kinds.
// The walk is bounded by the rule count so corrupted parent cycles terminate.
func checkAncestorKinds(r types.Rule, byID map[types.RuleID]types.Rule, limit int) error {
	current := r
	for steps := 0; steps < limit; steps++ {
		parent, ok := byID[current.ParentID]
		if !ok {
			return nil
		}
		if parent.Kind == r.Kind {
			return types.ErrDuplicateKindInChain
		}
		current = parent
	}
	return nil
}
