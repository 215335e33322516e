// internal/rules/evaluate.go
package rules

import "github.com/lazymak3r/meta-bulk-assign/internal/types"

/*
 * Rule tree evaluation.
 *
 * Produces a single boolean per catalog item:
 *
 *   - Empty root list matches every item (no rules = applies to all).
 *   - Root nodes are always OR'd together regardless of their stored
 *     operator: an item matches when it matches any root.
 *   - A node matches when its own leaf predicate holds and, if it has
 *     children, the child group combines true. The group operator is read
 *     from the first child only: the authoring-side coercion pass keeps
 *     sibling operators homogeneous, so reading one avoids a second
 *     invariant-violation branch here.
 *
 * The evaluator stays mechanical for malformed trees (repeated kinds,
 * heterogeneous siblings bypassing the authoring path): it never re-validates
 * and never errors. Cycles cannot occur because parent pointers are assigned
 * at node creation from already-existing ids, and Build walks only from
 * roots.
 */

// Evaluate reports whether the item matches the rule tree.
func Evaluate(item types.CatalogItem, t Tree) bool {
	if len(t.roots) == 0 {
		return true
	}

	for _, root := range t.roots {
		if t.evalNode(item, root) {
			return true
		}
	}
	return false
}

// evalNode evaluates one node: own predicate first, then the child group
// combined by the first child's operator (AND = all, OR = any).
func (t Tree) evalNode(item types.CatalogItem, idx int) bool {
	n := t.nodes[idx]

	if !MatchesLeaf(item, n.rule) {
		return false
	}
	if len(n.children) == 0 {
		return true
	}

	if t.nodes[n.children[0]].rule.Operator == types.OperatorOr {
		for _, c := range n.children {
			if t.evalNode(item, c) {
				return true
			}
		}
		return false
	}

	for _, c := range n.children {
		if !t.evalNode(item, c) {
			return false
		}
	}
	return true
}
