// internal/rules/tree.go
package rules

import (
	"sort"

	"github.com/lazymak3r/meta-bulk-assign/internal/types"
)

/*
 * Rule tree construction from flat parent-pointer rows.
 *
 * Build groups a configuration's flat rule list into an arena of nodes with
 * index-based child pointers: no recursive struct references, and dangling
 * parent detection is a single O(n) pass. Nodes whose parent_id references a
 * rule absent from the input are silently dropped (neither root nor child),
 * the expected behavior for partially deleted trees.
 *
 * Children and roots are ordered by position for deterministic walks; the
 * AND/OR semantics themselves are order-independent.
 */

type node struct {
	rule     types.Rule
	children []int
}

// Tree is an arena-backed rule tree. The zero value is an empty tree, which
// evaluates as matching every item.
type Tree struct {
	nodes []node
	roots []int
}

// Build converts a flat rule list into a tree grouped by parent id.
func Build(flat []types.Rule) Tree {
	t := Tree{nodes: make([]node, len(flat))}

	index := make(map[types.RuleID]int, len(flat))
	for i, r := range flat {
		t.nodes[i] = node{rule: r}
		index[r.ID] = i
	}

	for i, r := range flat {
		if r.IsRoot() {
			t.roots = append(t.roots, i)
			continue
		}
		parent, ok := index[r.ParentID]
		if !ok || parent == i {
			// Dangling parent: drop the node from the tree.
			continue
		}
		t.nodes[parent].children = append(t.nodes[parent].children, i)
	}

	t.sortByPosition(t.roots)
	for i := range t.nodes {
		t.sortByPosition(t.nodes[i].children)
	}

	return t
}

// Roots returns the root rules in position order.
func (t Tree) Roots() []types.Rule {
	out := make([]types.Rule, 0, len(t.roots))
	for _, idx := range t.roots {
		out = append(out, t.nodes[idx].rule)
	}
	return out
}

// Empty reports whether the tree has no reachable root.
func (t Tree) Empty() bool {
	return len(t.roots) == 0
}

func (t Tree) sortByPosition(idxs []int) {
	sort.SliceStable(idxs, func(a, b int) bool {
		return t.nodes[idxs[a]].rule.Position < t.nodes[idxs[b]].rule.Position
	})
}
