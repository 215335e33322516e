// internal/rules/tree_test.go
package rules

import (
	"testing"

	"github.com/lazymak3r/meta-bulk-assign/internal/types"
)

func TestBuild_FlatToTree(t *testing.T) {
	flat := []types.Rule{
		{ID: "r1", Kind: types.KindVendor, MatchValue: "Acme"},
		{ID: "r2", ParentID: "r1", Kind: types.KindCategory, MatchValue: "Apparel"},
		{ID: "r3", ParentID: "r1", Kind: types.KindCollection, MatchValue: "Summer"},
		{ID: "r4", Kind: types.KindVendor, MatchValue: "Globex"},
	}

	tree := Build(flat)

	roots := tree.Roots()
	if len(roots) != 2 {
		t.Fatalf("len(Roots()) = %d, want 2", len(roots))
	}
	if roots[0].ID != "r1" || roots[1].ID != "r4" {
		t.Errorf("root ids = %v, %v, want r1, r4", roots[0].ID, roots[1].ID)
	}
	if len(tree.nodes[0].children) != 2 {
		t.Errorf("len(children of r1) = %d, want 2", len(tree.nodes[0].children))
	}
}

func TestBuild_Empty(t *testing.T) {
	tree := Build(nil)
	if !tree.Empty() {
		t.Errorf("Empty() = false, want true")
	}
}

func TestBuild_DanglingParentDropped(t *testing.T) {
	flat := []types.Rule{
		{ID: "r1", Kind: types.KindVendor, MatchValue: "Acme"},
		{ID: "r2", ParentID: "missing", Kind: types.KindCategory, MatchValue: "Apparel"},
	}

	tree := Build(flat)

	if len(tree.Roots()) != 1 {
		t.Fatalf("len(Roots()) = %d, want 1 (dangling node is neither root nor child)", len(tree.Roots()))
	}
	if len(tree.nodes[0].children) != 0 {
		t.Errorf("len(children) = %d, want 0", len(tree.nodes[0].children))
	}
}

func TestBuild_SelfParentDropped(t *testing.T) {
	flat := []types.Rule{
		{ID: "r1", ParentID: "r1", Kind: types.KindVendor, MatchValue: "Acme"},
	}

	tree := Build(flat)

	if !tree.Empty() {
		t.Errorf("Empty() = false, want true (self-parented node dropped)")
	}
}

func TestBuild_PositionOrdering(t *testing.T) {
	flat := []types.Rule{
		{ID: "r1", Kind: types.KindVendor, MatchValue: "B", Position: 2},
		{ID: "r2", Kind: types.KindVendor, MatchValue: "A", Position: 1},
		{ID: "r3", ParentID: "r2", Kind: types.KindCategory, MatchValue: "Y", Position: 1},
		{ID: "r4", ParentID: "r2", Kind: types.KindCollection, MatchValue: "X", Position: 0},
	}

	tree := Build(flat)

	roots := tree.Roots()
	if roots[0].ID != "r2" || roots[1].ID != "r1" {
		t.Errorf("root order = %v, %v, want r2, r1", roots[0].ID, roots[1].ID)
	}

	children := tree.nodes[1].children
	if tree.nodes[children[0]].rule.ID != "r4" {
		t.Errorf("first child = %v, want r4 (position 0)", tree.nodes[children[0]].rule.ID)
	}
}
