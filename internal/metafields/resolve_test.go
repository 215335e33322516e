package metafields

import (
	"context"
	"errors"
	"testing"

	"github.com/lazymak3r/meta-bulk-assign/internal/catalog"
	"github.com/lazymak3r/meta-bulk-assign/internal/types"
)

func TestResolveReference_AlreadyResolved(t *testing.T) {
	src := newFakeSource()
	r := NewResolver(src)

	gid, err := r.ResolveReference(context.Background(), types.ObjectRefValue{ID: "gid://shopify/Metaobject/42"})
	if err != nil {
		t.Fatalf("ResolveReference() error = %v, want nil", err)
	}
	if gid != "gid://shopify/Metaobject/42" {
		t.Errorf("gid = %q, want the existing id", gid)
	}
	if len(src.resolved) != 0 {
		t.Errorf("len(resolved) = %d, want 0 (no external call)", len(src.resolved))
	}
}

func TestResolveReference_CreatesObject(t *testing.T) {
	src := newFakeSource()
	src.definitions["def-1"] = &catalog.ObjectDefinition{
		ID:   "def-1",
		Type: "size_chart",
		Fields: []catalog.ObjectFieldDefinition{
			{Key: "title", Required: true},
			{Key: "notes"},
		},
	}
	r := NewResolver(src)

	ref := types.ObjectRefValue{
		DefinitionID: "def-1",
		Fields: map[string]types.FieldValue{
			"title": types.ScalarValue("Size guide"),
		},
	}

	gid, err := r.ResolveReference(context.Background(), ref)
	if err != nil {
		t.Fatalf("ResolveReference() error = %v, want nil", err)
	}
	if gid != "gid://shopify/Metaobject/1" {
		t.Errorf("gid = %q, want created metaobject gid", gid)
	}

	call := src.resolved[0]
	if call.ExistingID != "" {
		t.Errorf("ExistingID = %q, want empty (create)", call.ExistingID)
	}
	if call.Fields["title"] != "Size guide" {
		t.Errorf("fields.title = %q, want Size guide", call.Fields["title"])
	}
	if _, ok := call.Fields["notes"]; ok {
		t.Errorf("optional absent field present in payload, want omitted")
	}
}

func TestResolveReference_UpdatesInPlace(t *testing.T) {
	src := newFakeSource()
	src.definitions["def-1"] = &catalog.ObjectDefinition{
		ID:     "def-1",
		Fields: []catalog.ObjectFieldDefinition{{Key: "title"}},
	}
	r := NewResolver(src)

	ref := types.ObjectRefValue{
		ID:           "gid://shopify/Metaobject/42",
		DefinitionID: "def-1",
		Fields:       map[string]types.FieldValue{"title": types.ScalarValue("Updated")},
	}

	gid, err := r.ResolveReference(context.Background(), ref)
	if err != nil {
		t.Fatalf("ResolveReference() error = %v, want nil", err)
	}
	if gid != "gid://shopify/Metaobject/42" {
		t.Errorf("gid = %q, want the existing id (update keeps identity)", gid)
	}
	if src.resolved[0].ExistingID != "gid://shopify/Metaobject/42" {
		t.Errorf("ExistingID = %q, want the existing id", src.resolved[0].ExistingID)
	}
}

func TestResolveReference_MissingRequiredField(t *testing.T) {
	src := newFakeSource()
	src.definitions["def-1"] = &catalog.ObjectDefinition{
		ID:     "def-1",
		Fields: []catalog.ObjectFieldDefinition{{Key: "title", Required: true}},
	}
	r := NewResolver(src)

	ref := types.ObjectRefValue{
		DefinitionID: "def-1",
		Fields:       map[string]types.FieldValue{"other": types.ScalarValue("x")},
	}

	_, err := r.ResolveReference(context.Background(), ref)
	if !errors.Is(err, types.ErrMissingRequiredField) {
		t.Errorf("ResolveReference() error = %v, want ErrMissingRequiredField", err)
	}
}

func TestResolveReference_MissingDefinition(t *testing.T) {
	r := NewResolver(newFakeSource())

	ref := types.ObjectRefValue{
		Fields: map[string]types.FieldValue{"title": types.ScalarValue("x")},
	}

	_, err := r.ResolveReference(context.Background(), ref)
	if !errors.Is(err, types.ErrMissingDefinition) {
		t.Errorf("ResolveReference() error = %v, want ErrMissingDefinition", err)
	}
}

func TestResolveReference_NestedRecursion(t *testing.T) {
	src := newFakeSource()
	src.definitions["def-outer"] = &catalog.ObjectDefinition{
		ID: "def-outer",
		Fields: []catalog.ObjectFieldDefinition{
			{Key: "title"},
			{Key: "table", Type: "metaobject_reference", NestedDefinitionID: "def-inner"},
		},
	}
	src.definitions["def-inner"] = &catalog.ObjectDefinition{
		ID:     "def-inner",
		Fields: []catalog.ObjectFieldDefinition{{Key: "rows"}},
	}
	r := NewResolver(src)

	ref := types.ObjectRefValue{
		DefinitionID: "def-outer",
		Fields: map[string]types.FieldValue{
			"title": types.ScalarValue("Size guide"),
			// Nested reference without its own definition id: inherited
			// from the field definition.
			"table": types.ObjectRefValue{
				Fields: map[string]types.FieldValue{"rows": types.ScalarValue("5")},
			},
		},
	}

	gid, err := r.ResolveReference(context.Background(), ref)
	if err != nil {
		t.Fatalf("ResolveReference() error = %v, want nil", err)
	}
	if gid == "" {
		t.Fatalf("gid empty, want created metaobject gid")
	}

	if len(src.resolved) != 2 {
		t.Fatalf("len(resolved) = %d, want 2 (inner object created first)", len(src.resolved))
	}
	if src.resolved[0].DefinitionID != "def-inner" {
		t.Errorf("first resolve definition = %q, want def-inner", src.resolved[0].DefinitionID)
	}
	if src.resolved[1].Fields["table"] != "gid://shopify/Metaobject/1" {
		t.Errorf("outer table field = %q, want inner gid", src.resolved[1].Fields["table"])
	}
}

func TestResolveReference_DepthGuard(t *testing.T) {
	src := newFakeSource()
	// Self-referential definition: every level nests another object of the
	// same definition.
	src.definitions["def-cyclic"] = &catalog.ObjectDefinition{
		ID: "def-cyclic",
		Fields: []catalog.ObjectFieldDefinition{
			{Key: "child", Type: "metaobject_reference", NestedDefinitionID: "def-cyclic"},
		},
	}
	r := NewResolver(src)

	// Build a chain deeper than the resolution limit.
	ref := types.ObjectRefValue{DefinitionID: "def-cyclic", Fields: map[string]types.FieldValue{}}
	for i := 0; i < types.MaxResolveDepth+2; i++ {
		ref = types.ObjectRefValue{
			DefinitionID: "def-cyclic",
			Fields:       map[string]types.FieldValue{"child": ref},
		}
	}

	_, err := r.ResolveReference(context.Background(), ref)
	if !errors.Is(err, types.ErrResolveDepthExceeded) {
		t.Errorf("ResolveReference() error = %v, want ErrResolveDepthExceeded", err)
	}
}

func TestResolveReference_NestedList(t *testing.T) {
	src := newFakeSource()
	src.definitions["def-1"] = &catalog.ObjectDefinition{
		ID:     "def-1",
		Fields: []catalog.ObjectFieldDefinition{{Key: "images"}},
	}
	r := NewResolver(src)

	ref := types.ObjectRefValue{
		DefinitionID: "def-1",
		Fields: map[string]types.FieldValue{
			"images": types.RefListValue{
				types.FileRefValue("gid://shopify/MediaImage/1"),
				types.FileRefValue("gid://shopify/MediaImage/2"),
			},
		},
	}

	if _, err := r.ResolveReference(context.Background(), ref); err != nil {
		t.Fatalf("ResolveReference() error = %v, want nil", err)
	}

	want := `["gid://shopify/MediaImage/1","gid://shopify/MediaImage/2"]`
	if src.resolved[0].Fields["images"] != want {
		t.Errorf("images = %q, want %q", src.resolved[0].Fields["images"], want)
	}
}
