package match

import (
	"context"
	"errors"
	"testing"

	"github.com/lazymak3r/meta-bulk-assign/internal/catalog"
	"github.com/lazymak3r/meta-bulk-assign/internal/rules"
	"github.com/lazymak3r/meta-bulk-assign/internal/types"
)

// stubSource serves a fixed item list; writes and object resolution are
// unused by the matcher.
type stubSource struct {
	items []types.CatalogItem
	err   error
}

func (s *stubSource) FetchAllItems(ctx context.Context) ([]types.CatalogItem, error) {
	return s.items, s.err
}

func (s *stubSource) FetchItemsByVendor(ctx context.Context, vendor string) ([]types.CatalogItem, error) {
	var out []types.CatalogItem
	for _, item := range s.items {
		if item.Vendor == vendor {
			out = append(out, item)
		}
	}
	return out, s.err
}

func (s *stubSource) WriteItemFields(ctx context.Context, itemID string, fields []catalog.FieldInput) ([]catalog.FieldError, error) {
	return nil, nil
}

func (s *stubSource) ResolveStructuredObject(ctx context.Context, definitionID string, fields map[string]string, existingID string) (string, error) {
	return "", nil
}

func (s *stubSource) FetchStructuredObjectDefinition(ctx context.Context, definitionID string) (*catalog.ObjectDefinition, error) {
	return nil, nil
}

type stubLoader struct {
	rules []types.Rule
	err   error
}

func (l *stubLoader) ListRulesByConfiguration(ctx context.Context, id types.ConfigurationID) ([]types.Rule, error) {
	return l.rules, l.err
}

func catalogFixture() []types.CatalogItem {
	return []types.CatalogItem{
		{ID: "p1", Vendor: "Acme", Category: types.ItemCategory{Name: "Apparel"}},
		{ID: "p2", Vendor: "Acme", Category: types.ItemCategory{Name: "Shoes"}},
		{ID: "p3", Vendor: "Globex", Category: types.ItemCategory{Name: "Apparel"}},
	}
}

func TestFindMatching_Filters(t *testing.T) {
	m := New(&stubSource{items: catalogFixture()})

	tree := rules.Build([]types.Rule{
		{ID: "r1", Kind: types.KindVendor, MatchValue: "Acme"},
	})

	matched, err := m.FindMatching(context.Background(), tree)
	if err != nil {
		t.Fatalf("FindMatching() error = %v, want nil", err)
	}
	if len(matched) != 2 {
		t.Fatalf("len(matched) = %d, want 2", len(matched))
	}
	if matched[0].ID != "p1" || matched[1].ID != "p2" {
		t.Errorf("matched ids = %v, %v, want p1, p2 (catalog order preserved)", matched[0].ID, matched[1].ID)
	}
}

func TestFindMatching_EmptyTreeMatchesAll(t *testing.T) {
	m := New(&stubSource{items: catalogFixture()})

	matched, err := m.FindMatching(context.Background(), rules.Build(nil))
	if err != nil {
		t.Fatalf("FindMatching() error = %v, want nil", err)
	}
	if len(matched) != 3 {
		t.Errorf("len(matched) = %d, want 3 (empty tree matches everything)", len(matched))
	}
}

func TestFindMatching_SourceError(t *testing.T) {
	m := New(&stubSource{err: errors.New("rate limited")})

	if _, err := m.FindMatching(context.Background(), rules.Build(nil)); err == nil {
		t.Errorf("FindMatching() error = nil, want fetch error")
	}
}

func TestFindMatchingForConfiguration(t *testing.T) {
	m := New(&stubSource{items: catalogFixture()})
	loader := &stubLoader{rules: []types.Rule{
		{ID: "r1", Kind: types.KindCategory, MatchValue: "Apparel"},
	}}

	matched, err := m.FindMatchingForConfiguration(context.Background(), loader, "cfg-1")
	if err != nil {
		t.Fatalf("FindMatchingForConfiguration() error = %v, want nil", err)
	}
	if len(matched) != 2 {
		t.Fatalf("len(matched) = %d, want 2", len(matched))
	}
}

func TestFindMatchingForConfiguration_LoaderError(t *testing.T) {
	m := New(&stubSource{items: catalogFixture()})
	loader := &stubLoader{err: errors.New("db down")}

	if _, err := m.FindMatchingForConfiguration(context.Background(), loader, "cfg-1"); err == nil {
		t.Errorf("FindMatchingForConfiguration() error = nil, want loader error")
	}
}
