// Package match filters catalog items through a configuration's rule tree.
package match

import (
	"context"
	"fmt"

	"github.com/lazymak3r/meta-bulk-assign/internal/catalog"
	"github.com/lazymak3r/meta-bulk-assign/internal/rules"
	"github.com/lazymak3r/meta-bulk-assign/internal/types"
)

// RuleLoader loads a saved configuration's rule set. Implemented by
// *store.Store.
type RuleLoader interface {
	ListRulesByConfiguration(ctx context.Context, id types.ConfigurationID) ([]types.Rule, error)
}

// Matcher runs rule trees over the full catalog. Every call is an
// O(catalog) scan through the paged fetch; no index is maintained between
// requests. That ceiling is accepted for the target catalog sizes.
type Matcher struct {
	source catalog.Source
}

// New creates a matcher over the given catalog source.
func New(source catalog.Source) *Matcher {
	return &Matcher{source: source}
}

// FindMatching returns every catalog item the tree matches, in catalog-fetch
// order. Callers needing presentation order sort separately.
func (m *Matcher) FindMatching(ctx context.Context, tree rules.Tree) ([]types.CatalogItem, error) {
	items, err := m.source.FetchAllItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching catalog: %w", err)
	}

	matched := make([]types.CatalogItem, 0, len(items))
	for _, item := range items {
		if rules.Evaluate(item, tree) {
			matched = append(matched, item)
		}
	}
	return matched, nil
}

// FindMatchingForConfiguration loads a saved configuration's rule set and
// matches against it.
func (m *Matcher) FindMatchingForConfiguration(ctx context.Context, loader RuleLoader, id types.ConfigurationID) ([]types.CatalogItem, error) {
	flat, err := loader.ListRulesByConfiguration(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading rules for %s: %w", id, err)
	}
	return m.FindMatching(ctx, rules.Build(flat))
}
