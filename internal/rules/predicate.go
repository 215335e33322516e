// internal/rules/predicate.go
package rules

import (
	"encoding/json"

	"github.com/lazymak3r/meta-bulk-assign/internal/types"
)

/*
 * Leaf predicate evaluation.
 *
 * Decides whether one catalog item satisfies one rule node, ignoring the
 * node's children. Match semantics per kind:
 *
 *   - vendor:     exact string equality against match_value
 *   - category:   by external id when match_ref is present, else by name
 *   - collection: match_ref as JSON id list -> any membership; as single id
 *                 -> membership by id; absent -> any collection title equals
 *                 match_value
 *   - product:    match_ref required; JSON array -> id membership, otherwise
 *                 raw string equality against the item id
 *
 * Rules lacking both match_value and match_ref never match. Malformed
 * match_ref JSON degrades to the non-JSON fallback path
 * rather than erroring; no error can escape this evaluator.
 */

// MatchesLeaf reports whether the item satisfies the rule's own predicate.
func MatchesLeaf(item types.CatalogItem, rule types.Rule) bool {
	if rule.MatchValue == "" && rule.MatchRef == "" {
		return false
	}

	switch rule.Kind {
	case types.KindVendor:
		// match_ref has no meaning for vendors; without a value there is
		// nothing to compare against an empty-vendor item.
		return rule.MatchValue != "" && item.Vendor == rule.MatchValue
	case types.KindCategory:
		return matchCategory(item, rule)
	case types.KindCollection:
		return matchCollection(item, rule)
	case types.KindProduct:
		return matchProduct(item, rule)
	default:
		return false
	}
}

// matchCategory prefers the external id over the display name.
func matchCategory(item types.CatalogItem, rule types.Rule) bool {
	if rule.MatchRef != "" {
		return item.Category.ID == rule.MatchRef
	}
	return item.Category.Name == rule.MatchValue
}

// matchCollection matches by id when match_ref is present (single id or JSON
// id list), falling back to title comparison against match_value.
func matchCollection(item types.CatalogItem, rule types.Rule) bool {
	if rule.MatchRef != "" {
		if ids, ok := decodeIDList(rule.MatchRef); ok {
			for _, id := range ids {
				if item.InCollection(id) {
					return true
				}
			}
			return false
		}
		return item.InCollection(rule.MatchRef)
	}

	for _, c := range item.Collections {
		if c.Title == rule.MatchValue {
			return true
		}
	}
	return false
}

// matchProduct requires match_ref: a JSON id list or a single raw id.
func matchProduct(item types.CatalogItem, rule types.Rule) bool {
	if rule.MatchRef == "" {
		return false
	}
	if ids, ok := decodeIDList(rule.MatchRef); ok {
		for _, id := range ids {
			if id == item.ID {
				return true
			}
		}
		return false
	}
	return item.ID == rule.MatchRef
}

// decodeIDList attempts to parse a JSON-encoded string list.
// Returns ok=false for anything else, including malformed JSON; callers
// degrade to treating the raw value as a single id.
func decodeIDList(ref string) ([]string, bool) {
	var ids []string
	if err := json.Unmarshal([]byte(ref), &ids); err != nil {
		return nil, false
	}
	return ids, true
}
