// internal/rules/infer.go
package rules

import (
	"strings"

	"github.com/lazymak3r/meta-bulk-assign/internal/types"
)

// DefaultConfigurationName is used when a configuration has no rules and no
// user-supplied name.
const DefaultConfigurationName = "New Configuration"

// InferType derives a configuration's classification from its rule set.
// Empty rule sets are combined; a homogeneous set takes its kind's label;
// anything mixed is combined. Runs on every create/update, the stored type
// is never user-overridden.
func InferType(flat []types.Rule) types.ConfigurationType {
	if len(flat) == 0 {
		return types.TypeCombined
	}

	kind := flat[0].Kind
	for _, r := range flat[1:] {
		if r.Kind != kind {
			return types.TypeCombined
		}
	}

	switch kind {
	case types.KindVendor:
		return types.TypeVendor
	case types.KindCategory:
		return types.TypeCategory
	case types.KindCollection:
		return types.TypeCollection
	case types.KindProduct:
		return types.TypeProduct
	default:
		return types.TypeCombined
	}
}

// InferName derives a human-readable default name from a rule set. A single
// root rule names itself ("Vendor: Acme"); multiple roots fall back to the
// inferred type ("Combined Configuration"). An explicit user-supplied name
// always takes precedence over this at the service layer.
func InferName(flat []types.Rule) string {
	if len(flat) == 0 {
		return DefaultConfigurationName
	}

	var roots []types.Rule
	for _, r := range flat {
		if r.IsRoot() {
			roots = append(roots, r)
		}
	}

	if len(roots) == 1 {
		return capitalize(string(roots[0].Kind)) + ": " + roots[0].MatchValue
	}
	return capitalize(string(InferType(flat))) + " Configuration"
}

// capitalize upper-cases the first byte; rule kinds and type labels are ASCII.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
