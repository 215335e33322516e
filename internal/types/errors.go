package types

import "errors"

// Sentinel errors for meta-bulk-assign operations.
var (
	// ErrConfigurationNotFound indicates an unknown configuration id.
	ErrConfigurationNotFound = errors.New("configuration not found")

	// ErrMissingFieldSpecs indicates a create request without metafield specs.
	ErrMissingFieldSpecs = errors.New("configuration requires at least one metafield spec")

	// ErrDuplicateKindInChain indicates a rule kind repeated along an ancestor chain.
	ErrDuplicateKindInChain = errors.New("rule kind repeats in ancestor chain")

	// ErrMultipleProductRules indicates more than one product rule per configuration.
	ErrMultipleProductRules = errors.New("configuration allows only one product rule")

	// ErrProductRuleNotRoot indicates a product rule placed below a root.
	// Product rules are not composable with AND.
	ErrProductRuleNotRoot = errors.New("product rule must be a root node")

	// ErrInvalidRuleParent indicates a rule input referencing an out-of-range
	// or self parent index.
	ErrInvalidRuleParent = errors.New("invalid rule parent reference")

	// ErrUnknownValueType indicates a metafield spec with an unrecognized valueType tag.
	ErrUnknownValueType = errors.New("unknown metafield value type")

	// ErrResolveDepthExceeded indicates structured-object resolution past MaxResolveDepth.
	ErrResolveDepthExceeded = errors.New("structured object nesting exceeds maximum depth")

	// ErrMissingRequiredField indicates a required nested field without a value
	// during structured-object resolution.
	ErrMissingRequiredField = errors.New("required structured object field missing")

	// ErrMissingDefinition indicates a structured-object value with no
	// definition id to resolve against.
	ErrMissingDefinition = errors.New("structured object definition id missing")
)
