// Package types provides domain models shared across meta-bulk-assign components.
//
// Hand-written types only: configurations, rules, catalog item shapes, and the
// metafield value union. Persistence row mapping lives in internal/core/store,
// wire conversion for the commerce platform in internal/catalog.
package types

import "time"

// ConfigurationID identifies a metafield configuration.
// String alias enables type safety while maintaining JSON string serialization.
// UUIDv7 time-ordering ensures sequential IDs cluster in B-tree indexes.
type ConfigurationID string

// RuleID identifies one node of a configuration's rule tree.
type RuleID string

// ConfigurationType classifies a configuration by the rule kinds it targets.
// Always derived from the attached rule set, never user-chosen (the stored
// value is a cache, recomputed on every write).
type ConfigurationType string

const (
	TypeVendor     ConfigurationType = "vendor"
	TypeCategory   ConfigurationType = "category"
	TypeCollection ConfigurationType = "collection"
	TypeProduct    ConfigurationType = "product"
	TypeCombined   ConfigurationType = "combined"
)

// RuleKind selects which catalog item attribute a leaf rule matches against.
type RuleKind string

const (
	KindVendor     RuleKind = "vendor"
	KindCollection RuleKind = "collection"
	KindCategory   RuleKind = "category"
	KindProduct    RuleKind = "product"
)

// RuleOperator describes how a rule combines with its siblings, not with its
// parent. Root rules are always OR'd together regardless of stored operator.
type RuleOperator string

const (
	OperatorAnd RuleOperator = "AND"
	OperatorOr  RuleOperator = "OR"
)

// StorefrontPosition is one of the fixed storefront injection points.
type StorefrontPosition string

const (
	PositionProductPage    StorefrontPosition = "product_page"
	PositionCollectionPage StorefrontPosition = "collection_page"
	PositionCartDrawer     StorefrontPosition = "cart_drawer"
)

// Configuration is a reusable set of metafield values plus a targeting rule
// tree, applied to the subset of catalog items the rules match.
type Configuration struct {
	ID                 ConfigurationID
	Tenant             string // shop/account key, simple isolation column
	Name               string // user-supplied or inferred from the rule set
	Type               ConfigurationType
	MetafieldSpecs     []FieldSpec
	Priority           int // higher applies first among matching configurations
	ShowOnStorefront   bool
	StorefrontPosition StorefrontPosition
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Rule is one node in a configuration's targeting tree, stored flat with a
// parent pointer. ParentID empty marks a root node. MatchRef, when present,
// is preferred over MatchValue: a single external id or a JSON-encoded list
// of ids. Level and Position exist for rendering; evaluation correctness does
// not depend on them.
type Rule struct {
	ID              RuleID
	ConfigurationID ConfigurationID
	ParentID        RuleID // empty = root
	Kind            RuleKind
	MatchValue      string // display-oriented value (vendor name, collection title)
	MatchRef        string // external id or JSON id list, empty = absent
	Operator        RuleOperator
	Level           int // depth from root, root = 0
	Position        int // sibling ordering index, display only
	CreatedAt       time.Time
}

// IsRoot reports whether the rule is a root node of its tree.
func (r Rule) IsRoot() bool {
	return r.ParentID == ""
}

// ItemCategory is a catalog item's category attribute.
type ItemCategory struct {
	ID   string
	Name string
}

// ItemCollection is one collection membership of a catalog item.
type ItemCollection struct {
	ID    string
	Title string
}

// CatalogItem is the attribute set the rule engine evaluates: identifier,
// vendor, category, and collection memberships. Event-triggered evaluation
// receives items without collections (the upstream payload omits them).
type CatalogItem struct {
	ID          string
	Vendor      string
	Category    ItemCategory
	Collections []ItemCollection
}

// InCollection reports whether the item belongs to the given collection id.
func (i CatalogItem) InCollection(id string) bool {
	for _, c := range i.Collections {
		if c.ID == id {
			return true
		}
	}
	return false
}

// ItemError records one failed item in a batch apply.
type ItemError struct {
	ItemID  string `json:"itemId"`
	Message string `json:"message"`
}

// ApplyReport summarizes a bulk apply. Successful and Failed are exact
// partitions of Total; Errors holds one entry per failed item.
type ApplyReport struct {
	Total      int         `json:"total"`
	Successful int         `json:"successful"`
	Failed     int         `json:"failed"`
	Errors     []ItemError `json:"errors"`
}

// Resource limits enforced by the engine to bound external calls and recursion.
const (
	// CatalogPageSize bounds the cursor-paged catalog fetch.
	// 250 is the commerce platform's per-page maximum.
	CatalogPageSize = 250

	// CollectionPageSize bounds per-item collection membership fetches.
	CollectionPageSize = 50

	// MaxResolveDepth bounds recursive structured-object resolution.
	// The external schema imposes no limit of its own; 8 levels guards
	// against corrupted or cyclic definitions.
	MaxResolveDepth = 8
)
