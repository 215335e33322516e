// Package catalog defines the external commerce platform contract consumed
// by the matcher and the application pipeline, plus its Shopify Admin
// GraphQL implementation.
package catalog

import (
	"context"

	"github.com/lazymak3r/meta-bulk-assign/internal/types"
)

// External identifier prefixes for the commerce platform's global id scheme.
const (
	// GIDPrefix is the shape every resolved external identifier must have.
	GIDPrefix = "gid://shopify/"

	// MetaobjectGIDPrefix is the shape of resolved structured-object ids.
	MetaobjectGIDPrefix = "gid://shopify/Metaobject/"
)

// FieldInput is one metafield in wire shape: reference values carry gid
// strings, list values carry a JSON-encoded gid array.
type FieldInput struct {
	Namespace string
	Key       string
	Type      string
	Value     string
}

// FieldError is a per-field failure reported by a metafield write.
type FieldError struct {
	Field   string
	Message string
}

// ObjectFieldDefinition describes one field of a structured-object definition.
type ObjectFieldDefinition struct {
	Key                string
	Type               string
	Required           bool
	NestedDefinitionID string // set when Type is itself an object reference
}

// ObjectDefinition is the external schema of a structured object.
type ObjectDefinition struct {
	ID     string
	Type   string
	Fields []ObjectFieldDefinition
}

// Source is the catalog data source contract. Implementations page through
// the full catalog on demand and accept metafield writes; there is no
// incremental index, every match request is a full scan.
type Source interface {
	// FetchAllItems returns every catalog item with the attributes the rule
	// engine needs, following the pagination cursor until exhausted.
	FetchAllItems(ctx context.Context) ([]types.CatalogItem, error)

	// FetchItemsByVendor returns the items of one vendor, same shape.
	FetchItemsByVendor(ctx context.Context, vendor string) ([]types.CatalogItem, error)

	// WriteItemFields attaches metafields to one item in a single call.
	// Field-level failures come back as FieldErrors, not as an error.
	WriteItemFields(ctx context.Context, itemID string, fields []FieldInput) ([]FieldError, error)

	// ResolveStructuredObject creates (existingID empty) or updates a
	// structured object and returns its external identifier.
	ResolveStructuredObject(ctx context.Context, definitionID string, fields map[string]string, existingID string) (string, error)

	// FetchStructuredObjectDefinition loads a structured-object schema.
	FetchStructuredObjectDefinition(ctx context.Context, definitionID string) (*ObjectDefinition, error)
}
