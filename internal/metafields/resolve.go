package metafields

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lazymak3r/meta-bulk-assign/internal/catalog"
	"github.com/lazymak3r/meta-bulk-assign/internal/types"
)

/*
 * Structured-object reference resolution.
 *
 * A metaobject-reference field whose value is still a nested field map must
 * become an external identifier before the metafield can be written. Nested
 * fields can themselves be object references, so resolution recurses through
 * the external definitions, bounded by types.MaxResolveDepth (the external
 * schema imposes no limit; a corrupted or cyclic definition must not recurse
 * forever).
 *
 * A required nested field without a value fails the whole resolution; the
 * caller skips that top-level field only, never the item.
 */

// Resolver resolves object-reference values against the external store.
type Resolver struct {
	source catalog.Source
}

// NewResolver creates a resolver backed by the given catalog source.
func NewResolver(source catalog.Source) *Resolver {
	return &Resolver{source: source}
}

// ResolveReference resolves ref to an external identifier, creating the
// object when ref.ID is empty and updating in place otherwise.
func (r *Resolver) ResolveReference(ctx context.Context, ref types.ObjectRefValue) (string, error) {
	return r.resolve(ctx, ref, 0)
}

func (r *Resolver) resolve(ctx context.Context, ref types.ObjectRefValue, depth int) (string, error) {
	// Already resolved: nothing to write.
	if ref.ID != "" && len(ref.Fields) == 0 {
		return ref.ID, nil
	}
	if depth >= types.MaxResolveDepth {
		return "", types.ErrResolveDepthExceeded
	}
	if ref.DefinitionID == "" {
		return "", types.ErrMissingDefinition
	}

	def, err := r.source.FetchStructuredObjectDefinition(ctx, ref.DefinitionID)
	if err != nil {
		return "", fmt.Errorf("loading definition %s: %w", ref.DefinitionID, err)
	}

	fields := make(map[string]string, len(def.Fields))
	for _, fd := range def.Fields {
		value, ok := ref.Fields[fd.Key]
		if !ok || value == nil || value.Empty() {
			if fd.Required {
				return "", fmt.Errorf("field %q: %w", fd.Key, types.ErrMissingRequiredField)
			}
			continue
		}

		encoded, err := r.encodeNested(ctx, fd, value, depth)
		if err != nil {
			return "", fmt.Errorf("field %q: %w", fd.Key, err)
		}
		fields[fd.Key] = encoded
	}

	return r.source.ResolveStructuredObject(ctx, ref.DefinitionID, fields, ref.ID)
}

// encodeNested converts one nested field value to its wire string, recursing
// through object references. List values encode as a JSON string array.
func (r *Resolver) encodeNested(ctx context.Context, fd catalog.ObjectFieldDefinition, value types.FieldValue, depth int) (string, error) {
	switch v := value.(type) {
	case types.ScalarValue:
		return string(v), nil

	case types.FileRefValue:
		return string(v), nil

	case types.ObjectRefValue:
		if v.DefinitionID == "" {
			v.DefinitionID = fd.NestedDefinitionID
		}
		return r.resolve(ctx, v, depth+1)

	case types.RefListValue:
		encoded := make([]string, 0, len(v))
		for _, elem := range v {
			if elem == nil || elem.Empty() {
				continue
			}
			s, err := r.encodeNested(ctx, fd, elem, depth)
			if err != nil {
				return "", err
			}
			encoded = append(encoded, s)
		}
		out, err := json.Marshal(encoded)
		if err != nil {
			return "", err
		}
		return string(out), nil

	default:
		return "", fmt.Errorf("%w: %T", types.ErrUnknownValueType, value)
	}
}
