// Package metafields implements the metafield application pipeline: turning
// a configuration's field specs into external writes against matching
// catalog items.
package metafields

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lazymak3r/meta-bulk-assign/internal/catalog"
	"github.com/lazymak3r/meta-bulk-assign/internal/logger"
	"github.com/lazymak3r/meta-bulk-assign/internal/types"
)

/*
 * Application pipeline.
 *
 * ApplyMetadata prepares the field specs for one item and writes the
 * survivors in a single external call:
 *
 *   - empty/absent values are skipped
 *   - object references still holding a field map are resolved first; a
 *     resolution failure drops that field only, the rest of the item's
 *     fields still write
 *   - resolved identifiers must match the external gid shape, otherwise the
 *     field is skipped with a logged warning - a malformed reference never
 *     aborts the item
 *
 * The external call's own field-level error report is surfaced as one
 * aggregated failure for the item; no automatic retry.
 *
 * BulkApply iterates items sequentially - external API rate limits are the
 * binding constraint, not local throughput - and a failure on one item is
 * recorded and processing continues. Reapplying the same field values is a
 * no-op change, so handlers built on this are safe to re-run.
 */

// Applier writes configuration field specs to catalog items.
type Applier struct {
	source   catalog.Source
	resolver *Resolver
	log      *logger.Logger
}

// NewApplier creates an applier with its own resolver over the same source.
func NewApplier(source catalog.Source, log *logger.Logger) *Applier {
	return &Applier{
		source:   source,
		resolver: NewResolver(source),
		log:      log,
	}
}

// ApplyMetadata writes all surviving field specs to one item in a single
// external call, returning the inputs actually written.
func (a *Applier) ApplyMetadata(ctx context.Context, itemID string, specs []types.FieldSpec) ([]catalog.FieldInput, error) {
	inputs := make([]catalog.FieldInput, 0, len(specs))
	for _, spec := range specs {
		input, ok := a.prepareField(ctx, itemID, spec)
		if !ok {
			continue
		}
		inputs = append(inputs, input)
	}

	if len(inputs) == 0 {
		return nil, nil
	}

	fieldErrs, err := a.source.WriteItemFields(ctx, itemID, inputs)
	if err != nil {
		return nil, fmt.Errorf("writing metafields to %s: %w", itemID, err)
	}
	if len(fieldErrs) > 0 {
		msgs := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
		}
		return inputs, fmt.Errorf("writing metafields to %s: %s", itemID, strings.Join(msgs, "; "))
	}

	return inputs, nil
}

// BulkApply applies the field specs to every item sequentially. Successful
// and Failed partition Total exactly; one item's failure never blocks the
// rest.
func (a *Applier) BulkApply(ctx context.Context, items []types.CatalogItem, specs []types.FieldSpec) types.ApplyReport {
	report := types.ApplyReport{Total: len(items)}

	for _, item := range items {
		if _, err := a.ApplyMetadata(ctx, item.ID, specs); err != nil {
			report.Failed++
			report.Errors = append(report.Errors, types.ItemError{
				ItemID:  item.ID,
				Message: err.Error(),
			})
			a.log.Error("metafield apply failed", "item_id", item.ID, "error", err)
			continue
		}
		report.Successful++
	}

	return report
}

// prepareField converts one spec to wire shape, resolving references as
// needed. ok=false means the field is skipped for this item. An object
// reference with neither id nor fields is plain-empty, not unresolved.
func (a *Applier) prepareField(ctx context.Context, itemID string, spec types.FieldSpec) (catalog.FieldInput, bool) {
	if spec.Value == nil || spec.Value.Empty() {
		return catalog.FieldInput{}, false
	}

	value, ok := a.encodeValue(ctx, itemID, spec)
	if !ok {
		return catalog.FieldInput{}, false
	}

	return catalog.FieldInput{
		Namespace: spec.Namespace,
		Key:       spec.Key,
		Type:      wireType(spec.ValueType),
		Value:     value,
	}, true
}

func (a *Applier) encodeValue(ctx context.Context, itemID string, spec types.FieldSpec) (string, bool) {
	switch v := spec.Value.(type) {
	case types.ScalarValue:
		return string(v), true

	case types.FileRefValue:
		return a.checkGID(itemID, spec, string(v), catalog.GIDPrefix)

	case types.ObjectRefValue:
		return a.encodeObjectRef(ctx, itemID, spec, v)

	case types.RefListValue:
		gids := make([]string, 0, len(v))
		for _, elem := range v {
			if elem == nil || elem.Empty() {
				continue
			}
			var gid string
			var ok bool
			switch e := elem.(type) {
			case types.ObjectRefValue:
				gid, ok = a.encodeObjectRef(ctx, itemID, spec, e)
			case types.FileRefValue:
				gid, ok = a.checkGID(itemID, spec, string(e), catalog.GIDPrefix)
			default:
				a.log.Warn("unsupported list element skipped",
					"item_id", itemID, "field", spec.FullKey())
			}
			if ok {
				gids = append(gids, gid)
			}
		}
		if len(gids) == 0 {
			return "", false
		}
		encoded, err := json.Marshal(gids)
		if err != nil {
			return "", false
		}
		return string(encoded), true

	default:
		a.log.Warn("unknown metafield value shape skipped",
			"item_id", itemID, "field", spec.FullKey())
		return "", false
	}
}

// encodeObjectRef passes resolved identifiers through and resolves field
// maps; a resolution failure drops the field, not the item.
func (a *Applier) encodeObjectRef(ctx context.Context, itemID string, spec types.FieldSpec, ref types.ObjectRefValue) (string, bool) {
	if len(ref.Fields) > 0 {
		gid, err := a.resolver.ResolveReference(ctx, ref)
		if err != nil {
			a.log.Error("structured object resolution failed, field skipped",
				"item_id", itemID, "field", spec.FullKey(), "error", err)
			return "", false
		}
		return gid, true
	}
	return a.checkGID(itemID, spec, ref.ID, catalog.MetaobjectGIDPrefix)
}

// checkGID enforces the external identifier shape; mismatches skip the field
// with a logged warning.
func (a *Applier) checkGID(itemID string, spec types.FieldSpec, gid, prefix string) (string, bool) {
	if !strings.HasPrefix(gid, prefix) {
		a.log.Warn("malformed external reference skipped",
			"item_id", itemID, "field", spec.FullKey(), "ref", gid)
		return "", false
	}
	return gid, true
}

// wireType maps a value type tag to the platform metafield type.
func wireType(vt types.FieldValueType) string {
	switch vt {
	case types.ValueScalar:
		return "single_line_text_field"
	case types.ValueObjectRef:
		return "metaobject_reference"
	case types.ValueObjectRefList:
		return "list.metaobject_reference"
	case types.ValueFileRef:
		return "file_reference"
	case types.ValueFileRefList:
		return "list.file_reference"
	default:
		return "single_line_text_field"
	}
}
