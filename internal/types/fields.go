// internal/types/fields.go
package types

import (
	"encoding/json"
	"fmt"
)

/*
 * Metafield field-assignment specs.
 *
 * A FieldSpec assigns one namespaced metafield to every matching catalog
 * item. The value shape depends on ValueType, modeled as a tagged union:
 *
 *   - scalar                     -> ScalarValue (plain string)
 *   - metaobject_reference       -> ObjectRefValue (resolved gid, or a nested
 *                                   field map still to be resolved)
 *   - list.metaobject_reference  -> RefListValue of ObjectRefValue
 *   - file_reference             -> FileRefValue (external file gid)
 *   - list.file_reference        -> RefListValue of FileRefValue
 *
 * Specs are stored serialized inside the configurations row, not as a
 * separate relation. Custom (un)marshaling keys the value decode on the
 * valueType tag; unknown tags fail with ErrUnknownValueType.
 */

// FieldValueType tags the shape of a FieldSpec value.
type FieldValueType string

const (
	ValueScalar         FieldValueType = "scalar"
	ValueObjectRef      FieldValueType = "metaobject_reference"
	ValueObjectRefList  FieldValueType = "list.metaobject_reference"
	ValueFileRef        FieldValueType = "file_reference"
	ValueFileRefList    FieldValueType = "list.file_reference"
)

// FieldValue is one variant of the metafield value union.
type FieldValue interface {
	// Empty reports whether the value carries nothing to write.
	Empty() bool

	fieldValue()
}

// ScalarValue is a plain string metafield value.
type ScalarValue string

func (v ScalarValue) Empty() bool { return v == "" }
func (ScalarValue) fieldValue()   {}

// FileRefValue is an external file identifier (gid string).
type FileRefValue string

func (v FileRefValue) Empty() bool { return v == "" }
func (FileRefValue) fieldValue()   {}

// ObjectRefValue references a structured object. Either ID holds an already
// resolved external identifier, or Fields holds the nested field map still to
// be created/updated in the external store. Both set means update-in-place
// using ID. Nested fields can themselves be object references, arbitrarily
// deep.
type ObjectRefValue struct {
	ID           string                `json:"id,omitempty"`
	DefinitionID string                `json:"definitionId,omitempty"`
	Fields       map[string]FieldValue `json:"fields,omitempty"`
}

func (v ObjectRefValue) Empty() bool { return v.ID == "" && len(v.Fields) == 0 }
func (ObjectRefValue) fieldValue()   {}

// NeedsResolution reports whether the reference must be resolved to an
// external identifier before it can be written to a catalog item.
func (v ObjectRefValue) NeedsResolution() bool {
	return len(v.Fields) > 0 || v.ID == ""
}

// RefListValue is a list of object or file references.
type RefListValue []FieldValue

func (v RefListValue) Empty() bool { return len(v) == 0 }
func (RefListValue) fieldValue()   {}

// FieldSpec is one metafield assignment within a configuration.
type FieldSpec struct {
	Namespace   string         `json:"namespace"`
	Key         string         `json:"key"`
	ValueType   FieldValueType `json:"valueType"`
	Value       FieldValue     `json:"value"`
	DisplayType string         `json:"displayType,omitempty"`
}

// FullKey returns the namespace-qualified metafield key.
func (s FieldSpec) FullKey() string {
	return s.Namespace + "." + s.Key
}

// fieldSpecJSON mirrors FieldSpec with the value held raw for tag-directed decoding.
type fieldSpecJSON struct {
	Namespace   string          `json:"namespace"`
	Key         string          `json:"key"`
	ValueType   FieldValueType  `json:"valueType"`
	Value       json.RawMessage `json:"value"`
	DisplayType string          `json:"displayType,omitempty"`
}

// UnmarshalJSON decodes the value according to the valueType tag.
func (s *FieldSpec) UnmarshalJSON(data []byte) error {
	var raw fieldSpecJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	value, err := decodeFieldValue(raw.ValueType, raw.Value)
	if err != nil {
		return fmt.Errorf("field %s.%s: %w", raw.Namespace, raw.Key, err)
	}

	s.Namespace = raw.Namespace
	s.Key = raw.Key
	s.ValueType = raw.ValueType
	s.Value = value
	s.DisplayType = raw.DisplayType
	return nil
}

// decodeFieldValue decodes one union variant keyed on the valueType tag.
// Absent/null values decode to nil (the apply pipeline skips them).
func decodeFieldValue(vt FieldValueType, raw json.RawMessage) (FieldValue, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	switch vt {
	case ValueScalar:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return ScalarValue(s), nil

	case ValueFileRef:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return FileRefValue(s), nil

	case ValueObjectRef:
		return decodeObjectRef(raw)

	case ValueObjectRefList:
		return decodeRefList(raw, ValueObjectRef)

	case ValueFileRefList:
		return decodeRefList(raw, ValueFileRef)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownValueType, vt)
	}
}

// decodeObjectRef accepts either a bare gid string (already resolved) or an
// object carrying id/definitionId and a nested field map.
func decodeObjectRef(raw json.RawMessage) (FieldValue, error) {
	var gid string
	if err := json.Unmarshal(raw, &gid); err == nil {
		return ObjectRefValue{ID: gid}, nil
	}

	var obj struct {
		ID           string                     `json:"id"`
		DefinitionID string                     `json:"definitionId"`
		Fields       map[string]json.RawMessage `json:"fields"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}

	ref := ObjectRefValue{ID: obj.ID, DefinitionID: obj.DefinitionID}
	if len(obj.Fields) > 0 {
		ref.Fields = make(map[string]FieldValue, len(obj.Fields))
		for k, v := range obj.Fields {
			nested, err := decodeNestedValue(v)
			if err != nil {
				return nil, fmt.Errorf("nested field %q: %w", k, err)
			}
			ref.Fields[k] = nested
		}
	}
	return ref, nil
}

// decodeNestedValue decodes a field inside an object reference by shape:
// strings are scalars, objects are nested references, arrays are lists.
// The nested definition carries the authoritative type at resolution time.
func decodeNestedValue(raw json.RawMessage) (FieldValue, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	switch raw[0] {
	case '{':
		return decodeObjectRef(raw)
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			return nil, err
		}
		list := make(RefListValue, 0, len(elems))
		for _, e := range elems {
			nested, err := decodeNestedValue(e)
			if err != nil {
				return nil, err
			}
			list = append(list, nested)
		}
		return list, nil
	default:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return ScalarValue(s), nil
	}
}

// decodeRefList decodes a JSON array whose elements use the given element type.
func decodeRefList(raw json.RawMessage, elem FieldValueType) (FieldValue, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, err
	}
	list := make(RefListValue, 0, len(elems))
	for _, e := range elems {
		v, err := decodeFieldValue(elem, e)
		if err != nil {
			return nil, err
		}
		list = append(list, v)
	}
	return list, nil
}

// MarshalJSON emits the resolved-form value: bare gid strings for references
// that carry only an id, full objects otherwise.
func (v ObjectRefValue) MarshalJSON() ([]byte, error) {
	if v.ID != "" && len(v.Fields) == 0 && v.DefinitionID == "" {
		return json.Marshal(v.ID)
	}

	type alias ObjectRefValue
	return json.Marshal(alias(v))
}
