// internal/types/fields_test.go
package types

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestFieldSpec_UnmarshalScalar(t *testing.T) {
	data := `{"namespace":"custom","key":"material","valueType":"scalar","value":"cotton"}`

	var spec FieldSpec
	if err := json.Unmarshal([]byte(data), &spec); err != nil {
		t.Fatalf("Unmarshal() error = %v, want nil", err)
	}

	v, ok := spec.Value.(ScalarValue)
	if !ok {
		t.Fatalf("Value type = %T, want ScalarValue", spec.Value)
	}
	if v != "cotton" {
		t.Errorf("Value = %q, want cotton", v)
	}
	if spec.FullKey() != "custom.material" {
		t.Errorf("FullKey() = %q, want custom.material", spec.FullKey())
	}
}

func TestFieldSpec_UnmarshalObjectRefGID(t *testing.T) {
	data := `{"namespace":"custom","key":"size_chart","valueType":"metaobject_reference","value":"gid://shopify/Metaobject/42"}`

	var spec FieldSpec
	if err := json.Unmarshal([]byte(data), &spec); err != nil {
		t.Fatalf("Unmarshal() error = %v, want nil", err)
	}

	ref, ok := spec.Value.(ObjectRefValue)
	if !ok {
		t.Fatalf("Value type = %T, want ObjectRefValue", spec.Value)
	}
	if ref.ID != "gid://shopify/Metaobject/42" {
		t.Errorf("ID = %q, want gid://shopify/Metaobject/42", ref.ID)
	}
	if ref.NeedsResolution() {
		t.Errorf("NeedsResolution() = true, want false (bare gid is already resolved)")
	}
}

func TestFieldSpec_UnmarshalObjectRefNested(t *testing.T) {
	data := `{
		"namespace": "custom",
		"key": "size_chart",
		"valueType": "metaobject_reference",
		"value": {
			"definitionId": "gid://shopify/MetaobjectDefinition/7",
			"fields": {
				"title": "Size guide",
				"table": {
					"definitionId": "gid://shopify/MetaobjectDefinition/8",
					"fields": {"rows": "5"}
				},
				"images": ["gid://shopify/MediaImage/1", "gid://shopify/MediaImage/2"]
			}
		}
	}`

	var spec FieldSpec
	if err := json.Unmarshal([]byte(data), &spec); err != nil {
		t.Fatalf("Unmarshal() error = %v, want nil", err)
	}

	ref, ok := spec.Value.(ObjectRefValue)
	if !ok {
		t.Fatalf("Value type = %T, want ObjectRefValue", spec.Value)
	}
	if !ref.NeedsResolution() {
		t.Errorf("NeedsResolution() = false, want true (nested fields present)")
	}
	if ref.DefinitionID != "gid://shopify/MetaobjectDefinition/7" {
		t.Errorf("DefinitionID = %q, want gid://shopify/MetaobjectDefinition/7", ref.DefinitionID)
	}

	if _, ok := ref.Fields["title"].(ScalarValue); !ok {
		t.Errorf("fields.title type = %T, want ScalarValue", ref.Fields["title"])
	}

	nested, ok := ref.Fields["table"].(ObjectRefValue)
	if !ok {
		t.Fatalf("fields.table type = %T, want ObjectRefValue", ref.Fields["table"])
	}
	if nested.DefinitionID != "gid://shopify/MetaobjectDefinition/8" {
		t.Errorf("nested DefinitionID = %q, want gid://shopify/MetaobjectDefinition/8", nested.DefinitionID)
	}

	list, ok := ref.Fields["images"].(RefListValue)
	if !ok {
		t.Fatalf("fields.images type = %T, want RefListValue", ref.Fields["images"])
	}
	if len(list) != 2 {
		t.Errorf("len(images) = %d, want 2", len(list))
	}
}

func TestFieldSpec_UnmarshalFileRefList(t *testing.T) {
	data := `{"namespace":"custom","key":"manuals","valueType":"list.file_reference","value":["gid://shopify/GenericFile/1","gid://shopify/GenericFile/2"]}`

	var spec FieldSpec
	if err := json.Unmarshal([]byte(data), &spec); err != nil {
		t.Fatalf("Unmarshal() error = %v, want nil", err)
	}

	list, ok := spec.Value.(RefListValue)
	if !ok {
		t.Fatalf("Value type = %T, want RefListValue", spec.Value)
	}
	if len(list) != 2 {
		t.Fatalf("len(list) = %d, want 2", len(list))
	}
	if _, ok := list[0].(FileRefValue); !ok {
		t.Errorf("element type = %T, want FileRefValue", list[0])
	}
}

func TestFieldSpec_UnmarshalUnknownType(t *testing.T) {
	data := `{"namespace":"custom","key":"x","valueType":"rich_text","value":"hello"}`

	var spec FieldSpec
	err := json.Unmarshal([]byte(data), &spec)
	if !errors.Is(err, ErrUnknownValueType) {
		t.Errorf("Unmarshal() error = %v, want ErrUnknownValueType", err)
	}
}

func TestFieldSpec_UnmarshalNullValue(t *testing.T) {
	data := `{"namespace":"custom","key":"x","valueType":"scalar","value":null}`

	var spec FieldSpec
	if err := json.Unmarshal([]byte(data), &spec); err != nil {
		t.Fatalf("Unmarshal() error = %v, want nil", err)
	}
	if spec.Value != nil {
		t.Errorf("Value = %v, want nil (null decodes to absent)", spec.Value)
	}
}

func TestObjectRefValue_MarshalResolvedForm(t *testing.T) {
	tests := []struct {
		name string
		ref  ObjectRefValue
		want string
	}{
		{"bare_gid", ObjectRefValue{ID: "gid://shopify/Metaobject/42"}, `"gid://shopify/Metaobject/42"`},
		{"with_definition", ObjectRefValue{ID: "gid://shopify/Metaobject/42", DefinitionID: "gid://shopify/MetaobjectDefinition/7"}, `{"id":"gid://shopify/Metaobject/42","definitionId":"gid://shopify/MetaobjectDefinition/7"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.ref)
			if err != nil {
				t.Fatalf("Marshal() error = %v, want nil", err)
			}
			if string(got) != tt.want {
				t.Errorf("Marshal() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFieldValue_Empty(t *testing.T) {
	tests := []struct {
		name  string
		value FieldValue
		want  bool
	}{
		{"empty_scalar", ScalarValue(""), true},
		{"scalar", ScalarValue("x"), false},
		{"empty_file_ref", FileRefValue(""), true},
		{"empty_object_ref", ObjectRefValue{}, true},
		{"object_ref_with_id", ObjectRefValue{ID: "gid"}, false},
		{"object_ref_with_fields", ObjectRefValue{Fields: map[string]FieldValue{"k": ScalarValue("v")}}, false},
		{"empty_list", RefListValue{}, true},
		{"list", RefListValue{FileRefValue("gid")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.value.Empty(); got != tt.want {
				t.Errorf("Empty() = %v, want %v", got, tt.want)
			}
		})
	}
}
