package llmpipeline

import (
	"strings"
	"testing"
)

func TestSchemaRegistry_BuiltIns(t *testing.T) {
	registry := GetSchemaRegistry()

	for _, name := range []string{SchemaDeck, SchemaDeckPatch} {
		if !registry.IsRegistered(name) {
			t.Errorf("expected built-in schema %q to be registered", name)
		}

		schema, err := registry.Create(name)
		if err != nil {
			t.Fatalf("failed to create %q: %v", name, err)
		}
		if schema.Name != name {
			t.Errorf("expected schema name %q, got %q", name, schema.Name)
		}
		if schema.Contract == "" {
			t.Errorf("schema %q has no contract text", name)
		}
		if schema.Example == "" {
			t.Errorf("schema %q has no worked example", name)
		}
	}
}

func TestDeckSchema_ContractNamesEveryShape(t *testing.T) {
	schema, err := NewDeckSchema()
	if err != nil {
		t.Fatalf("NewDeckSchema failed: %v", err)
	}

	for _, layout := range ValidLayouts() {
		if !strings.Contains(schema.Contract, `"`+layout.String()+`"`) {
			t.Errorf("contract does not mention layout %q", layout)
		}
	}
	for _, kind := range ValidBlockKinds() {
		if !strings.Contains(schema.Contract, `"kind": "`+kind.String()+`"`) {
			t.Errorf("contract does not mention block kind %q", kind)
		}
	}

	// The worked example must itself satisfy validation.
	if warnings := ValidateDeck(schema.Example); len(warnings) != 0 {
		t.Errorf("deck example fails its own validation: %v", warnings)
	}
}

func TestDeckPatchSchema_ExampleIsAValidPatch(t *testing.T) {
	schema, err := NewDeckPatchSchema()
	if err != nil {
		t.Fatalf("NewDeckPatchSchema failed: %v", err)
	}

	if !ContainsPatchTrue(schema.Example) {
		t.Error("patch example does not carry the patch marker")
	}
	if !IsPatchDocument(schema.Example) {
		t.Error("patch example does not parse as a patch document")
	}
	if warnings := ValidateDeck(schema.Example); len(warnings) != 0 {
		t.Errorf("patch example fails validation: %v", warnings)
	}
}

func TestSchemaRegistry_RegisterAndUnregister(t *testing.T) {
	registry := GetSchemaRegistry()

	def := SchemaDefinition{
		Name:        "outline",
		Description: "Talk outline document",
		Factory: func() (*Schema, error) {
			return NewCustomSchema("outline", "Respond with {\"sections\": [...]}", "")
		},
	}

	if err := registry.Register(def); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	defer func() { _ = registry.Unregister("outline") }()

	if err := registry.Register(def); err == nil {
		t.Error("expected duplicate registration to fail")
	}

	schema, err := registry.Create("outline")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if schema.Example != "" {
		t.Errorf("expected empty example, got %q", schema.Example)
	}

	if err := registry.Unregister("outline"); err != nil {
		t.Fatalf("Unregister failed: %v", err)
	}
	if err := registry.Unregister("outline"); err == nil {
		t.Error("expected second Unregister to fail")
	}
}

func TestSchemaRegistry_RejectsBadDefinitions(t *testing.T) {
	registry := GetSchemaRegistry()

	if err := registry.Register(SchemaDefinition{Name: "", Factory: NewDeckSchema}); err == nil {
		t.Error("expected error for empty name")
	}
	if err := registry.Register(SchemaDefinition{Name: "no-factory"}); err == nil {
		t.Error("expected error for missing factory")
	}
	if _, err := registry.Get("never-registered"); err == nil {
		t.Error("expected error for unknown schema")
	}
}

func TestNewCustomSchema_Validation(t *testing.T) {
	if _, err := NewCustomSchema("", "contract", ""); err == nil {
		t.Error("expected error for empty name")
	}
	if _, err := NewCustomSchema("name", "", ""); err == nil {
		t.Error("expected error for empty contract")
	}

	schema, err := NewCustomSchema("outline", "Respond with {\"sections\": [...]}", "{\"sections\": []}")
	if err != nil {
		t.Fatalf("NewCustomSchema failed: %v", err)
	}
	if schema.Name != "outline" {
		t.Errorf("unexpected name %q", schema.Name)
	}
}
