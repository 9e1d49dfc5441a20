package llmpipeline

import (
	"fmt"
	"sync"
)

// Schema is a named structured-output contract: the textual shape contract
// and worked example the orchestrator hands to the model when asking for a
// structured response.
type Schema struct {
	Name     string // Registry key
	Contract string // Textual description of the required JSON shape
	Example  string // Worked example of a conforming response
}

// Validate checks that the schema is usable
func (s *Schema) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("schema name is required")
	}
	if s.Contract == "" {
		return fmt.Errorf("schema %s has no contract text", s.Name)
	}
	return nil
}

// SchemaDefinition describes how to create a schema
type SchemaDefinition struct {
	Name        string                  // Unique schema name
	Description string                  // Human-readable description
	Factory     func() (*Schema, error) // Factory function to create the schema
}

// SchemaRegistry manages runtime registration of structured-output schemas
// This allows library users to register their own document shapes beyond the built-in ones
type SchemaRegistry struct {
	schemas map[string]SchemaDefinition
	mu      sync.RWMutex
}

var (
	globalSchemaRegistry     *SchemaRegistry
	globalSchemaRegistryOnce sync.Once
)

// GetSchemaRegistry returns the global schema registry (singleton)
func GetSchemaRegistry() *SchemaRegistry {
	globalSchemaRegistryOnce.Do(func() {
		globalSchemaRegistry = &SchemaRegistry{
			schemas: make(map[string]SchemaDefinition),
		}
		// Register built-in schemas
		globalSchemaRegistry.registerBuiltInSchemas()
	})
	return globalSchemaRegistry
}

// registerBuiltInSchemas registers the built-in document shapes
func (r *SchemaRegistry) registerBuiltInSchemas() {
	_ = r.Register(SchemaDefinition{
		Name:        SchemaDeck,
		Description: "Complete slide deck document",
		Factory:     NewDeckSchema,
	})

	_ = r.Register(SchemaDefinition{
		Name:        SchemaDeckPatch,
		Description: "Partial deck update carrying only modified slides",
		Factory:     NewDeckPatchSchema,
	})
}

// Register adds a schema definition to the registry
func (r *SchemaRegistry) Register(def SchemaDefinition) error {
	if def.Name == "" {
		return fmt.Errorf("schema name is required")
	}

	if def.Factory == nil {
		return fmt.Errorf("factory function is required for schema %s", def.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.schemas[def.Name]; exists {
		return fmt.Errorf("schema %s is already registered", def.Name)
	}

	r.schemas[def.Name] = def
	return nil
}

// Unregister removes a schema definition from the registry
// This is useful for testing or replacing schema definitions
func (r *SchemaRegistry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.schemas[name]; !exists {
		return fmt.Errorf("schema %s is not registered", name)
	}

	delete(r.schemas, name)
	return nil
}

// Get retrieves a schema definition by name
func (r *SchemaRegistry) Get(name string) (SchemaDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, exists := r.schemas[name]
	if !exists {
		return SchemaDefinition{}, fmt.Errorf("unknown schema: %s", name)
	}

	return def, nil
}

// IsRegistered checks if a schema is registered
func (r *SchemaRegistry) IsRegistered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.schemas[name]
	return exists
}

// List returns all registered schema names
func (r *SchemaRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	return names
}

// Create creates a schema instance using the registered factory
func (r *SchemaRegistry) Create(name string) (*Schema, error) {
	def, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	return def.Factory()
}

// RegisterSchema is a convenience function that registers a schema with the global registry
func RegisterSchema(def SchemaDefinition) error {
	return GetSchemaRegistry().Register(def)
}

// CreateSchema is a convenience function that creates a schema using the global registry
func CreateSchema(name string) (*Schema, error) {
	return GetSchemaRegistry().Create(name)
}
