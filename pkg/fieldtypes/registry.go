package fieldtypes

import (
	"embed"
	"encoding/json"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

//go:embed fieldTypes.json
var fieldTypesFS embed.FS

// Field type names. The set is closed: records and field definitions may only
// use these.
const (
	Text        = "text"
	LongText    = "longtext"
	Number      = "number"
	Percentage  = "percentage"
	Currency    = "currency"
	Checkbox    = "checkbox"
	URL         = "url"
	Email       = "email"
	Phone       = "phone"
	Date        = "date"
	DateTime    = "datetime"
	Select      = "select"
	MultiSelect = "multiselect"
	Lookup      = "lookup"
	File        = "file"
	Image       = "image"
)

// Storage kinds describe the canonical Go value a field type coerces to
const (
	StorageString   = "string"  // string
	StorageNumber   = "number"  // float64
	StorageInteger  = "integer" // int64
	StorageBoolean  = "boolean" // bool
	StorageDate     = "date"    // "2006-01-02"
	StorageDateTime = "datetime"
	StorageArray    = "array" // []string
)

// FieldTypeDefinition represents a field type configuration
type FieldTypeDefinition struct {
	Label           string   `json:"label"`
	Icon            string   `json:"icon"`
	Description     string   `json:"description"`
	Storage         string   `json:"storage"`
	Constraints     []string `json:"constraints"`
	RequiresOptions bool     `json:"requiresOptions,omitempty"`
	IsSearchable    bool     `json:"isSearchable,omitempty"`
	IsGroupable     bool     `json:"isGroupable,omitempty"`
	IsSummable      bool     `json:"isSummable,omitempty"`
}

// Registry holds field type definitions
type Registry struct {
	types map[string]FieldTypeDefinition
	mu    sync.RWMutex
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// GetRegistry returns the singleton field types registry
func GetRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = &Registry{
			types: make(map[string]FieldTypeDefinition),
		}
		if err := defaultRegistry.loadFromEmbedded(); err != nil {
			logrus.WithError(err).Error("failed to load embedded field types")
		}
	})
	return defaultRegistry
}

// loadFromEmbedded loads field types from the embedded JSON file
func (r *Registry) loadFromEmbedded() error {
	data, err := fieldTypesFS.ReadFile("fieldTypes.json")
	if err != nil {
		return err
	}

	var types map[string]FieldTypeDefinition
	if err := json.Unmarshal(data, &types); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = types
	return nil
}

// Get returns a field type definition by name
func (r *Registry) Get(typeName string) (FieldTypeDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.types[typeName]
	return def, ok
}

// IsValidType reports whether typeName belongs to the enumeration
func (r *Registry) IsValidType(typeName string) bool {
	_, ok := r.Get(typeName)
	return ok
}

// RequiresOptions reports whether fields of this type must carry an options list
func (r *Registry) RequiresOptions(typeName string) bool {
	def, ok := r.Get(typeName)
	return ok && def.RequiresOptions
}

// Storage returns the storage kind of a type, or "" for unknown types
func (r *Registry) Storage(typeName string) string {
	def, ok := r.Get(typeName)
	if !ok {
		return ""
	}
	return def.Storage
}

// AllowsConstraint reports whether a constraint kind (min, maxLength, ...) applies to the type
func (r *Registry) AllowsConstraint(typeName, constraint string) bool {
	def, ok := r.Get(typeName)
	if !ok {
		return false
	}
	for _, c := range def.Constraints {
		if c == constraint {
			return true
		}
	}
	return false
}

// IsSummable returns whether a field type can be aggregated
func (r *Registry) IsSummable(typeName string) bool {
	def, ok := r.Get(typeName)
	return ok && def.IsSummable
}

// Names returns the sorted list of type names
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Package-level convenience functions using the default registry

// IsValidType reports whether typeName belongs to the enumeration
func IsValidType(typeName string) bool {
	return GetRegistry().IsValidType(typeName)
}

// RequiresOptions reports whether fields of this type must carry an options list
func RequiresOptions(typeName string) bool {
	return GetRegistry().RequiresOptions(typeName)
}

// IsSummable returns whether a field type can be aggregated
func IsSummable(typeName string) bool {
	return GetRegistry().IsSummable(typeName)
}

// FieldTypeWithName includes the name in the field type definition
type FieldTypeWithName struct {
	Name string `json:"name"`
	FieldTypeDefinition
}

// GetAllFieldTypes returns all field types sorted by name
func GetAllFieldTypes() []FieldTypeWithName {
	registry := GetRegistry()
	names := registry.Names()
	result := make([]FieldTypeWithName, 0, len(names))
	for _, name := range names {
		def, _ := registry.Get(name)
		result = append(result, FieldTypeWithName{Name: name, FieldTypeDefinition: def})
	}
	return result
}
