package constants

// Table names. Every table is created by bootstrap.InitializeSchema.
const (
	// Module system
	TableModule        = "modules"
	TableModuleField   = "module_fields"
	TableModuleSection = "module_sections"
	TableModuleRecord  = "module_records"

	// Legacy platform entity and its per-user custom field overlay
	TablePlatform         = "platforms"
	TableCustomField      = "custom_fields"
	TableCustomFieldValue = "custom_field_values"
)

// ModuleTables lists the module-system tables in dependency order
var ModuleTables = []string{TableModule, TableModuleSection, TableModuleField, TableModuleRecord}

// LegacyTables lists the legacy tables kept for backward compatibility
var LegacyTables = []string{TablePlatform, TableCustomField, TableCustomFieldValue}
