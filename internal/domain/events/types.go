package events

// EventType defines the type of event in the system
type EventType string

const (
	// Record Events
	RecordCreated EventType = "record.created"
	RecordUpdated EventType = "record.updated"
	RecordDeleted EventType = "record.deleted"

	// Schema Events
	ModuleCreated   EventType = "schema.module_created"
	ModuleDeleted   EventType = "schema.module_deleted"
	FieldCreated    EventType = "schema.field_created"
	FieldDeleted    EventType = "schema.field_deleted"
	FieldsReordered EventType = "schema.fields_reordered"

	// Migration Events
	PlatformsMigrated EventType = "migration.platforms_migrated"
)

// String returns the string representation of the event type
func (e EventType) String() string {
	return string(e)
}
