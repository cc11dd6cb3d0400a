package constants

// Column names shared across tables (snake_case, as stored)
const (
	FieldID        = "id"
	FieldOwnerID   = "owner_id"
	FieldUserID    = "user_id"
	FieldName      = "name"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
	FieldCreatedBy = "created_by"
	FieldUpdatedBy = "updated_by"

	// modules
	FieldSingularName = "singular_name"
	FieldPluralName   = "plural_name"
	FieldIcon         = "icon"
	FieldDescription  = "description"
	FieldIsSystem     = "is_system"
	FieldStatsPolicy  = "stats_policy"

	// module_fields
	FieldModuleID     = "module_id"
	FieldFieldKey     = "field_key"
	FieldLabel        = "label"
	FieldFieldType    = "field_type"
	FieldPlaceholder  = "placeholder"
	FieldHelpText     = "help_text"
	FieldIsRequired   = "is_required"
	FieldIsUnique     = "is_unique"
	FieldDefaultValue = "default_value"
	FieldOptions      = "options"
	FieldValidation   = "validation"
	FieldDisplayOrder = "display_order"
	FieldSectionID    = "section_id"
	FieldColumnSpan   = "column_span"

	// module_sections
	FieldTitle                = "title"
	FieldIsCollapsible        = "is_collapsible"
	FieldIsCollapsedByDefault = "is_collapsed_by_default"

	// module_records
	FieldData      = "data"
	FieldSourceKey = "source_key"

	// custom_fields / custom_field_values
	FieldRequired   = "required"
	FieldPlatformID = "platform_id"
	FieldValue      = "value"

	// API response keys
	FieldMessage = "message"
)

// Platform (legacy) columns
const (
	PlatformVendor       = "vendor"
	PlatformCategory     = "category"
	PlatformWebsite      = "website"
	PlatformStatus       = "status"
	PlatformBillingCycle = "billing_cycle"
	PlatformMonthly      = "monthly_amount"
	PlatformYearly       = "yearly_amount"
	PlatformRenewalDate  = "renewal_date"
	PlatformStartDate    = "start_date"
	PlatformAccountOwner = "account_owner"
	PlatformDepartment   = "department"
	PlatformSeats        = "seats"
	PlatformLoginURL     = "login_url"
	PlatformSupportEmail = "support_email"
	PlatformAutoRenew    = "auto_renew"
	PlatformIsCritical   = "is_critical"
	PlatformNotes        = "notes"
)
