package models

import "time"

// Platform is a row of the legacy fixed platforms table. Amounts are cents.
type Platform struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	Name          string    `json:"name"`
	Vendor        *string   `json:"vendor,omitempty"`
	Category      *string   `json:"category,omitempty"`
	Website       *string   `json:"website,omitempty"`
	Description   *string   `json:"description,omitempty"`
	Status        *string   `json:"status,omitempty"`
	BillingCycle  *string   `json:"billingCycle,omitempty"`
	MonthlyAmount int64     `json:"monthlyAmount"`
	YearlyAmount  int64     `json:"yearlyAmount"`
	RenewalDate   *string   `json:"renewalDate,omitempty"`
	StartDate     *string   `json:"startDate,omitempty"`
	AccountOwner  *string   `json:"accountOwner,omitempty"`
	Department    *string   `json:"department,omitempty"`
	Seats         *int64    `json:"seats,omitempty"`
	LoginURL      *string   `json:"loginUrl,omitempty"`
	SupportEmail  *string   `json:"supportEmail,omitempty"`
	AutoRenew     bool      `json:"autoRenew"`
	IsCritical    bool      `json:"isCritical"`
	Notes         *string   `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// CustomField is a per-user extra field on the legacy Platform entity.
// Required is 0 or 1 and Options is a JSON array string, as the legacy
// client expects.
type CustomField struct {
	ID           string  `json:"id"`
	UserID       string  `json:"userId"`
	FieldKey     string  `json:"fieldKey"`
	Label        string  `json:"label"`
	FieldType    string  `json:"fieldType"`
	Placeholder  *string `json:"placeholder,omitempty"`
	Required     int     `json:"required"`
	Options      *string `json:"options,omitempty"`
	DisplayOrder int     `json:"displayOrder"`
}

type CustomFieldInput struct {
	FieldKey     string   `json:"fieldKey"`
	Label        string   `json:"label"`
	FieldType    string   `json:"fieldType"`
	Placeholder  *string  `json:"placeholder,omitempty"`
	Required     bool     `json:"required"`
	Options      []string `json:"options,omitempty"`
	DisplayOrder *int     `json:"displayOrder,omitempty"`
}

// CustomFieldPatch updates presentation attributes; key and type are fixed
type CustomFieldPatch struct {
	Label        *string   `json:"label,omitempty"`
	Placeholder  *string   `json:"placeholder,omitempty"`
	Required     *bool     `json:"required,omitempty"`
	Options      *[]string `json:"options,omitempty"`
	DisplayOrder *int      `json:"displayOrder,omitempty"`
}

// CustomFieldValue holds one custom field value of one platform in string form
type CustomFieldValue struct {
	ID         string  `json:"id"`
	PlatformID string  `json:"platformId"`
	FieldKey   string  `json:"fieldKey"`
	Value      *string `json:"value"`
}
