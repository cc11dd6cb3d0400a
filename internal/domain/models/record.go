package models

import "time"

// RecordData maps field keys to canonical values
type RecordData map[string]interface{}

// ModuleRecord is one instance of a module's entity type
type ModuleRecord struct {
	ID        string     `json:"id"`
	ModuleID  string     `json:"moduleId"`
	OwnerID   string     `json:"ownerId"`
	Data      RecordData `json:"data"`
	SourceKey *string    `json:"sourceKey,omitempty"`
	CreatedBy string     `json:"createdBy"`
	UpdatedBy string     `json:"updatedBy"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// StatsResult is the aggregation returned by computeStats. Totals are sums of
// the stored amounts, so currency fields yield cents.
type StatsResult struct {
	TotalCount      int     `json:"totalCount"`
	ActiveCount     int     `json:"activeCount"`
	CancelledCount  int     `json:"cancelledCount"`
	MonthlyTotal    float64 `json:"monthlyTotal"`
	YearlyTotal     float64 `json:"yearlyTotal"`
	EstimatedAnnual float64 `json:"estimatedAnnual"`
}

// OrphanKey is a data key with no field definition in its module
type OrphanKey struct {
	Key         string `json:"key"`
	RecordCount int    `json:"recordCount"`
}

// OrphanKeyReport is the result of auditing a module's record data keys
type OrphanKeyReport struct {
	ModuleID     string      `json:"moduleId"`
	RecordsTotal int         `json:"recordsTotal"`
	Keys         []OrphanKey `json:"keys"`
}

// MigrationOptions tunes migratePlatforms
type MigrationOptions struct {
	IncludeCustomFields bool `json:"includeCustomFields"`
}

// MigrationResult summarises one migratePlatforms run
type MigrationResult struct {
	ModuleID           string `json:"moduleId"`
	ModuleCreated      bool   `json:"moduleCreated"`
	FieldsCreated      int    `json:"fieldsCreated"`
	CustomFieldsFolded int    `json:"customFieldsFolded"`
	RecordsCreated     int    `json:"recordsCreated"`
	RecordsSkipped     int    `json:"recordsSkipped"`
}
