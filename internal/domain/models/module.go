package models

import (
	"time"
)

// Module is a user-defined entity type. System modules (e.g. the migrated
// "Platforms" module) can be edited but never deleted.
type Module struct {
	ID           string       `json:"id"`
	OwnerID      string       `json:"ownerId"`
	Name         string       `json:"name"`
	SingularName string       `json:"singularName"`
	PluralName   string       `json:"pluralName"`
	Icon         *string      `json:"icon,omitempty"`
	Description  *string      `json:"description,omitempty"`
	IsSystem     bool         `json:"isSystem"`
	StatsPolicy  *StatsPolicy `json:"statsPolicy,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// ModuleInput is the payload of module creation
type ModuleInput struct {
	Name         string       `json:"name"`
	SingularName string       `json:"singularName"`
	PluralName   string       `json:"pluralName"`
	Icon         *string      `json:"icon,omitempty"`
	Description  *string      `json:"description,omitempty"`
	StatsPolicy  *StatsPolicy `json:"statsPolicy,omitempty"`
}

// ModulePatch is a partial module update. Nil members are left untouched;
// an empty Icon or Description clears it.
type ModulePatch struct {
	Name         *string      `json:"name,omitempty"`
	SingularName *string      `json:"singularName,omitempty"`
	PluralName   *string      `json:"pluralName,omitempty"`
	Icon         *string      `json:"icon,omitempty"`
	Description  *string      `json:"description,omitempty"`
	StatsPolicy  *StatsPolicy `json:"statsPolicy,omitempty"`
}

// IsEmpty reports whether the patch changes nothing
func (p ModulePatch) IsEmpty() bool {
	return p.Name == nil && p.SingularName == nil && p.PluralName == nil &&
		p.Icon == nil && p.Description == nil && p.StatsPolicy == nil
}

// Default stats policy, matching records shaped like the legacy Platforms table
const (
	DefaultActiveWhen       = `status == "Active"`
	DefaultCancelledWhen    = `status == "Cancelled"`
	DefaultMonthlyAmountKey = "monthlyAmount"
	DefaultYearlyAmountKey  = "yearlyAmount"
)

// StatsPolicy configures computeStats for one module. Predicates are expr-lang
// boolean expressions evaluated against a record's data.
type StatsPolicy struct {
	ActiveWhen       string `json:"activeWhen,omitempty"`
	CancelledWhen    string `json:"cancelledWhen,omitempty"`
	MonthlyAmountKey string `json:"monthlyAmountKey,omitempty"`
	YearlyAmountKey  string `json:"yearlyAmountKey,omitempty"`
}

// IsZero reports whether no member is set
func (p *StatsPolicy) IsZero() bool {
	return p == nil || *p == StatsPolicy{}
}

// Resolve returns the policy with blank members replaced by the defaults
func (p *StatsPolicy) Resolve() StatsPolicy {
	out := StatsPolicy{
		ActiveWhen:       DefaultActiveWhen,
		CancelledWhen:    DefaultCancelledWhen,
		MonthlyAmountKey: DefaultMonthlyAmountKey,
		YearlyAmountKey:  DefaultYearlyAmountKey,
	}
	if p == nil {
		return out
	}
	if p.ActiveWhen != "" {
		out.ActiveWhen = p.ActiveWhen
	}
	if p.CancelledWhen != "" {
		out.CancelledWhen = p.CancelledWhen
	}
	if p.MonthlyAmountKey != "" {
		out.MonthlyAmountKey = p.MonthlyAmountKey
	}
	if p.YearlyAmountKey != "" {
		out.YearlyAmountKey = p.YearlyAmountKey
	}
	return out
}
