package fieldtypes

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/errors"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/utils"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/validator"
)

const (
	dateLayout = "2006-01-02"
	// Largest integer a float64 holds exactly
	maxExactInt = 1 << 53
)

// Rules carries the per-field inputs of value validation
type Rules struct {
	Options     []string
	Constraints *Constraints
}

// coercer converts a non-nil raw value into the canonical value of one type
type coercer func(value interface{}, rules Rules) (interface{}, error)

var coercers = map[string]coercer{
	Text:        coerceText,
	LongText:    coerceText,
	Number:      coerceNumber,
	Percentage:  coerceNumber,
	Currency:    coerceCurrency,
	Checkbox:    coerceCheckbox,
	URL:         formatted(validator.URL),
	Email:       formatted(validator.Email),
	Phone:       formatted(validator.Phone),
	Date:        coerceDate,
	DateTime:    coerceDateTime,
	Select:      coerceSelect,
	MultiSelect: coerceMultiSelect,
	Lookup:      coerceIdentifier,
	File:        coerceIdentifier,
	Image:       coerceIdentifier,
}

// ValidateValue validates a raw value against a field type and returns its
// canonical form:
//
//	text, longtext, url, email, phone, select, lookup, file, image -> string
//	number, percentage -> float64
//	currency -> int64 (minor units)
//	checkbox -> bool
//	date -> "2006-01-02"; datetime -> RFC 3339 in UTC
//	multiselect -> []string
//
// nil means absent and is returned as nil. An empty string is absent for every
// non-text type. Failures are *errors.ValidationError with an empty Field.
func ValidateValue(typeName string, value interface{}, rules Rules) (interface{}, error) {
	fn, ok := coercers[typeName]
	if !ok || !IsValidType(typeName) {
		return nil, apperrors.NewValidationError("", fmt.Sprintf("unknown field type '%s'", typeName))
	}
	if value == nil {
		return nil, nil
	}
	if s, isString := value.(string); isString && s == "" && typeName != Text && typeName != LongText {
		return nil, nil
	}
	return fn(value, rules)
}

// IsEmpty reports whether a canonical value counts as missing for a required field
func IsEmpty(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []string:
		return len(v) == 0
	}
	return false
}

// FormatValue renders a canonical value as the string form used by the legacy
// custom field overlay
func FormatValue(typeName string, value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []string:
		encoded, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(encoded)
	}
	return fmt.Sprintf("%v", value)
}

func invalid(format string, args ...interface{}) error {
	return apperrors.NewValidationError("", fmt.Sprintf(format, args...))
}

func checkStringRules(s string, c *Constraints) error {
	if c.IsZero() {
		return nil
	}
	if err := validator.Validate(validator.Length, s, c.lengthConfig()); err != nil {
		return invalid("%v", err)
	}
	if c.Pattern != "" && s != "" {
		cfg := map[string]interface{}{"pattern": c.Pattern, "message": c.Message}
		if err := validator.Validate(validator.Regex, s, cfg); err != nil {
			return invalid("%v", err)
		}
	}
	return nil
}

func checkRange(n interface{}, c *Constraints) error {
	if c.IsZero() {
		return nil
	}
	if err := validator.Validate(validator.Range, n, c.rangeConfig()); err != nil {
		return invalid("%v", err)
	}
	return nil
}

func coerceText(value interface{}, rules Rules) (interface{}, error) {
	s, ok := value.(string)
	if !ok {
		return nil, invalid("expected text, got %T", value)
	}
	if err := checkStringRules(s, rules.Constraints); err != nil {
		return nil, err
	}
	return s, nil
}

func coerceNumber(value interface{}, rules Rules) (interface{}, error) {
	f, ok := utils.ToFloat(value)
	if !ok {
		return nil, invalid("expected a number, got %v", value)
	}
	if err := checkRange(f, rules.Constraints); err != nil {
		return nil, err
	}
	return f, nil
}

func coerceCurrency(value interface{}, rules Rules) (interface{}, error) {
	var amount int64
	switch v := value.(type) {
	case int:
		amount = int64(v)
	case int32:
		amount = int64(v)
	case int64:
		amount = v
	case string, json.Number:
		raw := strings.TrimSpace(fmt.Sprintf("%v", v))
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
			amount = parsed
			break
		}
		f, ok := utils.ToFloat(raw)
		if !ok {
			return nil, invalid("expected an amount in cents, got %q", raw)
		}
		cents, err := wholeCents(f, raw)
		if err != nil {
			return nil, err
		}
		amount = cents
	default:
		f, ok := utils.ToFloat(value)
		if !ok {
			return nil, invalid("expected an amount in cents, got %v", value)
		}
		cents, err := wholeCents(f, value)
		if err != nil {
			return nil, err
		}
		amount = cents
	}
	if err := checkRange(amount, rules.Constraints); err != nil {
		return nil, err
	}
	return amount, nil
}

// wholeCents converts a float amount to int64, rejecting fractions and values
// a float64 cannot hold exactly
func wholeCents(f float64, raw interface{}) (int64, error) {
	if f != math.Trunc(f) {
		return 0, invalid("currency amounts are whole cents, got %v", raw)
	}
	if math.Abs(f) > maxExactInt {
		return 0, invalid("currency amount %v is out of range", raw)
	}
	return int64(f), nil
}

func coerceCheckbox(value interface{}, _ Rules) (interface{}, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return nil, invalid("expected true or false, got %q", v)
		}
		return b, nil
	}
	return nil, invalid("expected true or false, got %v", value)
}

// formatted builds a coercer for string types checked by a named validator
func formatted(rule string) coercer {
	return func(value interface{}, rules Rules) (interface{}, error) {
		s, ok := value.(string)
		if !ok {
			return nil, invalid("expected text, got %T", value)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil
		}
		if err := validator.Validate(rule, s, nil); err != nil {
			return nil, invalid("%v", err)
		}
		if err := checkStringRules(s, rules.Constraints); err != nil {
			return nil, err
		}
		return s, nil
	}
}

func parseTime(value interface{}) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		s := strings.TrimSpace(v)
		if t, err := time.Parse(dateLayout, s); err == nil {
			return t, nil
		}
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t, nil
		}
		return time.Time{}, invalid("expected an ISO-8601 date, got %q", s)
	}
	return time.Time{}, invalid("expected an ISO-8601 date, got %v", value)
}

func coerceDate(value interface{}, _ Rules) (interface{}, error) {
	t, err := parseTime(value)
	if err != nil {
		return nil, err
	}
	return t.Format(dateLayout), nil
}

func coerceDateTime(value interface{}, _ Rules) (interface{}, error) {
	t, err := parseTime(value)
	if err != nil {
		return nil, err
	}
	return t.UTC().Format(time.RFC3339), nil
}

func contains(options []string, v string) bool {
	for _, opt := range options {
		if opt == v {
			return true
		}
	}
	return false
}

func coerceSelect(value interface{}, rules Rules) (interface{}, error) {
	s, ok := value.(string)
	if !ok {
		return nil, invalid("expected one of the options, got %v", value)
	}
	if !contains(rules.Options, s) {
		return nil, invalid("'%s' is not one of the options", s)
	}
	return s, nil
}

func coerceMultiSelect(value interface{}, rules Rules) (interface{}, error) {
	var items []string
	switch v := value.(type) {
	case []string:
		items = v
	case []interface{}:
		items = make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, invalid("expected a list of options, got element %v", item)
			}
			items = append(items, s)
		}
	case string:
		if err := json.Unmarshal([]byte(v), &items); err != nil {
			return nil, invalid("expected a list of options, got %q", v)
		}
	default:
		return nil, invalid("expected a list of options, got %v", value)
	}
	if len(items) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if !contains(rules.Options, item) {
			return nil, invalid("'%s' is not one of the options", item)
		}
		if contains(out, item) {
			return nil, invalid("'%s' is selected more than once", item)
		}
		out = append(out, item)
	}
	return out, nil
}

func coerceIdentifier(value interface{}, _ Rules) (interface{}, error) {
	s, ok := value.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return nil, invalid("expected a non-empty identifier, got %v", value)
	}
	return strings.TrimSpace(s), nil
}
