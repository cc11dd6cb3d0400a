package fieldtypes

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/errors"
)

func ptrFloat(f float64) *float64 { return &f }
func ptrInt(i int) *int           { return &i }

func TestValidateValue_Coercion(t *testing.T) {
	statusOptions := Rules{Options: []string{"Active", "Cancelled", "Trial"}}

	tests := []struct {
		name     string
		typ      string
		value    interface{}
		rules    Rules
		expected interface{}
	}{
		{"text kept", Text, "Slack", Rules{}, "Slack"},
		{"empty text kept", Text, "", Rules{}, ""},
		{"longtext", LongText, "line one\nline two", Rules{}, "line one\nline two"},
		{"number from float", Number, 12.5, Rules{}, 12.5},
		{"number from int", Number, 7, Rules{}, 7.0},
		{"number from string", Number, "3.25", Rules{}, 3.25},
		{"number from json.Number", Number, json.Number("42"), Rules{}, 42.0},
		{"percentage", Percentage, "45", Rules{}, 45.0},
		{"currency from int", Currency, 1999, Rules{}, int64(1999)},
		{"currency from whole float", Currency, 1999.0, Rules{}, int64(1999)},
		{"currency from string", Currency, "2500", Rules{}, int64(2500)},
		{"currency from whole decimal string", Currency, "2500.00", Rules{}, int64(2500)},
		{"currency from exponent string", Currency, "2.5e3", Rules{}, int64(2500)},
		{"currency at int64 max", Currency, "9223372036854775807", Rules{}, int64(math.MaxInt64)},
		{"checkbox bool", Checkbox, true, Rules{}, true},
		{"checkbox legacy true", Checkbox, "true", Rules{}, true},
		{"checkbox legacy false", Checkbox, "false", Rules{}, false},
		{"url", URL, "https://slack.com", Rules{}, "https://slack.com"},
		{"email trimmed", Email, " billing@slack.com ", Rules{}, "billing@slack.com"},
		{"phone", Phone, "+1 555 010 2030", Rules{}, "+1 555 010 2030"},
		{"date", Date, "2025-03-01", Rules{}, "2025-03-01"},
		{"date from timestamp", Date, "2025-03-01T10:00:00Z", Rules{}, "2025-03-01"},
		{"date from time", Date, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), Rules{}, "2025-03-01"},
		{"datetime normalised to UTC", DateTime, "2025-03-01T10:00:00+02:00", Rules{}, "2025-03-01T08:00:00Z"},
		{"select", Select, "Active", statusOptions, "Active"},
		{"multiselect slice", MultiSelect, []string{"Active", "Trial"}, statusOptions, []string{"Active", "Trial"}},
		{"multiselect any slice", MultiSelect, []interface{}{"Trial"}, statusOptions, []string{"Trial"}},
		{"multiselect json string", MultiSelect, `["Cancelled"]`, statusOptions, []string{"Cancelled"}},
		{"multiselect empty is absent", MultiSelect, []string{}, statusOptions, nil},
		{"lookup", Lookup, "rec-123", Rules{}, "rec-123"},
		{"file", File, "files/contract.pdf", Rules{}, "files/contract.pdf"},
		{"image", Image, "img-1", Rules{}, "img-1"},
		{"nil is absent", Number, nil, Rules{}, nil},
		{"empty string absent for number", Number, "", Rules{}, nil},
		{"empty string absent for select", Select, "", statusOptions, nil},
		{"empty string absent for checkbox", Checkbox, "", Rules{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateValue(tt.typ, tt.value, tt.rules)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestValidateValue_Rejections(t *testing.T) {
	options := Rules{Options: []string{"Monthly", "Yearly"}}

	tests := []struct {
		name  string
		typ   string
		value interface{}
		rules Rules
	}{
		{"unknown type", "picklist", "x", Rules{}},
		{"text from number", Text, 12, Rules{}},
		{"number from word", Number, "twelve", Rules{}},
		{"number from bool", Number, true, Rules{}},
		{"fractional currency", Currency, 19.99, Rules{}},
		{"fractional currency string", Currency, "19.99", Rules{}},
		{"currency exponent overflow", Currency, "1e20", Rules{}},
		{"currency digits overflow", Currency, "99999999999999999999", Rules{}},
		{"currency negative overflow", Currency, "-1e19", Rules{}},
		{"currency json.Number overflow", Currency, json.Number("1e20"), Rules{}},
		{"currency float overflow", Currency, 1e20, Rules{}},
		{"checkbox from word", Checkbox, "maybe", Rules{}},
		{"checkbox from number", Checkbox, 1, Rules{}},
		{"url without scheme", URL, "slack.com", Rules{}},
		{"bad email", Email, "billing@", Rules{}},
		{"bad phone", Phone, "12", Rules{}},
		{"bad date", Date, "03/01/2025", Rules{}},
		{"bad datetime", DateTime, 20250301, Rules{}},
		{"select not in options", Select, "Weekly", options},
		{"multiselect not subset", MultiSelect, []string{"Monthly", "Weekly"}, options},
		{"multiselect duplicate", MultiSelect, []string{"Monthly", "Monthly"}, options},
		{"multiselect bad json", MultiSelect, "Monthly", options},
		{"blank lookup", Lookup, "   ", Rules{}},
		{"numeric lookup", Lookup, 5, Rules{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateValue(tt.typ, tt.value, tt.rules)
			require.Error(t, err)
			assert.Nil(t, got)
			assert.True(t, apperrors.IsValidation(err))
		})
	}
}

func TestValidateValue_Constraints(t *testing.T) {
	text := Rules{Constraints: &Constraints{MinLength: ptrInt(2), MaxLength: ptrInt(5), Pattern: `^[a-z]+$`}}
	_, err := ValidateValue(Text, "abc", text)
	assert.NoError(t, err)
	_, err = ValidateValue(Text, "a", text)
	assert.Error(t, err)
	_, err = ValidateValue(Text, "abcdef", text)
	assert.Error(t, err)
	_, err = ValidateValue(Text, "ABC", text)
	assert.Error(t, err)

	custom := Rules{Constraints: &Constraints{Pattern: `^SKU-\d+$`, Message: "must look like SKU-123"}}
	_, err = ValidateValue(Text, "nope", custom)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must look like SKU-123")

	seats := Rules{Constraints: &Constraints{Min: ptrFloat(1), Max: ptrFloat(500)}}
	_, err = ValidateValue(Number, 10, seats)
	assert.NoError(t, err)
	_, err = ValidateValue(Number, 0, seats)
	assert.Error(t, err)
	_, err = ValidateValue(Currency, 501, seats)
	assert.Error(t, err)
}

func TestValidateConstraints(t *testing.T) {
	assert.NoError(t, ValidateConstraints(Text, nil))
	assert.NoError(t, ValidateConstraints(Number, &Constraints{Min: ptrFloat(0), Max: ptrFloat(10)}))
	assert.NoError(t, ValidateConstraints(Text, &Constraints{MaxLength: ptrInt(10), Pattern: `^\w+$`}))

	err := ValidateConstraints(Checkbox, &Constraints{Min: ptrFloat(0)})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	err = ValidateConstraints(Number, &Constraints{Min: ptrFloat(10), Max: ptrFloat(1), MaxLength: ptrInt(3)})
	var verrs *apperrors.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs.Errors, 2)

	assert.Error(t, ValidateConstraints(Text, &Constraints{MinLength: ptrInt(5), MaxLength: ptrInt(1)}))
	assert.Error(t, ValidateConstraints(Text, &Constraints{Pattern: `([`}))
}

func TestValidateOptions(t *testing.T) {
	for _, typ := range allTypes {
		t.Run(typ, func(t *testing.T) {
			if RequiresOptions(typ) {
				assert.Error(t, ValidateOptions(typ, nil), "options required")
				assert.Error(t, ValidateOptions(typ, []string{"A", "A"}), "duplicates")
				assert.Error(t, ValidateOptions(typ, []string{"A", " "}), "blank")
				assert.NoError(t, ValidateOptions(typ, []string{"A", "B"}))
			} else {
				assert.NoError(t, ValidateOptions(typ, nil))
				assert.Error(t, ValidateOptions(typ, []string{"A"}), "options not allowed")
			}
		})
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", FormatValue(Text, nil))
	assert.Equal(t, "true", FormatValue(Checkbox, true))
	assert.Equal(t, "1999", FormatValue(Currency, int64(1999)))
	assert.Equal(t, "12.5", FormatValue(Number, 12.5))
	assert.Equal(t, `["A","B"]`, FormatValue(MultiSelect, []string{"A", "B"}))
	assert.Equal(t, "2025-03-01", FormatValue(Date, "2025-03-01"))
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(nil))
	assert.True(t, IsEmpty("  "))
	assert.True(t, IsEmpty([]string{}))
	assert.False(t, IsEmpty(false))
	assert.False(t, IsEmpty(int64(0)))
	assert.False(t, IsEmpty("x"))
}
