package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/domain/models"
	apperrors "github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/errors"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/fieldtypes"
)

func testFields() []*models.ModuleField {
	return []*models.ModuleField{
		{FieldKey: "name", FieldType: fieldtypes.Text, IsRequired: true},
		{FieldKey: "code", FieldType: fieldtypes.Text, IsUnique: true},
		{FieldKey: "amount", FieldType: fieldtypes.Currency, DefaultValue: int64(500)},
		{FieldKey: "active", FieldType: fieldtypes.Checkbox},
	}
}

func TestPrepareData(t *testing.T) {
	data, orphans, err := prepareData(testFields(), models.RecordData{
		"name":   "Slack",
		"active": "true",
		"extra":  42.0,
	}, true)
	require.NoError(t, err)
	assert.Equal(t, models.RecordData{"name": "Slack", "amount": int64(500), "active": true, "extra": 42.0}, data)
	assert.Equal(t, []string{"extra"}, orphans)

	data, _, err = prepareData(testFields(), models.RecordData{"name": "Slack"}, false)
	require.NoError(t, err)
	assert.NotContains(t, data, "amount")

	_, _, err = prepareData(testFields(), models.RecordData{"name": "", "amount": "lots", "active": 3}, true)
	var verrs *apperrors.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs.Errors, 3)
}

func TestNormalizeData(t *testing.T) {
	data := normalizeData(testFields(), models.RecordData{"amount": 1200.0, "active": false, "extra": 1.0, "name": 9.0})
	assert.Equal(t, int64(1200), data["amount"])
	assert.Equal(t, 1.0, data["extra"])
	// values that no longer validate stay as stored
	assert.Equal(t, 9.0, data["name"])
}

func TestUniqueViolations(t *testing.T) {
	others := []*models.ModuleRecord{
		{ID: "r1", Data: models.RecordData{"code": "A-1"}},
		{ID: "r2", Data: models.RecordData{"code": "B-2"}},
	}
	fields := testFields()

	assert.NoError(t, uniqueViolations(fields, models.RecordData{"code": "C-3"}, others, ""))
	assert.NoError(t, uniqueViolations(fields, models.RecordData{"code": "A-1"}, others, "r1"))
	assert.NoError(t, uniqueViolations(fields, models.RecordData{}, others, ""))

	err := uniqueViolations(fields, models.RecordData{"code": "B-2"}, others, "r1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "B-2")
}
