package fieldtypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var allTypes = []string{
	Text, LongText, Number, Percentage, Currency, Checkbox, URL, Email, Phone,
	Date, DateTime, Select, MultiSelect, Lookup, File, Image,
}

func TestRegistry_ClosedEnumeration(t *testing.T) {
	reg := GetRegistry()
	assert.ElementsMatch(t, allTypes, reg.Names())

	for _, name := range allTypes {
		def, ok := reg.Get(name)
		require.True(t, ok, name)
		assert.NotEmpty(t, def.Label, name)
		assert.NotEmpty(t, def.Storage, name)
		_, hasCoercer := coercers[name]
		assert.True(t, hasCoercer, "missing coercer for %s", name)
	}

	assert.False(t, IsValidType("picklist"))
	assert.False(t, IsValidType(""))
}

func TestRequiresOptions(t *testing.T) {
	for _, name := range allTypes {
		want := name == Select || name == MultiSelect
		assert.Equal(t, want, RequiresOptions(name), name)
	}
}

func TestGetAllFieldTypes_Sorted(t *testing.T) {
	all := GetAllFieldTypes()
	require.Len(t, all, len(allTypes))
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Name, all[i].Name)
	}
	assert.True(t, IsSummable(Currency))
	assert.False(t, IsSummable(Text))
}
