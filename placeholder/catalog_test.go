package placeholder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenderpack-backend/placeholder"
)

func TestCatalogFromBodies(t *testing.T) {
	schema := []placeholder.FieldDescriptor{
		{Key: "Firm.Type", Kind: placeholder.KindChoice, Choices: []string{"Company", "Partnership"}},
		{Key: "contractor.address", Kind: placeholder.KindText, MaxLength: 200},
	}
	catalog := placeholder.CatalogFromBodies(schema,
		`{{field:contractor.address}} {{field:firm.type}} {{field:bad-key}}`,
		`{{field:table:itemslist}} {{field:contractor.address}}`,
	)

	keys := make([]placeholder.FieldKey, 0)
	for _, d := range catalog.Descriptors() {
		keys = append(keys, d.Key)
	}
	assert.Equal(t, []placeholder.FieldKey{"contractor.address", "firm.type", "table:itemslist"}, keys)

	d, ok := catalog.Lookup("firm.type")
	require.True(t, ok)
	assert.Equal(t, placeholder.KindChoice, d.Kind)

	d, ok = catalog.Lookup("contractor.address")
	require.True(t, ok)
	assert.Equal(t, 200, d.Limit())

	d, ok = catalog.Lookup("table:itemslist")
	require.True(t, ok)
	assert.Equal(t, placeholder.KindTable, d.Kind)
	assert.Equal(t, placeholder.DefaultTableColumns, d.Columns)
}

func TestCatalogDefaults(t *testing.T) {
	catalog := placeholder.NewCatalog(
		placeholder.FieldDescriptor{Key: "a", Kind: "bogus"},
		placeholder.FieldDescriptor{Key: "  "},
	)

	assert.Equal(t, 1, catalog.Len())
	d, ok := catalog.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, placeholder.KindText, d.Kind)
	assert.Equal(t, placeholder.DefaultMaxLength, d.Limit())

	var empty *placeholder.Catalog
	assert.False(t, empty.Has("a"))
	assert.Zero(t, empty.Len())
}

func TestTableColumnsFixedPerKey(t *testing.T) {
	cols := placeholder.TableColumns("worksexecuted")
	require.NotEmpty(t, cols)
	assert.Equal(t, "nameofwork", cols[1].Key)
	assert.Equal(t, placeholder.DefaultTableColumns, placeholder.TableColumns("table:somethingelse"))
}
