package placeholder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenderpack-backend/placeholder"
)

func TestComposeRegistryPrecedence(t *testing.T) {
	registry := placeholder.ComposeRegistry(placeholder.Sources{
		Extra:     map[string]string{"contractor.firmName": "from extra", "pack.title": "Road work"},
		Profile:   map[string]string{"contractor.firmName": "from profile", "contractor.pan": "ABCDE1234F"},
		Memory:    map[string]string{"Contractor.FirmName": "from memory", "bank.name": "SBI"},
		Overrides: map[string]string{"contractor.firmname ": "from override"},
	})

	entry, ok := registry.Lookup("contractor.firmName")
	require.True(t, ok)
	assert.Equal(t, "from override", entry.Value)
	assert.Equal(t, placeholder.SourceOverride, entry.Source)

	v, _ := registry.Value("contractor.pan")
	assert.Equal(t, "ABCDE1234F", v)
	v, _ = registry.Value("bank.name")
	assert.Equal(t, "SBI", v)
	v, _ = registry.Value("pack.title")
	assert.Equal(t, "Road work", v)
}

func TestComposeRegistryTogglesWin(t *testing.T) {
	registry := placeholder.ComposeRegistry(placeholder.Sources{
		Overrides: map[string]string{"firm.type": "free text"},
		Toggles:   map[string]string{"firm.type": "Partnership"},
	})

	entry, ok := registry.Lookup("firm.type")
	require.True(t, ok)
	assert.Equal(t, "Partnership", entry.Value)
	assert.Equal(t, placeholder.SourceToggle, entry.Source)
	assert.Equal(t, placeholder.KindChoice, entry.Kind)
}

func TestComposeRegistryBlankValuesDoNotOverwrite(t *testing.T) {
	registry := placeholder.ComposeRegistry(placeholder.Sources{
		Profile: map[string]string{"contractor.phone": "98450 00000", "contractor.email": ""},
		Memory:  map[string]string{"contractor.phone": "   "},
	})

	v, ok := registry.Value("contractor.phone")
	require.True(t, ok)
	assert.Equal(t, "98450 00000", v)
	assert.False(t, registry.Has("contractor.email"))
}

func TestComposeRegistryTablesOnlyFromTables(t *testing.T) {
	registry := placeholder.ComposeRegistry(placeholder.Sources{
		Profile: map[string]string{"table:itemslist": "nope"},
		Memory:  map[string]string{"field:table:itemslist": "nope"},
	})
	_, ok := registry.Table("itemslist")
	assert.False(t, ok)
	assert.Zero(t, registry.Len())

	registry = placeholder.ComposeRegistry(placeholder.Sources{
		Tables: map[string]placeholder.TableRows{"table:ItemsList": {{"Description": "x"}}},
	})
	rows, ok := registry.Table("itemslist")
	require.True(t, ok)
	assert.Equal(t, "x", rows[0]["description"])
	assert.Equal(t, []placeholder.FieldKey{"table:itemslist"}, registry.Keys())
}

func TestComposeNilSources(t *testing.T) {
	registry := placeholder.ComposeRegistry(placeholder.Sources{})
	assert.Zero(t, registry.Len())
	_, ok := registry.Lookup("anything")
	assert.False(t, ok)
}

func TestComposeRegistryTableSpellingsResolveInKeyOrder(t *testing.T) {
	for i := 0; i < 20; i++ {
		registry := placeholder.ComposeRegistry(placeholder.Sources{
			Tables: map[string]placeholder.TableRows{
				"itemsList":  {{"description": "upper"}},
				"itemslist":  {{"description": "lower"}},
				" ItemsList": {{"description": "spaced"}},
			},
		})
		rows, ok := registry.Table("itemslist")
		require.True(t, ok)
		assert.Equal(t, "lower", rows[0]["description"])
	}
}
