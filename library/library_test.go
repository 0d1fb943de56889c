package library_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenderpack-backend/library"
	"tenderpack-backend/models"
	"tenderpack-backend/placeholder"
)

func TestDefaultLibrary(t *testing.T) {
	lib, err := library.Default()
	require.NoError(t, err)
	assert.Equal(t, "1", lib.Version)
	require.NotEmpty(t, lib.Annexures)

	cat := lib.Catalog()
	d, ok := cat.Lookup("{{field:Bid.EMDMode}}")
	require.True(t, ok)
	assert.Equal(t, placeholder.KindChoice, d.Kind)
	assert.True(t, placeholder.ValidateChoiceValue("bid.emdmode", "online", cat))

	table, ok := cat.Lookup("table:worksexecuted")
	require.True(t, ok)
	assert.Equal(t, placeholder.KindTable, table.Kind)
	assert.Equal(t, placeholder.TableColumns("table:worksexecuted"), table.Columns)

	// every library body only uses keys the library schema declares
	for _, a := range lib.Annexures {
		res := placeholder.Validate(a.Body, placeholder.Registry{}, cat)
		assert.Empty(t, res.InvalidTokens, a.ID)
		assert.Empty(t, res.UnknownKeys, a.ID)
	}
}

func TestParseMigratesLegacyBodies(t *testing.T) {
	lib, err := library.Parse([]byte(`
annexures:
  - id: a1
    body: "<p>{{firmName}} / {{table:items}}</p>"
`))
	require.NoError(t, err)
	assert.Equal(t, "1", lib.Version)
	assert.Equal(t, "a1", lib.Annexures[0].Name)
	assert.Equal(t, "<p>{{field:contractor.firmname}} / {{field:table:items}}</p>", lib.Annexures[0].Body)
}

func TestParseRejectsBadLibraries(t *testing.T) {
	tests := map[string]string{
		"missing id":    "annexures:\n  - name: X\n    body: x\n",
		"duplicate id":  "annexures:\n  - id: a\n    body: x\n  - id: a\n    body: y\n",
		"invalid token": "annexures:\n  - id: a\n    body: \"{{field:}}\"\n",
		"bad yaml":      "annexures: [",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := library.Parse([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	def, err := library.LoadFile("")
	require.NoError(t, err)
	assert.NotEmpty(t, def.Annexures)

	path := filepath.Join(t.TempDir(), "lib.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: \"7\"\nannexures:\n  - id: only\n    body: hi\n"), 0o600))
	lib, err := library.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "7", lib.Version)
	assert.Len(t, lib.Annexures, 1)

	_, err = library.LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestTemplatesAndMatch(t *testing.T) {
	lib, err := library.Default()
	require.NoError(t, err)

	tpls := lib.Templates("yoj-1")
	require.Len(t, tpls, len(lib.Annexures))
	for _, tpl := range tpls {
		assert.Equal(t, models.KindAnnexure, tpl.Kind)
		assert.Equal(t, "yoj-1", tpl.YojID)
	}

	a, ok := lib.Match("Annexure-III: List of Machinery & Equipment")
	require.True(t, ok)
	assert.Equal(t, "annex-machinery", a.ID)

	a, ok = lib.Match("PRICE BID")
	require.True(t, ok)
	assert.Equal(t, "annex-financial-bid", a.ID)

	_, ok = lib.Match("Site photographs")
	assert.False(t, ok)
	_, ok = lib.Match("   ")
	assert.False(t, ok)
}

func TestMatchKey(t *testing.T) {
	assert.Equal(t, "annexure iii list of machinery", library.MatchKey("  Annexure-III:  List of   Machinery!"))
}
