package placeholder_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"tenderpack-backend/placeholder"
)

func TestRenderScenarioA(t *testing.T) {
	registry := placeholder.ComposeRegistry(placeholder.Sources{
		Profile: map[string]string{"contractor.firmName": "ABC Construction"},
	})

	res := placeholder.Render("Dear {{field:contractor.firmName}}, amount {{field:bill.amountText}}", registry)

	assert.Equal(t, "Dear ABC Construction, amount ", res.HTML)
	assert.Equal(t, []string{"bill.amountText"}, res.MissingFields)
}

func TestRenderEscapesValues(t *testing.T) {
	registry := placeholder.ComposeRegistry(placeholder.Sources{
		Overrides: map[string]string{"work.name": `Road <b>&</b> "Drain"`},
	})

	res := placeholder.Render(`<p>{{field:work.name}}</p>`, registry)

	assert.Equal(t, `<p>Road &lt;b&gt;&amp;&lt;/b&gt; &#34;Drain&#34;</p>`, res.HTML)
	assert.Empty(t, res.MissingFields)
}

func TestRenderMissingFieldsOncePerKeyInOrder(t *testing.T) {
	body := `{{field:b}} {{field:a}} {{field:B}} {{field:table:rows}} {{field:a}} {{field:table:Rows}} {{field:c}}`
	registry := placeholder.ComposeRegistry(placeholder.Sources{
		Profile: map[string]string{"c": "see"},
	})

	res := placeholder.Render(body, registry)

	want := []string{"b", "a", "table:rows"}
	if diff := cmp.Diff(want, res.MissingFields); diff != "" {
		t.Fatalf("missing fields mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "      see", res.HTML)
}

func TestRenderTableRows(t *testing.T) {
	registry := placeholder.ComposeRegistry(placeholder.Sources{
		Tables: map[string]placeholder.TableRows{
			"itemsList": {
				{"description": "Excavation", "Quantity": "120", "unit": "cum", "rate": "85", "amount": "10200"},
				{"sno": "2a", "description": "PCC <1:4:8>", "quantity": "10", "unit": "cum", "rate": "4100", "amount": "41000"},
			},
			"personnel": {
				{"name": "R. Kumar", "designation": "Site Engineer", "qualification": "B.E.", "experience": "6"},
			},
		},
	})

	res := placeholder.Render(`<tbody>{{field:table:itemslist}}</tbody><tbody>{{field:table:personnel}}</tbody>`, registry)

	want := `<tbody>` +
		`<tr><td>1</td><td>Excavation</td><td>120</td><td>cum</td><td>85</td><td>10200</td></tr>` +
		`<tr><td>2a</td><td>PCC &lt;1:4:8&gt;</td><td>10</td><td>cum</td><td>4100</td><td>41000</td></tr>` +
		`</tbody><tbody>` +
		`<tr><td>1</td><td>R. Kumar</td><td>Site Engineer</td><td>B.E.</td><td>6</td></tr>` +
		`</tbody>`
	if diff := cmp.Diff(want, res.HTML); diff != "" {
		t.Fatalf("html mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, res.MissingFields)
}

func TestRenderAbsentTableIsEmptySection(t *testing.T) {
	res := placeholder.Render(`<table>{{field:table:machinery}}</table>`, placeholder.Registry{})

	assert.Equal(t, `<table></table>`, res.HTML)
	assert.Equal(t, []string{"table:machinery"}, res.MissingFields)
}

func TestRenderScalarTokenDoesNotReadTable(t *testing.T) {
	registry := placeholder.ComposeRegistry(placeholder.Sources{
		Profile: map[string]string{"table:itemslist": "should be ignored"},
		Tables:  map[string]placeholder.TableRows{"itemslist": {{"description": "x"}}},
	})

	res := placeholder.Render(`[{{field:itemslist}}]`, registry)

	assert.Equal(t, `[]`, res.HTML)
	assert.Equal(t, []string{"itemslist"}, res.MissingFields)
}

func TestRenderLeavesInvalidTokens(t *testing.T) {
	res := placeholder.Render(`{{field:a-b}} and {{#each}}`, placeholder.Registry{})

	assert.Equal(t, `{{field:a-b}} and {{#each}}`, res.HTML)
	assert.Empty(t, res.MissingFields)
}

func TestRenderDeterministic(t *testing.T) {
	registry := placeholder.ComposeRegistry(placeholder.Sources{
		Profile:   map[string]string{"a": "1", "b": "2", "c": "3"},
		Overrides: map[string]string{"B": "two"},
		Toggles:   map[string]string{"firm.type": "Company"},
		Tables: map[string]placeholder.TableRows{
			"t": {{"description": "x", "amount": "1"}, {"description": "y"}},
		},
	})
	body := `{{field:a}}{{field:b}}{{field:c}}{{field:d}}{{field:firm.type}}{{field:table:t}}{{field:e}}{{field:d}}`

	first := placeholder.Render(body, registry)
	for i := 0; i < 50; i++ {
		again := placeholder.Render(body, registry)
		assert.Equal(t, first.HTML, again.HTML)
		assert.Equal(t, first.MissingFields, again.MissingFields)
	}
	assert.Equal(t, []string{"d", "e"}, first.MissingFields)
}

func TestRenderEmptyTableIsNotMissing(t *testing.T) {
	registry := placeholder.ComposeRegistry(placeholder.Sources{
		Tables: map[string]placeholder.TableRows{"machinery": {}},
	})

	res := placeholder.Render(`<table>{{field:table:machinery}}</table>`, registry)

	assert.Equal(t, `<table></table>`, res.HTML)
	assert.Empty(t, res.MissingFields)
}
