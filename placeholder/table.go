package placeholder

import (
	"html"
	"strconv"
	"strings"
)

// TableColumn is one column of a table row schema.
type TableColumn struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
}

// TableRow is one row of table data keyed by column key.
type TableRow map[string]string

// TableRows is the ordered row set for one table key.
type TableRows []TableRow

const serialColumn = "sno"

// DefaultTableColumns is the line-item row schema used for any table key
// without a dedicated schema.
var DefaultTableColumns = []TableColumn{
	{Key: serialColumn, Label: "S.No."},
	{Key: "description", Label: "Description"},
	{Key: "quantity", Label: "Quantity"},
	{Key: "unit", Label: "Unit"},
	{Key: "rate", Label: "Rate"},
	{Key: "amount", Label: "Amount"},
}

var tableSchemas = map[FieldKey][]TableColumn{
	"table:itemslist": DefaultTableColumns,
	"table:worksexecuted": {
		{Key: serialColumn, Label: "S.No."},
		{Key: "nameofwork", Label: "Name of Work"},
		{Key: "client", Label: "Client / Department"},
		{Key: "value", Label: "Contract Value"},
		{Key: "completiondate", Label: "Date of Completion"},
	},
	"table:machinery": {
		{Key: serialColumn, Label: "S.No."},
		{Key: "equipment", Label: "Equipment"},
		{Key: "quantity", Label: "Quantity"},
		{Key: "ownership", Label: "Owned / Leased"},
		{Key: "condition", Label: "Condition"},
	},
	"table:personnel": {
		{Key: serialColumn, Label: "S.No."},
		{Key: "name", Label: "Name"},
		{Key: "designation", Label: "Designation"},
		{Key: "qualification", Label: "Qualification"},
		{Key: "experience", Label: "Experience (years)"},
	},
}

// TableColumns returns the fixed column contract for a table key.
func TableColumns(key FieldKey) []TableColumn {
	if cols, ok := tableSchemas[TableKey(string(key))]; ok {
		return cols
	}
	return DefaultTableColumns
}

// renderRows expands rows into <tr> fragments in column order. Cell values
// are escaped and a blank serial cell gets the 1-based row number.
func renderRows(key FieldKey, rows TableRows) string {
	cols := TableColumns(key)
	var b strings.Builder
	for i, row := range rows {
		b.WriteString("<tr>")
		for _, col := range cols {
			v := row[col.Key]
			if col.Key == serialColumn && strings.TrimSpace(v) == "" {
				v = strconv.Itoa(i + 1)
			}
			b.WriteString("<td>")
			b.WriteString(html.EscapeString(v))
			b.WriteString("</td>")
		}
		b.WriteString("</tr>")
	}
	return b.String()
}

// normalizeRow lower-cases column keys so callers may supply camelCase.
func normalizeRow(row TableRow) TableRow {
	out := make(TableRow, len(row))
	for k, v := range row {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out
}
