package placeholder

import (
	"html"
	"strings"
)

// RenderResult is the output of Render.
type RenderResult struct {
	HTML          string   `json:"html"`
	MissingFields []string `json:"missingFields"`
}

// Render substitutes every valid token in body from registry.
//
// Scalar tokens become the HTML-escaped value, or an empty string when the
// key is unresolved. Table tokens expand to row fragments in the key's
// column order, or to nothing when no rows were supplied. A table supplied
// with zero rows is resolved, not missing. Unresolved keys are reported
// once each, in first-occurrence order, spelled as in their first
// occurrence. Invalid tokens are copied through unchanged.
//
// Render performs no I/O and no locale formatting; the same inputs always
// produce the same output.
func Render(body string, registry Registry) RenderResult {
	res := RenderResult{MissingFields: []string{}}
	missing := make(map[FieldKey]bool)
	markMissing := func(tok Token) {
		if missing[tok.Key] {
			return
		}
		missing[tok.Key] = true
		res.MissingFields = append(res.MissingFields, tok.Spelled)
	}

	var b strings.Builder
	b.Grow(len(body))
	last := 0
	for _, tok := range Tokenize(body) {
		if !tok.Valid || tok.Offset < last {
			continue
		}
		b.WriteString(body[last:tok.Offset])
		last = tok.Offset + len(tok.Raw)

		switch tok.Kind {
		case TokenTable:
			rows, ok := registry.Table(string(tok.Key))
			if !ok {
				markMissing(tok)
				continue
			}
			b.WriteString(renderRows(tok.Key, rows))
		default:
			entry, ok := registry.Lookup(string(tok.Key))
			if !ok || entry.Kind == KindTable {
				markMissing(tok)
				continue
			}
			b.WriteString(html.EscapeString(entry.Value))
		}
	}
	b.WriteString(body[last:])
	res.HTML = b.String()
	return res
}
