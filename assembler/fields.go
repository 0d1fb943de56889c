package assembler

import (
	"html"
	"sort"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"tenderpack-backend/models"
	"tenderpack-backend/placeholder"
)

var (
	stripPolicyOnce sync.Once
	stripPolicy     *bluemonday.Policy
)

func stripSanitizer() *bluemonday.Policy {
	stripPolicyOnce.Do(func() {
		stripPolicy = bluemonday.StrictPolicy()
	})
	return stripPolicy
}

// maxStripPasses bounds how many entity layers stripText decodes.
const maxStripPasses = 8

// stripText removes markup and decodes entities, repeating until the text
// stops changing so entity-encoded tags cannot survive as markup.
func stripText(raw string) string {
	text := raw
	for i := 0; i < maxStripPasses; i++ {
		next := html.UnescapeString(stripSanitizer().Sanitize(text))
		if next == text {
			return text
		}
		text = next
	}
	return strings.NewReplacer("<", "", ">", "").Replace(text)
}

// cleanText strips markup, collapses whitespace and truncates to limit runes.
func cleanText(raw string, limit int) string {
	cleaned := strings.Join(strings.Fields(stripText(raw)), " ")
	if limit > 0 {
		runes := []rune(cleaned)
		if len(runes) > limit {
			cleaned = strings.TrimSpace(string(runes[:limit]))
		}
	}
	return cleaned
}

// SetChoiceField records a single-choice toggle. The key must be a Choice
// field of catalog and value one of its choices (case-insensitive); the
// catalog spelling is stored. Setting the current value again is a no-op.
func (a *Assembler) SetChoiceField(p models.Pack, key, value string, catalog *placeholder.Catalog) (models.Pack, bool, error) {
	k := placeholder.Normalize(key)
	d, ok := catalog.Lookup(string(k))
	if !ok || d.Kind != placeholder.KindChoice {
		return p, false, &placeholder.InvalidChoiceError{Key: k, Value: value}
	}
	choice, ok := placeholder.MatchChoice(string(k), value, catalog)
	if !ok {
		return p, false, &placeholder.InvalidChoiceError{Key: k, Value: value, Choices: d.Choices}
	}

	current, exists := p.FieldRegistry[string(k)]
	if exists && current == choice {
		return p, false, nil
	}

	out := p.Clone()
	if out.FieldRegistry == nil {
		out.FieldRegistry = make(map[string]string)
	}
	out.FieldRegistry[string(k)] = choice
	a.audit(&out, models.AuditEntry{Action: "field.choice", Key: string(k), From: current, To: choice})
	a.touch(&out)
	return out, true, nil
}

// SaveFieldOverrides stores free-text overrides for catalog Text fields.
// Values are stripped of markup, whitespace-collapsed and truncated to the
// field's limit; an empty value removes the override. It returns the number
// of net changes, so resubmitting the same payload yields zero.
func (a *Assembler) SaveFieldOverrides(p models.Pack, raw map[string]string, catalog *placeholder.Catalog) (models.Pack, int) {
	rawKeys := make([]string, 0, len(raw))
	for k := range raw {
		rawKeys = append(rawKeys, k)
	}
	sort.Strings(rawKeys)

	// one value per normalized key; the last raw spelling in order wins
	values := make(map[string]string, len(raw))
	keys := make([]string, 0, len(raw))
	for _, rk := range rawKeys {
		key := string(placeholder.Normalize(rk))
		if _, seen := values[key]; !seen {
			keys = append(keys, key)
		}
		values[key] = raw[rk]
	}
	sort.Strings(keys)

	out := p.Clone()
	if out.FieldOverrides == nil {
		out.FieldOverrides = make(map[string]string)
	}

	updated := 0
	for _, key := range keys {
		d, ok := catalog.Lookup(key)
		if !ok || d.Kind != placeholder.KindText {
			continue
		}
		value := cleanText(values[key], d.Limit())
		current, exists := out.FieldOverrides[key]
		switch {
		case value == "" && exists:
			delete(out.FieldOverrides, key)
			updated++
		case value == "":
		case !exists || current != value:
			out.FieldOverrides[key] = value
			updated++
		}
	}

	if updated == 0 {
		return p, 0
	}
	a.audit(&out, models.AuditEntry{Action: "field.override", Count: updated})
	a.touch(&out)
	a.logger.Debug("field overrides saved",
		zap.String("pack_id", p.ID.String()),
		zap.Int("updated", updated))
	return out, updated
}
