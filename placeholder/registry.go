package placeholder

import (
	"sort"
	"strings"
)

// Source identifies the layer a registry value came from.
type Source string

const (
	SourceExtra    Source = "extra"
	SourceProfile  Source = "profile"
	SourceMemory   Source = "memory"
	SourceOverride Source = "override"
	SourceToggle   Source = "toggle"
	SourceTable    Source = "table"
)

// Entry is one resolved registry value.
type Entry struct {
	Key    FieldKey
	Value  string
	Rows   TableRows
	Kind   FieldKind
	Source Source
}

// Layer is one flat scalar source. Layers passed to Compose are applied in
// order, later layers winning.
type Layer struct {
	Source Source
	Kind   FieldKind
	Values map[string]string
}

// Sources holds every input of a registry composition. A nil map is an
// empty source.
type Sources struct {
	Extra     map[string]string
	Profile   map[string]string
	Memory    map[string]string
	Overrides map[string]string
	Toggles   map[string]string
	Tables    map[string]TableRows
}

// Registry is the per-render key to value lookup. It is built fresh for
// each render and never shared.
type Registry struct {
	entries map[FieldKey]Entry
}

// ComposeRegistry merges sources with precedence
// extra < profile < memory < overrides < toggles.
// Table keys come only from Sources.Tables.
func ComposeRegistry(src Sources) Registry {
	r := Compose(
		Layer{Source: SourceExtra, Kind: KindText, Values: src.Extra},
		Layer{Source: SourceProfile, Kind: KindText, Values: src.Profile},
		Layer{Source: SourceMemory, Kind: KindText, Values: src.Memory},
		Layer{Source: SourceOverride, Kind: KindText, Values: src.Overrides},
		Layer{Source: SourceToggle, Kind: KindChoice, Values: src.Toggles},
	)
	for _, raw := range sortedKeys(src.Tables) {
		rows := src.Tables[raw]
		key := TableKey(raw)
		if key.Base() == "" {
			continue
		}
		normalized := make(TableRows, 0, len(rows))
		for _, row := range rows {
			normalized = append(normalized, normalizeRow(row))
		}
		r.entries[key] = Entry{Key: key, Rows: normalized, Kind: KindTable, Source: SourceTable}
	}
	return r
}

// Compose applies scalar layers in order. Blank values are treated as
// absent and never overwrite a lower layer; table-namespaced keys are
// ignored.
func Compose(layers ...Layer) Registry {
	r := Registry{entries: make(map[FieldKey]Entry)}
	for _, layer := range layers {
		for _, raw := range sortedKeys(layer.Values) {
			value := layer.Values[raw]
			key := Normalize(raw)
			if key == "" || key.IsTable() || strings.TrimSpace(value) == "" {
				continue
			}
			kind := layer.Kind
			if kind == "" {
				kind = KindText
			}
			r.entries[key] = Entry{Key: key, Value: value, Kind: kind, Source: layer.Source}
		}
	}
	return r
}

// sortedKeys orders raw keys so that two spellings of one normalized key
// always resolve the same way.
func sortedKeys[V any](m map[string]V) []string {
	raws := make([]string, 0, len(m))
	for raw := range m {
		raws = append(raws, raw)
	}
	sort.Strings(raws)
	return raws
}

// Lookup returns the entry for raw after normalization.
func (r Registry) Lookup(raw string) (Entry, bool) {
	e, ok := r.entries[Normalize(raw)]
	return e, ok
}

// Value returns the scalar value for raw.
func (r Registry) Value(raw string) (string, bool) {
	e, ok := r.Lookup(raw)
	if !ok || e.Kind == KindTable {
		return "", false
	}
	return e.Value, true
}

// Table returns the rows for a table key.
func (r Registry) Table(raw string) (TableRows, bool) {
	e, ok := r.entries[TableKey(raw)]
	if !ok {
		return nil, false
	}
	return e.Rows, true
}

// Has reports whether key resolves to anything.
func (r Registry) Has(key FieldKey) bool {
	_, ok := r.entries[key]
	return ok
}

// Keys returns the resolved keys sorted.
func (r Registry) Keys() []FieldKey {
	keys := make([]FieldKey, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Len returns the number of resolved keys.
func (r Registry) Len() int { return len(r.entries) }
