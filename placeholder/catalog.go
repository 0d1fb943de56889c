package placeholder

import (
	"strings"
)

// FieldKind tags a FieldDescriptor.
type FieldKind string

const (
	KindText   FieldKind = "text"
	KindChoice FieldKind = "choice"
	KindTable  FieldKind = "table"
)

// IsValid reports whether k is a known kind.
func (k FieldKind) IsValid() bool {
	switch k {
	case KindText, KindChoice, KindTable:
		return true
	default:
		return false
	}
}

// FieldDescriptor describes what a key means, independent of its value.
// MaxLength applies to Text, Choices to Choice and Columns to Table.
type FieldDescriptor struct {
	Key       FieldKey      `json:"key" yaml:"key"`
	Kind      FieldKind     `json:"kind" yaml:"kind"`
	Label     string        `json:"label,omitempty" yaml:"label,omitempty"`
	Required  bool          `json:"required,omitempty" yaml:"required,omitempty"`
	MaxLength int           `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Choices   []string      `json:"choices,omitempty" yaml:"choices,omitempty"`
	Columns   []TableColumn `json:"columns,omitempty" yaml:"columns,omitempty"`
}

// DefaultMaxLength caps text overrides whose descriptor declares no limit.
const DefaultMaxLength = 500

// Limit returns the effective maximum length of a text value.
func (d FieldDescriptor) Limit() int {
	if d.Kind != KindText {
		return 0
	}
	if d.MaxLength > 0 {
		return d.MaxLength
	}
	return DefaultMaxLength
}

// Catalog is the ordered set of descriptors known for a pack or template.
type Catalog struct {
	fields map[FieldKey]FieldDescriptor
	order  []FieldKey
}

// NewCatalog builds a catalog from explicit descriptors. Keys are
// normalized; table descriptors always land in the table namespace.
// Later descriptors replace earlier ones for the same key.
func NewCatalog(descs ...FieldDescriptor) *Catalog {
	c := &Catalog{fields: make(map[FieldKey]FieldDescriptor)}
	for _, d := range descs {
		c.Add(d)
	}
	return c
}

// CatalogFromBodies derives descriptors from the tokens found in bodies and
// overlays the explicit schema on top of them.
func CatalogFromBodies(schema []FieldDescriptor, bodies ...string) *Catalog {
	c := NewCatalog()
	for _, body := range bodies {
		for _, tok := range Tokenize(body) {
			if !tok.Valid {
				continue
			}
			if _, ok := c.fields[tok.Key]; ok {
				continue
			}
			kind := KindText
			if tok.Kind == TokenTable {
				kind = KindTable
			}
			c.Add(FieldDescriptor{Key: tok.Key, Kind: kind})
		}
	}
	for _, d := range schema {
		c.Add(d)
	}
	return c
}

// Add inserts or replaces a descriptor.
func (c *Catalog) Add(d FieldDescriptor) {
	if c.fields == nil {
		c.fields = make(map[FieldKey]FieldDescriptor)
	}
	if !d.Kind.IsValid() {
		d.Kind = KindText
	}
	if d.Kind == KindTable {
		d.Key = TableKey(string(d.Key))
		// the row schema is fixed per key
		d.Columns = TableColumns(d.Key)
	} else {
		d.Key = Normalize(string(d.Key))
	}
	if d.Key == "" {
		return
	}
	if _, ok := c.fields[d.Key]; !ok {
		c.order = append(c.order, d.Key)
	}
	c.fields[d.Key] = d
}

// Lookup returns the descriptor for raw, normalizing it first.
func (c *Catalog) Lookup(raw string) (FieldDescriptor, bool) {
	if c == nil {
		return FieldDescriptor{}, false
	}
	d, ok := c.fields[Normalize(raw)]
	return d, ok
}

// Has reports whether the catalog knows key.
func (c *Catalog) Has(key FieldKey) bool {
	_, ok := c.Lookup(string(key))
	return ok
}

// Descriptors returns descriptors in insertion order.
func (c *Catalog) Descriptors() []FieldDescriptor {
	if c == nil {
		return nil
	}
	out := make([]FieldDescriptor, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.fields[k])
	}
	return out
}

// Len returns the number of descriptors.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}

// MatchChoice compares value case-insensitively against the enumerated
// choices of a Choice-kind key and returns the catalog spelling.
func MatchChoice(key, value string, c *Catalog) (string, bool) {
	d, ok := c.Lookup(key)
	if !ok {
		return "", false
	}
	switch d.Kind {
	case KindChoice:
		v := strings.TrimSpace(value)
		for _, choice := range d.Choices {
			if strings.EqualFold(strings.TrimSpace(choice), v) {
				return choice, true
			}
		}
		return "", false
	default:
		return "", false
	}
}

// ValidateChoiceValue reports whether value is one of key's choices.
func ValidateChoiceValue(key, value string, c *Catalog) bool {
	_, ok := MatchChoice(key, value, c)
	return ok
}
