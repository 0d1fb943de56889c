package placeholder

import (
	"regexp"
	"strings"
	"unicode"
)

// FieldKey is the canonical identifier of one placeholder, e.g.
// "contractor.firmname" or "table:itemslist".
type FieldKey string

const (
	fieldPrefix = "field:"
	tablePrefix = "table:"
)

var keyPattern = regexp.MustCompile(`^[a-z0-9_]+(\.[a-z0-9_]+)*$`)

// Normalize canonicalizes a raw key. It lower-cases, drops all whitespace,
// strips wrapping braces and any leading "field:" prefixes, and keeps the
// "table:" namespace intact. Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) FieldKey {
	s := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, strings.ToLower(raw))

	for {
		prev := s
		if strings.HasPrefix(s, "{{") && strings.HasSuffix(s, "}}") && len(s) >= 4 {
			s = s[2 : len(s)-2]
		}
		s = strings.TrimPrefix(s, fieldPrefix)
		if s == prev {
			break
		}
	}
	return FieldKey(s)
}

// IsTable reports whether the key lives in the table namespace.
func (k FieldKey) IsTable() bool {
	return strings.HasPrefix(string(k), tablePrefix)
}

// Base returns the key without its table namespace.
func (k FieldKey) Base() string {
	return strings.TrimPrefix(string(k), tablePrefix)
}

// Valid reports whether k uses the canonical charset. Table keys are valid
// when their base is.
func (k FieldKey) Valid() bool {
	if k.IsTable() {
		return keyPattern.MatchString(k.Base())
	}
	return keyPattern.MatchString(string(k))
}

// TableKey returns the table-namespaced form of raw.
func TableKey(raw string) FieldKey {
	k := Normalize(raw)
	if k.IsTable() {
		return k
	}
	return FieldKey(tablePrefix + string(k))
}

func (k FieldKey) String() string { return string(k) }

// Token renders the canonical wire form of the key.
func (k FieldKey) Token() string {
	return "{{" + fieldPrefix + string(k) + "}}"
}
