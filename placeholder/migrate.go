package placeholder

import (
	"regexp"
	"strings"
)

// LegacyPattern names one recognized legacy placeholder spelling.
type LegacyPattern string

const (
	// LegacyBare is a prefix-less token such as {{firmName}}.
	LegacyBare LegacyPattern = "bare"
	// LegacyNonCanonical is a field: token with stray casing or spacing.
	LegacyNonCanonical LegacyPattern = "noncanonical"
	// LegacyDotPrefix is the old {{field.firmName}} spelling.
	LegacyDotPrefix LegacyPattern = "dot_prefix"
	// LegacyTablePrefix is a table token missing its field: prefix.
	LegacyTablePrefix LegacyPattern = "table_prefix"
)

// MigrationStats counts rewritten tokens per legacy pattern.
type MigrationStats struct {
	Rewritten map[LegacyPattern]int `json:"rewritten"`
	Total     int                   `json:"total"`
}

func (s *MigrationStats) add(p LegacyPattern) {
	if s.Rewritten == nil {
		s.Rewritten = make(map[LegacyPattern]int)
	}
	s.Rewritten[p]++
	s.Total++
}

var (
	mustachePattern = regexp.MustCompile(`\{\{([^{}]*)\}\}`)

	legacyFieldTable = regexp.MustCompile(`(?i)^\s*field\s*:\s*table\s*:(.*)$`)
	legacyField      = regexp.MustCompile(`(?i)^\s*field\s*:(.*)$`)
	legacyDot        = regexp.MustCompile(`(?i)^\s*field\.([A-Za-z0-9_.\s]+)$`)
	legacyTable      = regexp.MustCompile(`(?i)^\s*table\s*:(.*)$`)
	legacyBare       = regexp.MustCompile(`^\s*([A-Za-z][A-Za-z0-9_.]*)\s*$`)
)

// legacyAliases maps the old editor's namespace-less names to the keys the
// profile and pack metadata actually supply. Bare and dot-prefix tokens
// are resolved through it.
var legacyAliases = map[FieldKey]FieldKey{
	"firmname":          "contractor.firmname",
	"firm_name":         "contractor.firmname",
	"proprietorname":    "contractor.proprietorname",
	"proprietor":        "contractor.proprietorname",
	"designation":       "contractor.designation",
	"address":           "contractor.address",
	"city":              "contractor.city",
	"state":             "contractor.state",
	"pincode":           "contractor.pincode",
	"phone":             "contractor.phone",
	"email":             "contractor.email",
	"gstin":             "contractor.gstin",
	"gst_no":            "contractor.gstin",
	"pan":               "contractor.pan",
	"pannumber":         "contractor.pan",
	"pan_no":            "contractor.pan",
	"registrationno":    "contractor.registrationno",
	"registrationclass": "contractor.registrationclass",
	"bankname":          "bank.name",
	"accountno":         "bank.accountno",
	"ifsc":              "bank.ifsc",
	"tenderno":          "tender.number",
	"tender_no":         "tender.number",
	"tendernumber":      "tender.number",
	"department":        "tender.department",
	"nameofwork":        "tender.nameofwork",
	"name_of_work":      "tender.nameofwork",
}

// LegacyAlias resolves a namespace-less legacy key to its current key.
// Keys without an alias are returned unchanged.
func LegacyAlias(key FieldKey) FieldKey {
	if alias, ok := legacyAliases[key]; ok {
		return alias
	}
	return key
}

// MigrateLegacyTokens rewrites legacy placeholder spellings in body to the
// canonical {{field:<key>}} and {{field:table:<key>}} forms. Tokens that are
// already canonical, and mustache constructs that are not placeholders
// (helpers, blocks), are left untouched, so running it twice reports zero
// rewrites the second time.
func MigrateLegacyTokens(body string) (string, MigrationStats) {
	var stats MigrationStats
	out := mustachePattern.ReplaceAllStringFunc(body, func(tok string) string {
		inner := tok[2 : len(tok)-2]
		repl, pattern, ok := migrateToken(inner)
		if !ok || repl == tok {
			return tok
		}
		stats.add(pattern)
		return repl
	})
	return out, stats
}

func migrateToken(inner string) (string, LegacyPattern, bool) {
	if m := legacyFieldTable.FindStringSubmatch(inner); m != nil {
		key := Normalize(m[1])
		if key == "" {
			return "", "", false
		}
		return canonicalTable(key), LegacyNonCanonical, true
	}
	if m := legacyField.FindStringSubmatch(inner); m != nil {
		key := Normalize(m[1])
		if key == "" {
			return "", "", false
		}
		if key.IsTable() {
			return canonicalTable(FieldKey(key.Base())), LegacyNonCanonical, true
		}
		return key.Token(), LegacyNonCanonical, true
	}
	if m := legacyDot.FindStringSubmatch(inner); m != nil {
		key := Normalize(m[1])
		if key == "" {
			return "", "", false
		}
		return LegacyAlias(key).Token(), LegacyDotPrefix, true
	}
	if m := legacyTable.FindStringSubmatch(inner); m != nil {
		key := Normalize(m[1])
		if key == "" {
			return "", "", false
		}
		return canonicalTable(key), LegacyTablePrefix, true
	}
	if m := legacyBare.FindStringSubmatch(inner); m != nil {
		if strings.EqualFold(strings.TrimSpace(m[1]), "else") {
			return "", "", false
		}
		return LegacyAlias(Normalize(m[1])).Token(), LegacyBare, true
	}
	return "", "", false
}

func canonicalTable(key FieldKey) string {
	return "{{" + fieldPrefix + tablePrefix + strings.TrimPrefix(string(key), tablePrefix) + "}}"
}
