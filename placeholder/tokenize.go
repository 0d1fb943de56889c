package placeholder

import (
	"regexp"
	"sort"
	"strings"
)

// TokenKind separates scalar tokens from table tokens.
type TokenKind int

const (
	TokenText TokenKind = iota
	TokenTable
)

func (k TokenKind) String() string {
	if k == TokenTable {
		return "table"
	}
	return "text"
}

// Token is one placeholder occurrence inside a template body.
type Token struct {
	Raw     string
	Key     FieldKey
	Kind    TokenKind
	Valid   bool
	Offset  int
	Spelled string // key as written, prefixes stripped
}

const maxMalformedRaw = 80

var (
	fieldHead   = regexp.MustCompile(`(?i)^\s*field\s*:`)
	tableHead   = regexp.MustCompile(`(?i)^\s*table\s*:`)
	singleBrace = regexp.MustCompile(`(?i)(^|[^{])(\{\s*field\s*:[^{}]*\}\}?)`)
)

// Tokenize scans body for placeholder tokens in order of appearance. Every
// "{{" opens a token; anything other than the two field forms is invalid,
// as are unterminated, nested or triple-brace openings and single-brace
// field: forms.
func Tokenize(body string) []Token {
	var tokens []Token
	covered := make([][2]int, 0)

	i := 0
	for {
		rel := strings.Index(body[i:], "{{")
		if rel < 0 {
			break
		}
		start := i + rel
		end := strings.Index(body[start+2:], "}}")
		next := strings.Index(body[start+2:], "{{")
		if end < 0 || (next >= 0 && next < end) || strings.HasPrefix(body[start+2:], "{") {
			tokens = append(tokens, Token{Raw: malformedRaw(body[start:]), Offset: start})
			covered = append(covered, [2]int{start, start + 2})
			i = start + 2
			continue
		}
		stop := start + 2 + end + 2
		tok := parseToken(body[start:stop])
		tok.Offset = start
		tokens = append(tokens, tok)
		covered = append(covered, [2]int{start, stop})
		i = stop
	}

	for _, m := range singleBrace.FindAllStringSubmatchIndex(body, -1) {
		s, e := m[4], m[5]
		if inside(covered, s) {
			continue
		}
		tokens = append(tokens, Token{Raw: body[s:e], Offset: s})
	}

	sort.SliceStable(tokens, func(a, b int) bool { return tokens[a].Offset < tokens[b].Offset })
	return tokens
}

func parseToken(raw string) Token {
	inner := raw[2 : len(raw)-2]
	tok := Token{Raw: raw}
	loc := fieldHead.FindStringIndex(inner)
	if loc == nil {
		return tok
	}
	rest := inner[loc[1]:]
	if tl := tableHead.FindStringIndex(rest); tl != nil {
		tok.Kind = TokenTable
		base := rest[tl[1]:]
		tok.Spelled = tablePrefix + strings.TrimSpace(base)
		tok.Key = TableKey(base)
		tok.Valid = strings.TrimSpace(base) != "" && !strings.ContainsAny(base, ":") && tok.Key.Valid()
		return tok
	}
	tok.Kind = TokenText
	tok.Spelled = strings.TrimSpace(rest)
	tok.Key = Normalize(rest)
	tok.Valid = tok.Key != "" && !strings.Contains(string(tok.Key), ":") && tok.Key.Valid()
	return tok
}

func malformedRaw(s string) string {
	cut := len(s)
	if n := strings.Index(s[2:], "{{"); n >= 0 && n+2 < cut {
		cut = n + 2
	}
	if n := strings.IndexAny(s, "<\n"); n >= 0 && n < cut {
		cut = n
	}
	if cut > maxMalformedRaw {
		cut = maxMalformedRaw
	}
	return strings.TrimSpace(s[:cut])
}

func inside(ranges [][2]int, pos int) bool {
	for _, r := range ranges {
		if pos >= r[0] && pos < r[1] {
			return true
		}
	}
	return false
}
