package placeholder

// ValidationResult classifies the tokens of one template body.
// InvalidTokens block a save; UnknownKeys are warnings only.
type ValidationResult struct {
	InvalidTokens []string   `json:"invalidTokens"`
	UnknownKeys   []FieldKey `json:"unknownKeys"`
	Keys          []FieldKey `json:"keys"`
}

// Blocking reports whether the body must not be persisted.
func (v ValidationResult) Blocking() bool { return len(v.InvalidTokens) > 0 }

// Err returns an *InvalidTokenError when the body has invalid tokens.
func (v ValidationResult) Err() error {
	if !v.Blocking() {
		return nil
	}
	return &InvalidTokenError{Tokens: append([]string(nil), v.InvalidTokens...)}
}

// Validate tokenizes body and classifies each token against the registry
// and catalog. Lists are deduplicated and keep first-occurrence order.
func Validate(body string, registry Registry, catalog *Catalog) ValidationResult {
	res := ValidationResult{
		InvalidTokens: []string{},
		UnknownKeys:   []FieldKey{},
		Keys:          []FieldKey{},
	}
	seenRaw := make(map[string]bool)
	seenKey := make(map[FieldKey]bool)

	for _, tok := range Tokenize(body) {
		if !tok.Valid {
			if !seenRaw[tok.Raw] {
				seenRaw[tok.Raw] = true
				res.InvalidTokens = append(res.InvalidTokens, tok.Raw)
			}
			continue
		}
		if seenKey[tok.Key] {
			continue
		}
		seenKey[tok.Key] = true
		res.Keys = append(res.Keys, tok.Key)
		if !catalog.Has(tok.Key) && !registry.Has(tok.Key) {
			res.UnknownKeys = append(res.UnknownKeys, tok.Key)
		}
	}
	return res
}
