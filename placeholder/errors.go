package placeholder

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidToken       = errors.New("invalid placeholder token")
	ErrUnknownKey         = errors.New("unknown placeholder key")
	ErrInvalidChoiceValue = errors.New("invalid choice value")
)

// InvalidTokenError lists the malformed tokens that block a template save.
type InvalidTokenError struct {
	Tokens []string
}

func (e *InvalidTokenError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidToken, strings.Join(e.Tokens, ", "))
}

func (e *InvalidTokenError) Unwrap() error { return ErrInvalidToken }

// InvalidChoiceError reports a value outside a choice field's enumeration.
type InvalidChoiceError struct {
	Key     FieldKey
	Value   string
	Choices []string
}

func (e *InvalidChoiceError) Error() string {
	if len(e.Choices) == 0 {
		return fmt.Sprintf("%s: %q is not a choice field", ErrInvalidChoiceValue, e.Key)
	}
	return fmt.Sprintf("%s: %q for %s (allowed: %s)", ErrInvalidChoiceValue, e.Value, e.Key, strings.Join(e.Choices, ", "))
}

func (e *InvalidChoiceError) Unwrap() error { return ErrInvalidChoiceValue }
