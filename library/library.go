// Package library holds the standard field schema and annexure templates
// every contractor starts with. A default library is embedded; deployments
// can replace it with their own YAML file.
package library

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"tenderpack-backend/models"
	"tenderpack-backend/placeholder"
)

//go:embed data/standard.yaml
var standardYAML []byte

// AnnexureSpec is one standard annexure template.
type AnnexureSpec struct {
	ID              string   `yaml:"id"`
	Name            string   `yaml:"name"`
	Aliases         []string `yaml:"aliases,omitempty"`
	ChecklistItemID string   `yaml:"checklistItemId,omitempty"`
	Body            string   `yaml:"body"`
}

// Library is the parsed library file.
type Library struct {
	Version   string                        `yaml:"version"`
	Fields    []placeholder.FieldDescriptor `yaml:"fields"`
	Annexures []AnnexureSpec                `yaml:"annexures"`
}

// Default returns the embedded library.
func Default() (*Library, error) {
	return Parse(standardYAML)
}

// LoadFile loads a library from path, or the embedded default when path is
// empty.
func LoadFile(path string) (*Library, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read library file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses library YAML. Annexure bodies are migrated to canonical
// placeholder syntax and must validate cleanly.
func Parse(data []byte) (*Library, error) {
	var lib Library
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("failed to parse library YAML: %w", err)
	}
	if lib.Version == "" {
		lib.Version = "1"
	}

	seen := make(map[string]bool, len(lib.Annexures))
	for i := range lib.Annexures {
		a := &lib.Annexures[i]
		a.ID = strings.TrimSpace(a.ID)
		if a.ID == "" {
			return nil, fmt.Errorf("annexure %d: missing id", i)
		}
		if seen[a.ID] {
			return nil, fmt.Errorf("annexure %s: duplicate id", a.ID)
		}
		seen[a.ID] = true
		if a.Name == "" {
			a.Name = a.ID
		}
		a.Body, _ = placeholder.MigrateLegacyTokens(a.Body)
		if err := placeholder.Validate(a.Body, placeholder.Registry{}, nil).Err(); err != nil {
			return nil, fmt.Errorf("annexure %s: %w", a.ID, err)
		}
	}
	return &lib, nil
}

// Catalog returns the library schema as a field catalog.
func (l *Library) Catalog() *placeholder.Catalog {
	return placeholder.NewCatalog(l.Fields...)
}

// Templates returns the annexures as annexure templates owned by owner.
func (l *Library) Templates(owner string) []models.Template {
	out := make([]models.Template, 0, len(l.Annexures))
	for _, a := range l.Annexures {
		out = append(out, models.Template{
			ID:              a.ID,
			YojID:           owner,
			Name:            a.Name,
			Kind:            models.KindAnnexure,
			Body:            a.Body,
			ChecklistItemID: a.ChecklistItemID,
		})
	}
	return out
}

// Match finds the annexure whose name or alias matches a free-text title,
// for instance one read from a tender notice.
func (l *Library) Match(title string) (AnnexureSpec, bool) {
	want := MatchKey(title)
	if want == "" {
		return AnnexureSpec{}, false
	}
	for _, a := range l.Annexures {
		for _, name := range append([]string{a.ID, a.Name}, a.Aliases...) {
			if k := MatchKey(name); k != "" && (k == want || strings.Contains(want, k)) {
				return a, true
			}
		}
	}
	return AnnexureSpec{}, false
}

// MatchKey reduces a title to lowercase words separated by single spaces.
func MatchKey(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	return strings.Join(fields, " ")
}
