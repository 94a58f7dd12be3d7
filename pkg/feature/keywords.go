package feature

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed config/keywords.yaml
var embeddedKeywords embed.FS

// KeywordTable maps semantic categories to the name fragments that signal
// them. The bundled table covers the personal/professional/temporal/
// location/financial/identification split; callers can load their own
// document to extend or replace it.
type KeywordTable struct {
	Categories map[string][]string `yaml:"categories"`

	// order fixes category precedence so overlapping keyword hits resolve
	// the same way on every run.
	order []string
}

// DefaultKeywordTable parses the embedded keyword document. The embed
// directive guarantees the file exists, so failures panic.
func DefaultKeywordTable() *KeywordTable {
	table, err := LoadKeywordsFS(embeddedKeywords, "config/keywords.yaml")
	if err != nil {
		panic(err)
	}
	return table
}

// LoadKeywordsFS reads a keyword document from the provided filesystem.
func LoadKeywordsFS(fsys fs.FS, path string) (*KeywordTable, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("feature: read keyword table: %w", err)
	}
	var table KeywordTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("feature: parse keyword table: %w", err)
	}
	if len(table.Categories) == 0 {
		return nil, fmt.Errorf("feature: keyword table %q has no categories", path)
	}
	table.order = canonicalOrder(table.Categories)
	return &table, nil
}

// Categorize returns the first category whose keywords match the field name,
// or "" when nothing matches.
func (t *KeywordTable) Categorize(fieldName string) string {
	lower := strings.ToLower(fieldName)
	for _, category := range t.order {
		for _, keyword := range t.Categories[category] {
			if strings.Contains(lower, keyword) {
				return category
			}
		}
	}
	return ""
}

// canonicalOrder lists the well-known categories first, then any custom ones
// sorted lexically, so precedence is stable across map iteration orders.
func canonicalOrder(categories map[string][]string) []string {
	known := []string{"personal", "professional", "temporal", "location", "financial", "identification"}
	order := make([]string, 0, len(categories))
	seen := make(map[string]bool, len(categories))
	for _, category := range known {
		if _, ok := categories[category]; ok {
			order = append(order, category)
			seen[category] = true
		}
	}
	extras := make([]string, 0)
	for category := range categories {
		if !seen[category] {
			extras = append(extras, category)
		}
	}
	sort.Strings(extras)
	return append(order, extras...)
}
