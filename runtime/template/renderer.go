// Package template provides deterministic {{variable}} substitution.
//
// Placeholders are resolved in a single pass over the template text.
// Substituted values are inserted verbatim and never re-scanned, so a value
// that itself contains "{{...}}" (for example a candidate transcript) cannot
// change the rendered structure.
package template

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.-]+)\s*\}\}`)

// Renderer handles variable substitution in templates.
type Renderer struct {
	// AllowMissing renders unknown placeholders as empty strings instead of failing.
	AllowMissing bool
}

// NewRenderer creates a new template renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render substitutes vars into templateText. It returns an error listing
// every placeholder without a value unless AllowMissing is set.
func (r *Renderer) Render(templateText string, vars map[string]string) (string, error) {
	var missing []string
	seen := make(map[string]bool)

	result := placeholder.ReplaceAllStringFunc(templateText, func(match string) string {
		name := placeholder.FindStringSubmatch(match)[1]
		if value, ok := vars[name]; ok {
			return value
		}
		if !seen[name] {
			seen[name] = true
			missing = append(missing, name)
		}
		return ""
	})

	if len(missing) > 0 && !r.AllowMissing {
		sort.Strings(missing)
		return "", fmt.Errorf("unresolved template placeholders: %v", missing)
	}
	return result, nil
}

// Placeholders returns the distinct placeholder names in templateText, sorted.
func Placeholders(templateText string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range placeholder.FindAllStringSubmatch(templateText, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	sort.Strings(names)
	return names
}

// ValidateRequiredVars checks that all required variables are provided and non-empty.
func (r *Renderer) ValidateRequiredVars(requiredVars []string, vars map[string]string) error {
	var missing []string
	for _, required := range requiredVars {
		if value, exists := vars[required]; !exists || strings.TrimSpace(value) == "" {
			missing = append(missing, required)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required variables: %v", missing)
	}
	return nil
}
