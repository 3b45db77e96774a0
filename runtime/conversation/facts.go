package conversation

import "strings"

// FactKind names a slot of the candidate fact sheet.
type FactKind string

// Fact kinds in rendering order.
const (
	FactName       FactKind = "name"
	FactUniversity FactKind = "university"
	FactCompany    FactKind = "company"
	FactExperience FactKind = "experience"
	FactSkills     FactKind = "skills"
)

// FactKinds lists every kind in rendering order.
var FactKinds = []FactKind{FactName, FactUniversity, FactCompany, FactExperience, FactSkills}

// FactSheet holds extracted candidate facts. Each kind is written at most once.
type FactSheet struct {
	values map[FactKind][]string
}

// Has reports whether kind is filled.
func (f *FactSheet) Has(kind FactKind) bool {
	return len(f.values[kind]) > 0
}

// Fill sets kind if it is empty. Empty values are ignored.
// It reports whether the sheet changed.
func (f *FactSheet) Fill(kind FactKind, values ...string) bool {
	if f.Has(kind) {
		return false
	}
	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			cleaned = append(cleaned, v)
		}
	}
	if len(cleaned) == 0 {
		return false
	}
	if f.values == nil {
		f.values = make(map[FactKind][]string)
	}
	f.values[kind] = cleaned
	return true
}

// Values returns a copy of the values for kind.
func (f *FactSheet) Values(kind FactKind) []string {
	v := f.values[kind]
	if len(v) == 0 {
		return nil
	}
	out := make([]string, len(v))
	copy(out, v)
	return out
}

// Value returns the values for kind joined with ", ".
func (f *FactSheet) Value(kind FactKind) string {
	return strings.Join(f.values[kind], ", ")
}

// Known returns the filled kinds in rendering order.
func (f *FactSheet) Known() []FactKind {
	var out []FactKind
	for _, k := range FactKinds {
		if f.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

// Map returns the filled kinds and their values. Empty kinds are omitted.
func (f *FactSheet) Map() map[string][]string {
	out := make(map[string][]string, len(f.values))
	for _, k := range f.Known() {
		out[string(k)] = f.Values(k)
	}
	return out
}

// Reset empties the sheet.
func (f *FactSheet) Reset() {
	f.values = nil
}
