package fields

import (
	"sort"
	"strings"

	"github.com/cube-dp/lease-classifier/internal/entity"
)

// Value is one (field, literal) pair parsed from an extraction response,
// in discovery order.
type Value struct {
	FieldName string
	Value     string
}

// Matcher locates the clauses containing an extracted literal. The default
// is case-insensitive substring matching against each clause's original
// text; Exact switches to case-sensitive matching.
type Matcher struct {
	Exact bool
}

// Locate returns the indices of every clause whose text contains the value.
// Provenance is best-effort: an empty result is not an error.
func (m Matcher) Locate(value string, clauses []entity.Clause) []int {
	needle := strings.TrimSpace(value)
	if needle == "" {
		return nil
	}
	if !m.Exact {
		needle = strings.ToLower(needle)
	}
	var indices []int
	for _, c := range clauses {
		hay := c.Text
		if !m.Exact {
			hay = strings.ToLower(hay)
		}
		if strings.Contains(hay, needle) {
			indices = append(indices, c.Index)
		}
	}
	return indices
}

// Aggregate folds parsed values into one ExtractedField per definition.
// Values are formatted, kept in discovery order (duplicates allowed), and
// attributed to clauses via the matcher. Mandatory fields appear in the
// output even with zero values; non-mandatory empty fields are omitted.
// Response fields that match no definition are dropped.
func Aggregate(values []Value, defs []Definition, clauses []entity.Clause, m Matcher) []entity.ExtractedField {
	byName := make(map[string]*Definition, len(defs))
	for i := range defs {
		byName[strings.ToLower(defs[i].FieldName)] = &defs[i]
	}

	collected := make(map[string]*entity.ExtractedField, len(defs))
	indexSets := make(map[string]map[int]struct{}, len(defs))
	get := func(def *Definition) *entity.ExtractedField {
		f, ok := collected[def.FieldID]
		if !ok {
			f = &entity.ExtractedField{FieldID: def.FieldID, FieldName: def.FieldName}
			collected[def.FieldID] = f
			indexSets[def.FieldID] = make(map[int]struct{})
		}
		return f
	}

	for _, v := range values {
		def, ok := byName[strings.ToLower(strings.TrimSpace(v.FieldName))]
		if !ok || strings.TrimSpace(v.Value) == "" {
			continue
		}
		f := get(def)
		f.Values = append(f.Values, FormatValue(def.FieldName, v.Value))
		for _, idx := range m.Locate(v.Value, clauses) {
			indexSets[def.FieldID][idx] = struct{}{}
		}
	}

	out := make([]entity.ExtractedField, 0, len(collected))
	for _, def := range defs {
		f, ok := collected[def.FieldID]
		if !ok {
			if !def.Mandatory {
				continue
			}
			// absence is a signal, not an omission
			out = append(out, entity.ExtractedField{
				FieldID:       def.FieldID,
				FieldName:     def.FieldName,
				Values:        []string{},
				ClauseIndices: []int{},
			})
			continue
		}
		indices := make([]int, 0, len(indexSets[def.FieldID]))
		for idx := range indexSets[def.FieldID] {
			indices = append(indices, idx)
		}
		sort.Ints(indices)
		f.ClauseIndices = indices
		out = append(out, *f)
	}
	return out
}
