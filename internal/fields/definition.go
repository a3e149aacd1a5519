// Package fields loads field definitions and clause-type mappings and maps
// extracted values back onto the clauses that produced them.
package fields

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/cube-dp/lease-classifier/internal/common"
)

// Priority orders fields inside the extraction prompt.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
)

// Definition is one extractable field. Loaded once at startup and read-only
// for the lifetime of a run. Mandatory fields always appear in output, even
// with no values found.
type Definition struct {
	FieldID   string
	FieldName string
	Priority  Priority
	Mandatory bool
}

// mandatoryFieldNames mirrors the extraction contract: these must be
// surfaced whenever they exist anywhere in the document.
var mandatoryFieldNames = map[string]struct{}{
	"tenant name":      {},
	"landlord name":    {},
	"property address": {},
}

// mappingEntry supports both plain ids and the Mongo export form
// {"_id": {"$oid": "..."}}.
type mappingEntry struct {
	ID        json.RawMessage `json:"_id"`
	Name      string          `json:"name"`
	Priority  string          `json:"priority"`
	Mandatory *bool           `json:"mandatory"`
}

func (e *mappingEntry) id() string {
	if len(e.ID) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(e.ID, &s); err == nil {
		return s
	}
	var oid struct {
		OID string `json:"$oid"`
	}
	if err := json.Unmarshal(e.ID, &oid); err == nil {
		return oid.OID
	}
	return strings.Trim(string(e.ID), `"`)
}

// LoadDefinitions reads field definitions from a data_mapping_fields.json
// file. A field is mandatory when flagged explicitly or when its name is in
// the built-in mandatory list.
func LoadDefinitions(path string) ([]Definition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read fields mapping: %v", common.ErrPersistence, err)
	}
	var entries []mappingEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: parse fields mapping: %v", common.ErrPersistence, err)
	}

	defs := make([]Definition, 0, len(entries))
	for _, e := range entries {
		id := e.id()
		if id == "" || e.Name == "" {
			continue
		}
		prio := PriorityNormal
		if strings.EqualFold(e.Priority, string(PriorityHigh)) {
			prio = PriorityHigh
		}
		_, mandatory := mandatoryFieldNames[strings.ToLower(e.Name)]
		if e.Mandatory != nil {
			mandatory = *e.Mandatory
		}
		defs = append(defs, Definition{
			FieldID:   id,
			FieldName: e.Name,
			Priority:  prio,
			Mandatory: mandatory,
		})
	}
	return defs, nil
}

// ClauseMapping translates between clause type names and their external ids.
type ClauseMapping struct {
	idToName map[string]string
	nameToID map[string]string
}

// LoadClauseMapping reads a data_mapping.json file.
func LoadClauseMapping(path string) (*ClauseMapping, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read clause mapping: %v", common.ErrPersistence, err)
	}
	var entries []mappingEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: parse clause mapping: %v", common.ErrPersistence, err)
	}

	m := &ClauseMapping{
		idToName: make(map[string]string, len(entries)),
		nameToID: make(map[string]string, len(entries)),
	}
	for _, e := range entries {
		id := e.id()
		if id == "" || e.Name == "" {
			continue
		}
		m.idToName[id] = e.Name
		m.nameToID[normalizeName(e.Name)] = id
	}
	return m, nil
}

// NewClauseMapping builds a mapping directly from id -> name entries.
func NewClauseMapping(idToName map[string]string) *ClauseMapping {
	m := &ClauseMapping{
		idToName: make(map[string]string, len(idToName)),
		nameToID: make(map[string]string, len(idToName)),
	}
	for id, name := range idToName {
		if id == "" || name == "" {
			continue
		}
		m.idToName[id] = name
		m.nameToID[normalizeName(name)] = id
	}
	return m
}

func normalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "_")
	return strings.ReplaceAll(name, "-", "_")
}

// Name resolves an external id to its clause type name.
func (m *ClauseMapping) Name(id string) (string, bool) {
	name, ok := m.idToName[id]
	return name, ok
}

// ID resolves a clause type name (any casing/spacing) to its external id.
func (m *ClauseMapping) ID(name string) (string, bool) {
	id, ok := m.nameToID[normalizeName(name)]
	return id, ok
}

// Len returns the number of mapped clause types.
func (m *ClauseMapping) Len() int {
	return len(m.idToName)
}
