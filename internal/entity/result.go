package entity

import "sort"

// ResultClause is the persisted/returned view of one classified clause.
type ResultClause struct {
	ClauseIndex int     `json:"clause_index"`
	Text        string  `json:"text"`
	Type        string  `json:"type"`
	TypeID      string  `json:"type_id,omitempty"`
	Confidence  float64 `json:"confidence"`
}

// ResultField is the persisted/returned view of one extracted field.
type ResultField struct {
	FieldID       string   `json:"field_id"`
	FieldName     string   `json:"field_name"`
	Values        []string `json:"values"`
	ClauseIndices []int    `json:"clause_indices"`
}

// ResultDocument is the record returned to callers and written to the
// result store.
type ResultDocument struct {
	PDFFile                string         `json:"pdf_file"`
	StorageType            string         `json:"storage_type"`
	StorageName            string         `json:"storage_name"`
	TotalClauses           int            `json:"total_clauses"`
	TotalFields            int            `json:"total_fields"`
	OpenAIAPICalls         int            `json:"openai_api_calls"`
	FieldExtractionEnabled bool           `json:"field_extraction_enabled"`
	Clauses                []ResultClause `json:"clauses"`
	Fields                 []ResultField  `json:"fields"`
	Warnings               []string       `json:"warnings,omitempty"`
}

// ToResultDocument flattens a pipeline result into the external record shape.
func (r *PipelineResult) ToResultDocument() ResultDocument {
	doc := ResultDocument{
		PDFFile:                r.Document.Name,
		StorageType:            r.StorageType,
		StorageName:            r.StorageName,
		TotalClauses:           r.TotalClauses,
		TotalFields:            r.TotalFields,
		OpenAIAPICalls:         r.APICallsMade,
		FieldExtractionEnabled: r.FieldExtractionEnabled,
		Clauses:                make([]ResultClause, 0, len(r.Document.Clauses)),
		Fields:                 make([]ResultField, 0, len(r.Fields)),
		Warnings:               r.Warnings,
	}
	for _, c := range r.Document.Clauses {
		doc.Clauses = append(doc.Clauses, ResultClause{
			ClauseIndex: c.Index,
			Text:        c.Text,
			Type:        string(c.Type),
			TypeID:      c.TypeID,
			Confidence:  c.Confidence,
		})
	}
	for _, f := range r.Fields {
		indices := append([]int(nil), f.ClauseIndices...)
		sort.Ints(indices)
		values := f.Values
		if values == nil {
			values = []string{}
		}
		if indices == nil {
			indices = []int{}
		}
		doc.Fields = append(doc.Fields, ResultField{
			FieldID:       f.FieldID,
			FieldName:     f.FieldName,
			Values:        values,
			ClauseIndices: indices,
		})
	}
	return doc
}
