package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cube-dp/lease-classifier/constants"
)

func TestToResultDocument(t *testing.T) {
	res := &PipelineResult{
		Document: &Document{
			Name: "lease.pdf",
			Clauses: []Clause{
				{Index: 0, Text: "Rent is due monthly.", Type: constants.RentPayment, TypeID: "id-rent", Confidence: 0.9},
				{Index: 1, Text: "No pets allowed.", Type: constants.Pets, Confidence: 0.8},
			},
		},
		Fields: []ExtractedField{
			{FieldID: "f1", FieldName: "Tenant Name", Values: []string{"Jane Doe"}, ClauseIndices: []int{1, 0}},
			{FieldID: "f2", FieldName: "Property Address"},
		},
		TotalClauses:           2,
		TotalFields:            2,
		APICallsMade:           1,
		FieldExtractionEnabled: true,
		StorageType:            "local",
		StorageName:            "abc_lease.pdf",
	}

	doc := res.ToResultDocument()
	assert.Equal(t, "lease.pdf", doc.PDFFile)
	assert.Equal(t, 2, doc.TotalClauses)
	assert.Equal(t, 1, doc.OpenAIAPICalls)
	require.Len(t, doc.Clauses, 2)
	assert.Equal(t, "rent_payment", doc.Clauses[0].Type)

	require.Len(t, doc.Fields, 2)
	assert.Equal(t, []int{0, 1}, doc.Fields[0].ClauseIndices, "indices come out sorted")
	assert.NotNil(t, doc.Fields[1].Values, "empty slices, never null")
	assert.NotNil(t, doc.Fields[1].ClauseIndices)
}

func TestResultDocumentJSONShape(t *testing.T) {
	doc := ResultDocument{
		PDFFile: "lease.pdf",
		Clauses: []ResultClause{{ClauseIndex: 0, Text: "x", Type: "other", Confidence: 0.5}},
		Fields:  []ResultField{{FieldID: "f1", FieldName: "Tenant Name", Values: []string{}, ClauseIndices: []int{}}},
	}
	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	for _, key := range []string{
		"pdf_file", "storage_type", "storage_name", "total_clauses", "total_fields",
		"openai_api_calls", "field_extraction_enabled", "clauses", "fields",
	} {
		assert.Contains(t, m, key)
	}

	clause := m["clauses"].([]any)[0].(map[string]any)
	assert.Contains(t, clause, "clause_index")
	assert.Contains(t, clause, "confidence")

	field := m["fields"].([]any)[0].(map[string]any)
	assert.Contains(t, field, "field_id")
	assert.Contains(t, field, "clause_indices")
	assert.Equal(t, []any{}, field["values"], "empty values serialize as [], not null")
}
