// Package entity defines the data model shared across the pipeline:
// documents, clauses, extracted fields, and the aggregated result.
package entity

import "github.com/cube-dp/lease-classifier/constants"

// Clause is one segmented span of a lease document. Index is 0-based in
// segmentation order and stable for the document's lifetime; it is the join
// key for field provenance. The segmenter creates the clause, the classifier
// fills Type/Confidence, the field extractor only reads Text and Index.
type Clause struct {
	Index      int
	Text       string
	Start      int // byte offset in the normalized document text
	Type       constants.Category
	TypeID     string // external mapping id for Type, empty when unmapped
	Confidence float64
	Classified bool // false until the classifier has scored this clause
}

// Document is one input file's text plus its ordered clauses. It is owned by
// a single pipeline run; immutable after segmentation except for classifier
// annotations.
type Document struct {
	ID             string
	Name           string // source file name
	RawText        string
	NormalizedText string
	Clauses        []Clause
}

// ExtractedField aggregates every value found for one field definition.
// Values preserves discovery order and may repeat; ClauseIndices is the
// provenance set and is not positionally paired with Values.
type ExtractedField struct {
	FieldID       string
	FieldName     string
	Values        []string
	ClauseIndices []int // sorted, unique
}

// PipelineResult is built once per document and never mutated after return.
type PipelineResult struct {
	Document *Document
	Fields   []ExtractedField

	TotalClauses            int
	TotalFields             int
	APICallsMade            int
	FieldExtractionEnabled  bool
	Warnings                []string

	StorageType string
	StorageName string
}
