// Package pipeline drives a document through segmentation, classification,
// field extraction, and aggregation, degrading rather than failing wherever
// the contract allows.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cube-dp/lease-classifier/constants"
	"github.com/cube-dp/lease-classifier/internal/common"
	"github.com/cube-dp/lease-classifier/internal/entity"
	"github.com/cube-dp/lease-classifier/internal/fields"
	"github.com/cube-dp/lease-classifier/internal/textproc"
)

// Classifier is the trained-model surface the orchestrator needs. The
// concrete implementation is read-only after load and safe for concurrent
// predictions.
type Classifier interface {
	Predict(text string) (constants.Category, error)
	PredictProba(text string) (map[constants.Category]float64, error)
}

// FieldExtractor runs batched extraction over classified clauses and
// reports how many completion calls it attempted.
type FieldExtractor interface {
	Extract(ctx context.Context, clauses []entity.Clause) ([]entity.ExtractedField, int, error)
}

// Options for one Orchestrator. ExtractTimeout bounds the whole extraction
// step including retries.
type Options struct {
	MinClauseLength int
	ExtractEnabled  bool
	ExtractTimeout  time.Duration
}

type Orchestrator struct {
	classifier Classifier
	extractor  FieldExtractor
	mapping    *fields.ClauseMapping
	opts       Options
	log        *slog.Logger
}

func NewOrchestrator(classifier Classifier, extractor FieldExtractor, mapping *fields.ClauseMapping, opts Options, logger *slog.Logger) *Orchestrator {
	if opts.MinClauseLength <= 0 {
		opts.MinClauseLength = 30
	}
	if opts.ExtractTimeout <= 0 {
		opts.ExtractTimeout = 2 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		classifier: classifier,
		extractor:  extractor,
		mapping:    mapping,
		opts:       opts,
		log:        logger,
	}
}

// Process runs one document through the full pipeline. Empty input and an
// unfitted classifier are fatal for the document; everything downstream
// degrades instead of failing.
func (o *Orchestrator) Process(ctx context.Context, name, rawText string) (*entity.PipelineResult, error) {
	doc := &entity.Document{
		ID:      uuid.New().String(),
		Name:    name,
		RawText: rawText,
	}
	start := time.Now()

	if strings.TrimSpace(rawText) == "" {
		o.logStage(doc, constants.StageFailed)
		return nil, common.NewAppError("INPUT_ERROR",
			fmt.Sprintf("document %q has no text", name), common.ErrInvalidInput)
	}

	o.logStage(doc, constants.StageSegmenting)
	doc.NormalizedText = textproc.Normalize(rawText)
	for i, span := range textproc.CollectSpans(textproc.Segment(doc.NormalizedText, o.opts.MinClauseLength)) {
		doc.Clauses = append(doc.Clauses, entity.Clause{
			Index: i,
			Text:  span.Text,
			Start: span.Start,
		})
	}

	o.logStage(doc, constants.StageClassifying)
	result := &entity.PipelineResult{Document: doc}
	if err := o.classifyClauses(doc, result); err != nil {
		o.logStage(doc, constants.StageFailed)
		return nil, err
	}

	o.logStage(doc, constants.StageExtractingFields)
	o.extractFields(ctx, doc, result)

	result.TotalClauses = len(doc.Clauses)
	result.TotalFields = len(result.Fields)
	o.logStage(doc, constants.StageAggregated)
	o.log.Info("pipeline.done",
		"doc_id", doc.ID,
		"doc", doc.Name,
		"clauses", result.TotalClauses,
		"fields", result.TotalFields,
		"api_calls", result.APICallsMade,
		"warnings", len(result.Warnings),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// classifyClauses scores each clause independently. A clause that cannot be
// scored becomes "other" with confidence 0 plus a warning; only an unfitted
// classifier aborts.
func (o *Orchestrator) classifyClauses(doc *entity.Document, result *entity.PipelineResult) error {
	for i := range doc.Clauses {
		c := &doc.Clauses[i]
		probs, err := o.classifier.PredictProba(c.Text)
		if err != nil {
			if errors.Is(err, common.ErrNotFitted) {
				return err
			}
			o.log.Warn("pipeline.classify.clause_failed",
				"doc_id", doc.ID, "clause_index", c.Index, "error", err)
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("clause %d could not be classified: %v", c.Index, err))
			c.Type = constants.Other
			c.Confidence = 0
		} else {
			c.Type, c.Confidence = argmax(probs)
		}
		c.Classified = true
		if o.mapping != nil {
			if id, ok := o.mapping.ID(string(c.Type)); ok {
				c.TypeID = id
			}
		}
	}
	return nil
}

// extractFields runs the extraction step under its own timeout. Any failure
// after retries leaves classification intact: empty fields, extraction
// flagged off, calls still counted.
func (o *Orchestrator) extractFields(ctx context.Context, doc *entity.Document, result *entity.PipelineResult) {
	result.Fields = []entity.ExtractedField{}
	if !o.opts.ExtractEnabled || o.extractor == nil {
		result.FieldExtractionEnabled = false
		return
	}

	extractCtx, cancel := context.WithTimeout(ctx, o.opts.ExtractTimeout)
	defer cancel()

	extracted, calls, err := o.extractor.Extract(extractCtx, doc.Clauses)
	result.APICallsMade = calls
	if err != nil {
		o.log.Warn("pipeline.extract.degraded",
			"doc_id", doc.ID, "api_calls", calls, "error", err)
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("field extraction failed, returning classification only: %v", err))
		result.FieldExtractionEnabled = false
		return
	}
	result.Fields = extracted
	result.FieldExtractionEnabled = true
}

func (o *Orchestrator) logStage(doc *entity.Document, stage constants.Stage) {
	o.log.Info("pipeline.stage", "doc_id", doc.ID, "doc", doc.Name, "stage", string(stage))
}

func argmax(probs map[constants.Category]float64) (constants.Category, float64) {
	best := constants.Other
	bestP := -1.0
	for _, cat := range constants.Categories() {
		if p, ok := probs[cat]; ok && p > bestP {
			best, bestP = cat, p
		}
	}
	if bestP < 0 {
		return constants.Other, 0
	}
	return best, bestP
}

