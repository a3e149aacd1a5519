// Package extract batches classified clauses into model requests and folds
// the replies into per-field value lists.
package extract

import (
	"context"
	"errors"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/sethvargo/go-retry"

	"github.com/cube-dp/lease-classifier/internal/common"
	"github.com/cube-dp/lease-classifier/internal/entity"
	"github.com/cube-dp/lease-classifier/internal/fields"
	"github.com/cube-dp/lease-classifier/internal/llm"
)

const (
	defaultBatchSize = 10
	defaultMaxText   = 4000
)

// Options tunes one Extractor. Zero values fall back to defaults.
type Options struct {
	Model         string
	BatchSize     int
	MaxPromptText int
	Matcher       fields.Matcher
	Retry         common.RetryConfig
}

// Extractor sends clause batches to the model service and aggregates the
// extracted values against the field definitions.
type Extractor struct {
	completer llm.Completer
	defs      []fields.Definition
	opts      Options
	log       *slog.Logger
}

func New(completer llm.Completer, defs []fields.Definition, opts Options, logger *slog.Logger) *Extractor {
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.MaxPromptText <= 0 {
		opts.MaxPromptText = defaultMaxText
	}
	if opts.Retry.Attempts <= 0 {
		opts.Retry.Attempts = 3
	}
	if opts.Retry.BackoffBase <= 0 {
		opts.Retry.BackoffBase = 500 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{completer: completer, defs: defs, opts: opts, log: logger}
}

// Extract runs batched field extraction over the clauses. It returns the
// aggregated fields and the number of completion calls made, including
// failed attempts. A batch that still fails after retries aborts the run;
// the call count up to that point is still returned so the caller can
// account for it.
func (e *Extractor) Extract(ctx context.Context, clauses []entity.Clause) ([]entity.ExtractedField, int, error) {
	if len(clauses) == 0 {
		return []entity.ExtractedField{}, 0, nil
	}

	pf := e.promptFields()
	calls := 0
	var values []fields.Value

	for start := 0; start < len(clauses); start += e.opts.BatchSize {
		end := start + e.opts.BatchSize
		if end > len(clauses) {
			end = len(clauses)
		}
		batch := e.buildBatch(clauses[start:end])

		batchValues, batchCalls, err := e.extractBatch(ctx, batch, pf)
		calls += batchCalls
		if err != nil {
			e.log.Error("extract.batch.failed",
				"batch_start", start, "batch_size", len(batch),
				"attempts", batchCalls, "error", err,
			)
			return nil, calls, err
		}
		values = append(values, batchValues...)
	}

	out := fields.Aggregate(values, e.defs, clauses, e.opts.Matcher)
	e.log.Info("extract.done",
		"clauses", len(clauses), "values", len(values),
		"fields", len(out), "api_calls", calls,
	)
	return out, calls, nil
}

func (e *Extractor) extractBatch(ctx context.Context, batch []llm.ClausePrompt, pf llm.PromptFields) ([]fields.Value, int, error) {
	prompt := llm.BuildExtractionPrompt(batch, pf)

	backoff := retry.WithMaxRetries(uint64(e.opts.Retry.Attempts-1), retry.NewExponential(e.opts.Retry.BackoffBase))

	calls := 0
	var values []fields.Value
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		calls++
		content, callErr := e.completer.Complete(ctx, prompt, e.opts.Model)
		if callErr != nil {
			if errors.Is(callErr, common.ErrExternalService) {
				return retry.RetryableError(callErr)
			}
			return callErr
		}
		parsed, parseErr := llm.ParseExtractionResponse(content)
		if parseErr != nil {
			// a fresh completion may come back well-formed
			return retry.RetryableError(parseErr)
		}
		values = parsed
		return nil
	})
	if err != nil {
		return nil, calls, err
	}
	return values, calls, nil
}

func (e *Extractor) buildBatch(clauses []entity.Clause) []llm.ClausePrompt {
	batch := make([]llm.ClausePrompt, 0, len(clauses))
	for _, c := range clauses {
		text := c.Text
		if len(text) > e.opts.MaxPromptText {
			cut := e.opts.MaxPromptText
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
			text = text[:cut]
		}
		batch = append(batch, llm.ClausePrompt{Index: c.Index, Type: string(c.Type), Text: text})
	}
	return batch
}

func (e *Extractor) promptFields() llm.PromptFields {
	var pf llm.PromptFields
	for _, d := range e.defs {
		if d.Mandatory {
			pf.Mandatory = append(pf.Mandatory, d.FieldName)
		}
		if d.Priority == fields.PriorityHigh {
			pf.HighPriority = append(pf.HighPriority, d.FieldName)
		} else {
			pf.Normal = append(pf.Normal, d.FieldName)
		}
	}
	return pf
}
