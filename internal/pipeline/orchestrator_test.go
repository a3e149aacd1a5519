package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cube-dp/lease-classifier/constants"
	"github.com/cube-dp/lease-classifier/internal/common"
	"github.com/cube-dp/lease-classifier/internal/entity"
	"github.com/cube-dp/lease-classifier/internal/extract"
	"github.com/cube-dp/lease-classifier/internal/fields"
)

// stubClassifier labels clauses by keyword; failOn triggers a per-clause
// error, unfitted simulates a model that was never loaded.
type stubClassifier struct {
	failOn   string
	unfitted bool
}

func (s *stubClassifier) PredictProba(text string) (map[constants.Category]float64, error) {
	if s.unfitted {
		return nil, common.ErrNotFitted
	}
	if s.failOn != "" && strings.Contains(text, s.failOn) {
		return nil, fmt.Errorf("%w: scoring failed", common.ErrInvalidInput)
	}
	probs := map[constants.Category]float64{constants.Other: 0.2}
	if strings.Contains(strings.ToLower(text), "rent") {
		probs[constants.RentPayment] = 0.8
	} else {
		probs[constants.Other] = 1.0
	}
	return probs, nil
}

func (s *stubClassifier) Predict(text string) (constants.Category, error) {
	probs, err := s.PredictProba(text)
	if err != nil {
		return "", err
	}
	best, bestP := constants.Other, -1.0
	for cat, p := range probs {
		if p > bestP {
			best, bestP = cat, p
		}
	}
	return best, nil
}

type stubExtractor struct {
	fields []entity.ExtractedField
	calls  int
	err    error
}

func (s *stubExtractor) Extract(context.Context, []entity.Clause) ([]entity.ExtractedField, int, error) {
	if s.err != nil {
		return nil, s.calls, s.err
	}
	return s.fields, s.calls, nil
}

const leaseText = "The tenant shall pay monthly rent of $1,500.00 to the landlord. " +
	"No pets are allowed on the premises without written consent."

func TestProcessClassifiesAllClauses(t *testing.T) {
	orch := NewOrchestrator(&stubClassifier{}, nil, nil, Options{MinClauseLength: 10}, nil)
	res, err := orch.Process(context.Background(), "lease.txt", leaseText)
	require.NoError(t, err)

	require.NotZero(t, res.TotalClauses)
	assert.Len(t, res.Document.Clauses, res.TotalClauses)
	for _, c := range res.Document.Clauses {
		assert.True(t, c.Classified)
		assert.NotEmpty(t, c.Type)
	}
	assert.Equal(t, constants.RentPayment, res.Document.Clauses[0].Type)
}

func TestProcessEmptyDocument(t *testing.T) {
	orch := NewOrchestrator(&stubClassifier{}, nil, nil, Options{}, nil)
	for _, text := range []string{"", "   ", "\n\n\t"} {
		_, err := orch.Process(context.Background(), "empty.txt", text)
		require.Error(t, err)
		assert.True(t, errors.Is(err, common.ErrInvalidInput))
	}
}

func TestProcessUnfittedClassifierAborts(t *testing.T) {
	orch := NewOrchestrator(&stubClassifier{unfitted: true}, nil, nil, Options{MinClauseLength: 10}, nil)
	_, err := orch.Process(context.Background(), "lease.txt", leaseText)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrNotFitted))
}

func TestProcessClauseFailureDegradesToOther(t *testing.T) {
	orch := NewOrchestrator(&stubClassifier{failOn: "pets"}, nil, nil, Options{MinClauseLength: 10}, nil)
	res, err := orch.Process(context.Background(), "lease.txt", leaseText)
	require.NoError(t, err)

	var degraded *entity.Clause
	for i := range res.Document.Clauses {
		if strings.Contains(res.Document.Clauses[i].Text, "pets") {
			degraded = &res.Document.Clauses[i]
		}
	}
	require.NotNil(t, degraded)
	assert.Equal(t, constants.Other, degraded.Type)
	assert.Zero(t, degraded.Confidence)
	assert.True(t, degraded.Classified)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "could not be classified")
}

func TestProcessExtractionDisabled(t *testing.T) {
	ext := &stubExtractor{fields: []entity.ExtractedField{{FieldID: "f1"}}}
	orch := NewOrchestrator(&stubClassifier{}, ext, nil, Options{MinClauseLength: 10, ExtractEnabled: false}, nil)
	res, err := orch.Process(context.Background(), "lease.txt", leaseText)
	require.NoError(t, err)

	assert.False(t, res.FieldExtractionEnabled)
	assert.Empty(t, res.Fields)
	assert.Zero(t, res.TotalFields)
	assert.Zero(t, res.APICallsMade)
}

func TestProcessDisabledMatchesClassificationOnlyRun(t *testing.T) {
	on := NewOrchestrator(&stubClassifier{}, &stubExtractor{}, nil, Options{MinClauseLength: 10, ExtractEnabled: true}, nil)
	off := NewOrchestrator(&stubClassifier{}, &stubExtractor{}, nil, Options{MinClauseLength: 10, ExtractEnabled: false}, nil)

	withFields, err := on.Process(context.Background(), "lease.txt", leaseText)
	require.NoError(t, err)
	withoutFields, err := off.Process(context.Background(), "lease.txt", leaseText)
	require.NoError(t, err)

	assert.Equal(t, withFields.TotalClauses, withoutFields.TotalClauses)
}

func TestProcessExtractionSucceeds(t *testing.T) {
	ext := &stubExtractor{
		fields: []entity.ExtractedField{{FieldID: "f1", FieldName: "Tenant Name", Values: []string{"Jane Doe"}}},
		calls:  1,
	}
	orch := NewOrchestrator(&stubClassifier{}, ext, nil, Options{MinClauseLength: 10, ExtractEnabled: true}, nil)
	res, err := orch.Process(context.Background(), "lease.txt", leaseText)
	require.NoError(t, err)

	assert.True(t, res.FieldExtractionEnabled)
	assert.Equal(t, 1, res.TotalFields)
	assert.Equal(t, 1, res.APICallsMade)
}

func TestProcessExtractionFailureDegrades(t *testing.T) {
	ext := &stubExtractor{err: fmt.Errorf("exhausted: %w", common.ErrExternalService), calls: 3}
	orch := NewOrchestrator(&stubClassifier{}, ext, nil, Options{MinClauseLength: 10, ExtractEnabled: true}, nil)
	res, err := orch.Process(context.Background(), "lease.txt", leaseText)
	require.NoError(t, err, "classification results survive extraction failure")

	assert.False(t, res.FieldExtractionEnabled)
	assert.Empty(t, res.Fields)
	assert.Equal(t, 3, res.APICallsMade, "failed attempts are still counted")
	assert.NotZero(t, res.TotalClauses)
	require.Len(t, res.Warnings, 1)
}

// failing completer wired through the real extractor: api_calls_made must
// equal the configured attempt count when every retry fails.
func TestProcessRetryExhaustionCountsCalls(t *testing.T) {
	completer := &failingCompleter{}
	defs := []fields.Definition{{FieldID: "f1", FieldName: "Tenant Name", Mandatory: true}}
	ext := extract.New(completer, defs, extract.Options{
		Retry: common.RetryConfig{Attempts: 3, BackoffBase: time.Millisecond},
	}, nil)

	orch := NewOrchestrator(&stubClassifier{}, ext, nil, Options{MinClauseLength: 10, ExtractEnabled: true}, nil)
	res, err := orch.Process(context.Background(), "lease.txt", leaseText)
	require.NoError(t, err)

	assert.False(t, res.FieldExtractionEnabled)
	assert.Equal(t, 3, res.APICallsMade)
	assert.Equal(t, 3, completer.calls)
}

type failingCompleter struct{ calls int }

func (f *failingCompleter) Complete(context.Context, string, string) (string, error) {
	f.calls++
	return "", fmt.Errorf("service down: %w", common.ErrExternalService)
}

func (f *failingCompleter) Models() []string { return []string{"stub"} }

func TestProcessSingleClauseDegradation(t *testing.T) {
	orch := NewOrchestrator(&stubClassifier{}, nil, nil, Options{MinClauseLength: 100}, nil)
	res, err := orch.Process(context.Background(), "tiny.txt", "a b c")
	require.NoError(t, err)
	require.Equal(t, 1, res.TotalClauses)
	assert.Equal(t, "a b c", res.Document.Clauses[0].Text)
}

func TestProcessBatchIsolatesFailures(t *testing.T) {
	orch := NewOrchestrator(&stubClassifier{}, nil, nil, Options{MinClauseLength: 10}, nil)
	items := []Item{
		{Name: "good.txt", Text: leaseText},
		{Name: "empty.txt", Text: "   "},
		{Name: "also-good.txt", Text: "Rent is due monthly on the first day."},
	}
	results := orch.ProcessBatch(context.Background(), items, 2)
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.NotNil(t, results[0].Result)
	assert.Equal(t, "good.txt", results[0].Name)

	require.Error(t, results[1].Err)
	assert.True(t, errors.Is(results[1].Err, common.ErrInvalidInput))

	assert.NoError(t, results[2].Err)
	assert.NotNil(t, results[2].Result)
}

func TestProcessTypeIDFromMapping(t *testing.T) {
	mapping := testMapping(t)
	orch := NewOrchestrator(&stubClassifier{}, nil, mapping, Options{MinClauseLength: 10}, nil)
	res, err := orch.Process(context.Background(), "lease.txt", "The tenant shall pay monthly rent of $1,500.00 promptly.")
	require.NoError(t, err)
	require.NotEmpty(t, res.Document.Clauses)
	assert.Equal(t, "id-rent", res.Document.Clauses[0].TypeID)
}

func testMapping(t *testing.T) *fields.ClauseMapping {
	t.Helper()
	return fields.NewClauseMapping(map[string]string{"id-rent": "Rent Payment"})
}
