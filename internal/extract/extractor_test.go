package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cube-dp/lease-classifier/internal/common"
	"github.com/cube-dp/lease-classifier/internal/entity"
	"github.com/cube-dp/lease-classifier/internal/fields"
)

// stubCompleter scripts each completion call: responses are consumed in
// order, and err (if set) fires on every call.
type stubCompleter struct {
	responses []string
	err       error
	calls     int
	prompts   []string
}

func (s *stubCompleter) Complete(_ context.Context, prompt, _ string) (string, error) {
	s.calls++
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	if len(s.responses) == 0 {
		return "{}", nil
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

func (s *stubCompleter) Models() []string { return []string{"stub"} }

var testDefs = []fields.Definition{
	{FieldID: "f1", FieldName: "Tenant Name", Mandatory: true},
	{FieldID: "f2", FieldName: "Monthly Rent Amount", Priority: fields.PriorityHigh},
}

func fastRetry(attempts int) common.RetryConfig {
	return common.RetryConfig{Attempts: attempts, BackoffBase: time.Millisecond}
}

func clausesOfSize(n int) []entity.Clause {
	out := make([]entity.Clause, n)
	for i := range out {
		out[i] = entity.Clause{Index: i, Text: fmt.Sprintf("Clause %d mentions tenant JANE DOE.", i)}
	}
	return out
}

func TestExtractSingleBatch(t *testing.T) {
	stub := &stubCompleter{responses: []string{`{"0": {"Tenant Name": "JANE DOE"}}`}}
	e := New(stub, testDefs, Options{Retry: fastRetry(3)}, nil)

	out, calls, err := e.Extract(context.Background(), clausesOfSize(2))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	require.Len(t, out, 1)
	assert.Equal(t, "f1", out[0].FieldID)
	assert.Equal(t, []string{"JANE DOE"}, out[0].Values)
	assert.Equal(t, []int{0, 1}, out[0].ClauseIndices)
}

func TestExtractBatchesBySize(t *testing.T) {
	stub := &stubCompleter{}
	e := New(stub, testDefs, Options{BatchSize: 10, Retry: fastRetry(3)}, nil)

	_, calls, err := e.Extract(context.Background(), clausesOfSize(25))
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	require.Len(t, stub.prompts, 3)
	assert.Contains(t, stub.prompts[0], "Clause Index: 0")
	assert.Contains(t, stub.prompts[1], "Clause Index: 10")
	assert.Contains(t, stub.prompts[2], "Clause Index: 24")
}

func TestExtractNoClauses(t *testing.T) {
	stub := &stubCompleter{}
	e := New(stub, testDefs, Options{Retry: fastRetry(3)}, nil)

	out, calls, err := e.Extract(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, calls)
	assert.Empty(t, out)
}

func TestExtractRetriesServiceErrors(t *testing.T) {
	stub := &stubCompleter{err: fmt.Errorf("boom: %w", common.ErrExternalService)}
	e := New(stub, testDefs, Options{Retry: fastRetry(3)}, nil)

	_, calls, err := e.Extract(context.Background(), clausesOfSize(1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrExternalService))
	assert.Equal(t, 3, calls, "every attempt counts, including the failed ones")
}

func TestExtractRetriesMalformedResponses(t *testing.T) {
	stub := &stubCompleter{responses: []string{
		"this is not json",
		`{"0": {"Tenant Name": "JANE DOE"}}`,
	}}
	e := New(stub, testDefs, Options{Retry: fastRetry(3)}, nil)

	out, calls, err := e.Extract(context.Background(), clausesOfSize(1))
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	require.Len(t, out, 1)
	assert.Equal(t, []string{"JANE DOE"}, out[0].Values)
}

func TestExtractDoesNotRetryInvalidInput(t *testing.T) {
	stub := &stubCompleter{err: fmt.Errorf("bad model: %w", common.ErrInvalidInput)}
	e := New(stub, testDefs, Options{Retry: fastRetry(5)}, nil)

	_, calls, err := e.Extract(context.Background(), clausesOfSize(1))
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestExtractTruncatesLongClauseText(t *testing.T) {
	stub := &stubCompleter{}
	e := New(stub, testDefs, Options{MaxPromptText: 50, Retry: fastRetry(3)}, nil)

	long := entity.Clause{Index: 0, Text: strings.Repeat("rent ", 100)}
	_, _, err := e.Extract(context.Background(), []entity.Clause{long})
	require.NoError(t, err)
	require.Len(t, stub.prompts, 1)
	assert.NotContains(t, stub.prompts[0], strings.Repeat("rent ", 30))
}

func TestExtractTruncatesAtRuneBoundary(t *testing.T) {
	stub := &stubCompleter{}
	// 50 bytes falls mid-rune for a three-byte rune sequence
	e := New(stub, testDefs, Options{MaxPromptText: 50, Retry: fastRetry(3)}, nil)

	long := entity.Clause{Index: 0, Text: strings.Repeat("€", 30)}
	_, _, err := e.Extract(context.Background(), []entity.Clause{long})
	require.NoError(t, err)
	require.Len(t, stub.prompts, 1)
	assert.True(t, utf8.ValidString(stub.prompts[0]))
	assert.Contains(t, stub.prompts[0], strings.Repeat("€", 16))
	assert.NotContains(t, stub.prompts[0], strings.Repeat("€", 17))
}
