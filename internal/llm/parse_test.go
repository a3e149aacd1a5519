package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cube-dp/lease-classifier/internal/common"
	"github.com/cube-dp/lease-classifier/internal/fields"
)

func TestParseExtractionResponse(t *testing.T) {
	content := `{
		"0": {"Tenant Name": "John Smith", "Monthly Rent Amount": "$1500"},
		"1": {"Property Address": "12 Main St"}
	}`
	values, err := ParseExtractionResponse(content)
	require.NoError(t, err)
	assert.Equal(t, []fields.Value{
		{FieldName: "Tenant Name", Value: "John Smith"},
		{FieldName: "Monthly Rent Amount", Value: "$1500"},
		{FieldName: "Property Address", Value: "12 Main St"},
	}, values)
}

func TestParseExtractionResponseKeepsFieldOrder(t *testing.T) {
	content := `{"0": {"Zebra": "z", "Alpha": "a", "Middle": "m"}}`
	values, err := ParseExtractionResponse(content)
	require.NoError(t, err)
	require.Len(t, values, 3)
	assert.Equal(t, "Zebra", values[0].FieldName)
	assert.Equal(t, "Alpha", values[1].FieldName)
	assert.Equal(t, "Middle", values[2].FieldName)
}

func TestParseExtractionResponseOrdersClausesNumerically(t *testing.T) {
	content := `{"10": {"B": "b"}, "2": {"A": "a"}}`
	values, err := ParseExtractionResponse(content)
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.Equal(t, "A", values[0].FieldName)
	assert.Equal(t, "B", values[1].FieldName)
}

func TestParseExtractionResponseWithCodeFence(t *testing.T) {
	content := "```json\n{\"0\": {\"Tenant Name\": \"Jane Doe\"}}\n```"
	values, err := ParseExtractionResponse(content)
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, "Jane Doe", values[0].Value)
}

func TestParseExtractionResponseStringifiesNumbers(t *testing.T) {
	content := `{"0": {"Monthly Rent Amount": 1500.5, "Lease Term Months": 12}}`
	values, err := ParseExtractionResponse(content)
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.Equal(t, "1500.5", values[0].Value)
	assert.Equal(t, "12", values[1].Value)
}

func TestParseExtractionResponseEmptyObject(t *testing.T) {
	values, err := ParseExtractionResponse(`{}`)
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestParseExtractionResponseMalformed(t *testing.T) {
	for _, content := range []string{
		"",
		"not json at all",
		`["a", "b"]`,
		`{"zero": {"Field": "v"}}`,
		`{"0": "not an object"}`,
		`{"0": {"Field": {"nested": true}}}`,
		`{"0": {"Field": null}}`,
	} {
		_, err := ParseExtractionResponse(content)
		require.Error(t, err, "content %q", content)
		assert.True(t, errors.Is(err, common.ErrMalformedResponse), "content %q", content)
	}
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFences(`{"a":1}`))
}
