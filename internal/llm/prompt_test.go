package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildExtractionPrompt(t *testing.T) {
	batch := []ClausePrompt{
		{Index: 0, Type: "rent_payment", Text: "Rent of $1500 is due monthly."},
		{Index: 3, Type: "pets", Text: "No pets allowed."},
	}
	pf := PromptFields{
		Mandatory:    []string{"Tenant Name"},
		HighPriority: []string{"Tenant Name", "Monthly Rent Amount"},
		Normal:       []string{"Renewal Option"},
	}
	prompt := BuildExtractionPrompt(batch, pf)

	assert.Contains(t, prompt, "Clause Index: 0")
	assert.Contains(t, prompt, "Clause Index: 3")
	assert.Contains(t, prompt, "Clause Type: rent_payment")
	assert.Contains(t, prompt, "Rent of $1500 is due monthly.")
	assert.Contains(t, prompt, "MANDATORY fields")
	assert.Contains(t, prompt, `"Tenant Name"`)
	assert.Contains(t, prompt, `"Monthly Rent Amount"`)
	assert.Contains(t, prompt, `"Renewal Option"`)
	assert.Contains(t, prompt, "Return ONLY a valid JSON object")

	// mandatory names are not repeated in the high-priority list
	require.Equal(t, 1, strings.Count(prompt, `"Tenant Name"`))
}

func TestBuildExtractionPromptEmptyFieldGroups(t *testing.T) {
	prompt := BuildExtractionPrompt([]ClausePrompt{{Index: 0, Type: "other", Text: "x"}}, PromptFields{})
	assert.Contains(t, prompt, "MANDATORY fields")
	assert.Contains(t, prompt, "[]")
}
