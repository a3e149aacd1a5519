package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SystemPrompt is the fixed system message for extraction requests.
const SystemPrompt = "You are a legal document analyzer. Extract specific field values from lease clauses. Return only valid JSON."

// PromptFields carries the field names for one extraction request, already
// split by priority. Mandatory names are repeated in their priority group.
type PromptFields struct {
	Mandatory    []string
	HighPriority []string
	Normal       []string
}

// BuildExtractionPrompt renders the batched extraction request: the clause
// texts with their stable indices, the field lists by priority, and the
// required response shape (a JSON object keyed by clause index).
func BuildExtractionPrompt(batch []ClausePrompt, f PromptFields) string {
	var clauses strings.Builder
	for _, c := range batch {
		fmt.Fprintf(&clauses, "\n---\nClause Index: %d\nClause Type: %s\nText: %s\n", c.Index, c.Type, c.Text)
	}

	high := make([]string, 0, len(f.HighPriority))
	for _, name := range f.HighPriority {
		if !contains(f.Mandatory, name) {
			high = append(high, name)
		}
	}

	var b strings.Builder
	b.WriteString("Analyze the following lease clauses and extract relevant field values from each.\n")
	b.WriteString(clauses.String())
	b.WriteString("\nMANDATORY fields (MUST extract if found anywhere in the text):\n")
	b.WriteString(mustJSON(f.Mandatory))
	b.WriteString("\n\nHIGH PRIORITY fields to extract (focus on these after mandatory):\n")
	b.WriteString(mustJSON(high))
	b.WriteString("\n\nOTHER fields to extract (extract if found in text):\n")
	b.WriteString(mustJSON(f.Normal))
	b.WriteString(`

Instructions:
1. MANDATORY fields MUST be extracted if they exist in the text
2. Extract ALL fields that have clear values mentioned in the text
3. Give priority to HIGH PRIORITY fields - ensure these are extracted if present
4. Also extract OTHER fields if their values are found in the text
5. Return a JSON object where keys are clause indices (as strings) and values are objects with extracted field names and values
6. If a field value is not found in a clause, do not include it
7. For monetary values, extract the numeric amount and currency symbol (e.g., "$1500.00")
8. For dates, extract in the original format found in the text
9. Be precise and only extract explicitly stated information

Return ONLY a valid JSON object in this format:
{
  "0": {"Field Name": "value", ...},
  "1": {"Field Name": "value", ...},
  ...
}`)
	return b.String()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func mustJSON(list []string) string {
	if len(list) == 0 {
		return "[]"
	}
	b, _ := json.MarshalIndent(list, "", "  ")
	return string(b)
}
