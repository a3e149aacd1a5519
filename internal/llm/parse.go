package llm

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/cube-dp/lease-classifier/internal/common"
	"github.com/cube-dp/lease-classifier/internal/fields"
)

// extractionSchema constrains the reply shape before any values are trusted:
// an object keyed by clause index, each value an object of field name to
// string or number.
var extractionSchema = jsonschema.MustCompileString("extraction.json", `{
	"type": "object",
	"patternProperties": {
		"^[0-9]+$": {
			"type": "object",
			"additionalProperties": {"type": ["string", "number", "integer"]}
		}
	},
	"additionalProperties": false
}`)

// ParseExtractionResponse turns the raw model reply into ordered field
// values. Code fences are stripped, the payload is validated against the
// extraction schema, and values are read out clause by clause (ascending
// index) preserving each clause object's field order. Any structural
// problem returns ErrMalformedResponse.
func ParseExtractionResponse(content string) ([]fields.Value, error) {
	payload := StripCodeFences(content)
	if strings.TrimSpace(payload) == "" {
		return nil, fmt.Errorf("%w: empty response body", common.ErrMalformedResponse)
	}

	var generic any
	if err := json.Unmarshal([]byte(payload), &generic); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedResponse, err)
	}
	if err := extractionSchema.Validate(generic); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedResponse, err)
	}

	byClause, err := decodeOrdered(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedResponse, err)
	}

	indices := make([]int, 0, len(byClause))
	for idx := range byClause {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	var out []fields.Value
	for _, idx := range indices {
		out = append(out, byClause[idx]...)
	}
	return out, nil
}

// StripCodeFences removes a surrounding markdown code fence, with or
// without a language tag, from a model reply.
func StripCodeFences(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 && !strings.HasPrefix(s, "{") {
		// drop the language tag line ("json")
		s = s[i+1:]
	}
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// decodeOrdered walks the JSON tokens so each clause object's field order
// survives; unmarshalling into maps would shuffle it.
func decodeOrdered(payload string) (map[int][]fields.Value, error) {
	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected top-level object")
	}

	out := make(map[int][]fields.Value)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := keyTok.(string)
		idx, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("clause key %q is not an index", key)
		}

		values, err := decodeClauseObject(dec)
		if err != nil {
			return nil, err
		}
		out[idx] = append(out[idx], values...)
	}
	// consume closing '}'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeClauseObject(dec *json.Decoder) ([]fields.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected clause object")
	}

	var values []fields.Value
	for dec.More() {
		nameTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, _ := nameTok.(string)

		valTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch v := valTok.(type) {
		case string:
			values = append(values, fields.Value{FieldName: name, Value: v})
		case json.Number:
			values = append(values, fields.Value{FieldName: name, Value: v.String()})
		default:
			return nil, fmt.Errorf("field %q has unsupported value type", name)
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return values, nil
}
