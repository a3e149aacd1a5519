// Package llm defines the narrow request/response surface to the external
// language-model service and the parsing of its extraction replies.
package llm

import "context"

// Completer is the model-service collaborator. Implementations must be safe
// for concurrent use; the orchestrator's retry and degradation logic is
// exercised against substitutable stubs of this interface.
type Completer interface {
	// Complete sends a prompt to the named model and returns the raw text
	// of the reply.
	Complete(ctx context.Context, prompt, model string) (string, error)

	// Models lists the model identifiers this service accepts. Model
	// selection is validated against it before any extraction call.
	Models() []string
}

// ClausePrompt is the per-clause slice of an extraction request.
type ClausePrompt struct {
	Index int
	Type  string
	Text  string
}
