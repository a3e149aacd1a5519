package openai

import (
	"fmt"
	"log/slog"

	"github.com/cube-dp/lease-classifier/internal/common"
	"github.com/cube-dp/lease-classifier/internal/llm"
)

// NewCompleter builds the Completer selected by cfg.Provider.
func NewCompleter(cfg common.Config, logger *slog.Logger) (llm.Completer, error) {
	switch cfg.Provider {
	case "openai":
		return NewClient(FromAppConfig(cfg.OpenAI), logger), nil
	case "azure":
		return NewAzureClient(cfg.Azure, cfg.OpenAI.Temperature, cfg.OpenAI.Timeout, logger), nil
	default:
		return nil, common.NewAppError("CONFIG_ERROR",
			fmt.Sprintf("unknown provider %q", cfg.Provider), common.ErrInvalidInput)
	}
}
