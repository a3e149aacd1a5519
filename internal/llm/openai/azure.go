package openai

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cube-dp/lease-classifier/internal/common"
	"github.com/cube-dp/lease-classifier/internal/llm"
)

// AzureClient implements llm.Completer against Azure OpenAI deployments.
// Each configured model maps to its own endpoint, deployment and key.
type AzureClient struct {
	cfg        common.AzureConfig
	temp       float32
	httpClient *http.Client
	log        *slog.Logger
}

func NewAzureClient(cfg common.AzureConfig, temperature float32, timeout time.Duration, logger *slog.Logger) *AzureClient {
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2024-02-15-preview"
	}
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AzureClient{
		cfg:        cfg,
		temp:       temperature,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger,
	}
}

func (c *AzureClient) Complete(ctx context.Context, prompt, model string) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	if model == "" {
		model = c.cfg.DefaultModel
	}
	mc, ok := c.cfg.Models[model]
	if !ok {
		return "", common.NewAppError("CONFIG_ERROR",
			fmt.Sprintf("azure model %q is not configured", model), common.ErrInvalidInput)
	}
	apiVersion := mc.APIVersion
	if apiVersion == "" {
		apiVersion = c.cfg.APIVersion
	}

	c.log.Info("llm.complete.start",
		"req_id", rid,
		"provider", "azure",
		"model", model,
		"deployment", mc.Deployment,
		"prompt_len", len(prompt),
	)

	body := map[string]any{
		"temperature":     c.temp,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": llm.SystemPrompt},
			{"role": "user", "content": prompt},
		},
	}

	endpoint := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		strings.TrimRight(mc.Endpoint, "/"), mc.Deployment, apiVersion)
	raw, httpErr := postJSON(ctx, c.httpClient, endpoint, map[string]string{"api-key": mc.APIKey}, body, c.log)
	if httpErr != nil {
		c.log.Error("llm.complete.http_error",
			"req_id", rid, "error", httpErr,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", common.WrapError(common.ErrExternalService, httpErr)
	}

	content, err := chatContent(raw)
	if err != nil {
		c.log.Error("llm.complete.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", err
	}

	c.log.Info("llm.complete.ok",
		"req_id", rid,
		"content_len", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}

// Models lists the configured deployment names, sorted.
func (c *AzureClient) Models() []string {
	out := make([]string, 0, len(c.cfg.Models))
	for name := range c.cfg.Models {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
