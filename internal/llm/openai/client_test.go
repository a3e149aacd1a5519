package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cube-dp/lease-classifier/internal/common"
)

func chatServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.NotEmpty(t, body["messages"])

		w.WriteHeader(status)
		if status == http.StatusOK {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{
					{"message": map[string]any{"content": content}},
				},
			})
		}
	}))
}

func TestCompleteOK(t *testing.T) {
	srv := chatServer(t, http.StatusOK, `{"0": {"Tenant Name": "Jane Doe"}}`)
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL, Timeout: 5 * time.Second}, nil)
	content, err := c.Complete(context.Background(), "extract fields", "gpt-4o-mini")
	require.NoError(t, err)
	assert.Equal(t, `{"0": {"Tenant Name": "Jane Doe"}}`, content)
}

func TestCompleteServerError(t *testing.T) {
	srv := chatServer(t, http.StatusInternalServerError, "")
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL, Timeout: 5 * time.Second}, nil)
	_, err := c.Complete(context.Background(), "extract fields", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrExternalService))
}

func TestCompleteNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL, Timeout: 5 * time.Second}, nil)
	_, err := c.Complete(context.Background(), "extract fields", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrMalformedResponse))
}

func TestModels(t *testing.T) {
	c := NewClient(Config{APIKey: "k"}, nil)
	assert.Contains(t, c.Models(), "gpt-4o-mini")
}

func TestAzureModels(t *testing.T) {
	c := NewAzureClient(common.AzureConfig{
		Models: map[string]common.AzureModelConfig{
			"gpt-4o":  {},
			"gpt-4.1": {},
		},
	}, 0, 0, nil)
	assert.Equal(t, []string{"gpt-4.1", "gpt-4o"}, c.Models())
}

func TestAzureCompleteUnknownModel(t *testing.T) {
	c := NewAzureClient(common.AzureConfig{}, 0, 0, nil)
	_, err := c.Complete(context.Background(), "prompt", "missing-model")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidInput))
}

func TestAzureCompleteUsesDeploymentPath(t *testing.T) {
	var gotPath, gotKey, gotVersion string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("api-key")
		gotVersion = r.URL.Query().Get("api-version")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"content": "{}"}}},
		})
	}))
	defer srv.Close()

	c := NewAzureClient(common.AzureConfig{
		DefaultModel: "gpt-4.1",
		APIVersion:   "2024-02-15-preview",
		Models: map[string]common.AzureModelConfig{
			"gpt-4.1": {Endpoint: srv.URL, APIKey: "azure-key", Deployment: "gpt-41"},
		},
	}, 0, 5*time.Second, nil)

	content, err := c.Complete(context.Background(), "prompt", "")
	require.NoError(t, err)
	assert.Equal(t, "{}", content)
	assert.Equal(t, "/openai/deployments/gpt-41/chat/completions", gotPath)
	assert.Equal(t, "azure-key", gotKey)
	assert.Equal(t, "2024-02-15-preview", gotVersion)
}
