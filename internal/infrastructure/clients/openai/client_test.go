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

	"github.com/firmatch/jobmatch-backend/internal/domain/providers"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &Client{
		apiKey:         "test-key",
		model:          "gpt-4o-mini",
		embeddingModel: "text-embedding-ada-002",
		baseURL:        server.URL,
		httpClient:     &http.Client{Timeout: 5 * time.Second},
	}
}

func chatResponse(content string) string {
	payload, _ := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	return string(payload)
}

func TestExtractPreferences_FullObject(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Write([]byte(chatResponse(`{"role":"audit","location":"boston","experience":"senior","salary":"120k"}`)))
	})

	prefs, err := client.ExtractPreferences(context.Background(), "senior audit jobs in boston paying 120k")
	require.NoError(t, err)
	require.NotNil(t, prefs.Role)
	assert.Equal(t, "audit", *prefs.Role)
	require.NotNil(t, prefs.Location)
	assert.Equal(t, "boston", *prefs.Location)
	require.NotNil(t, prefs.Experience)
	assert.Equal(t, "senior", *prefs.Experience)
	require.NotNil(t, prefs.Salary)
	assert.Equal(t, "120k", *prefs.Salary)
}

func TestExtractPreferences_StripsMarkdownFences(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatResponse("```json\n{\"role\":\"tax\",\"location\":null,\"experience\":null,\"salary\":null}\n```")))
	})

	prefs, err := client.ExtractPreferences(context.Background(), "tax jobs")
	require.NoError(t, err)
	require.NotNil(t, prefs.Role)
	assert.Equal(t, "tax", *prefs.Role)
	assert.Nil(t, prefs.Location)
}

func TestExtractPreferences_NonJSONContent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatResponse("I could not determine the preferences.")))
	})

	prefs, err := client.ExtractPreferences(context.Background(), "jobs")
	assert.Nil(t, prefs)
	assert.True(t, errors.Is(err, providers.ErrExtractionUnavailable))
}

func TestExtractPreferences_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.ExtractPreferences(context.Background(), "jobs")
	assert.True(t, errors.Is(err, providers.ErrExtractionUnavailable))
}

func TestEmbed_ReturnsVector(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		w.Write([]byte(`{"data":[{"embedding":[0.1,0.2,0.3]}]}`))
	})

	vector, err := client.Embed(context.Background(), "Title: Senior Auditor | Location: Boston")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vector)
}

func TestEmbed_EmptyData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	})

	_, err := client.Embed(context.Background(), "text")
	assert.True(t, errors.Is(err, providers.ErrEmbeddingUnavailable))
}

func TestEmbed_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Embed(context.Background(), "text")
	assert.True(t, errors.Is(err, providers.ErrEmbeddingUnavailable))
}

func TestParsePreferencesPayload(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantRole *string
		wantErr  bool
	}{
		{name: "partial object", payload: `{"role":"manager"}`, wantRole: strPtr("manager")},
		{name: "null role", payload: `{"role":null,"location":"ny"}`, wantRole: nil},
		{name: "wrong type ignored", payload: `{"role":42}`, wantRole: nil},
		{name: "blank string absent", payload: `{"role":"  "}`, wantRole: nil},
		{name: "literal null string absent", payload: `{"role":"null"}`, wantRole: nil},
		{name: "empty object", payload: `{}`, wantRole: nil},
		{name: "not an object", payload: `[1,2]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefs, err := parsePreferencesPayload([]byte(tt.payload))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantRole == nil {
				assert.Nil(t, prefs.Role)
			} else {
				require.NotNil(t, prefs.Role)
				assert.Equal(t, *tt.wantRole, *prefs.Role)
			}
		})
	}
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFences(`{"a":1}`))
}

func strPtr(s string) *string { return &s }
