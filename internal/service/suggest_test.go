package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"whisperwall/backend/internal/config"
)

func newSuggestService(baseURL string) *SuggestService {
	return NewSuggestService(config.SuggestConfig{
		APIKey:  "test-key",
		BaseURL: baseURL,
		Model:   "command-r-plus",
		Timeout: 2 * time.Second,
	}, zap.NewNop())
}

func TestSuggest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"generations":[{"text":"What inspires you?|| What book changed your life? ||Where would you travel?"}]}`))
	}))
	defer server.Close()

	svc := newSuggestService(server.URL)
	questions, err := svc.Suggest(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"What inspires you?",
		"What book changed your life?",
		"Where would you travel?",
	}, questions)
}

func TestSuggestWithTopic(t *testing.T) {
	var gotPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotPrompt, _ = req["prompt"].(string)
		w.Write([]byte(`{"generations":[{"text":"a||b||c"}]}`))
	}))
	defer server.Close()

	svc := newSuggestService(server.URL)
	_, err := svc.Suggest(context.Background(), "travel")
	require.NoError(t, err)
	assert.Contains(t, gotPrompt, "travel")
}

func TestSuggestUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	svc := newSuggestService(server.URL)
	_, err := svc.Suggest(context.Background(), "")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestSuggestEmptyGeneration(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"generations":[{"text":"   "}]}`))
	}))
	defer server.Close()

	svc := newSuggestService(server.URL)
	_, err := svc.Suggest(context.Background(), "")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestSuggestUnreachable(t *testing.T) {
	svc := newSuggestService("http://127.0.0.1:1")
	_, err := svc.Suggest(context.Background(), "")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestParseQuestions(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, ParseQuestions("a||b"))
	assert.Equal(t, []string{"one"}, ParseQuestions(" one "))
	assert.Empty(t, ParseQuestions("||  ||"))
	assert.Empty(t, ParseQuestions(""))
}

func TestDefaultQuestions(t *testing.T) {
	assert.Len(t, DefaultQuestions, 3)
	for _, q := range DefaultQuestions {
		assert.NotEmpty(t, q)
	}
}
