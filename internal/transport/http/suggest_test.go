package httptransport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"whisperwall/backend/internal/config"
	"whisperwall/backend/internal/service"
)

func suggestRouter(upstreamURL string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewSuggestService(config.SuggestConfig{
		APIKey:  "test-key",
		BaseURL: upstreamURL,
		Model:   "command-r-plus",
		Timeout: time.Second,
	}, zap.NewNop())
	handler := NewSuggestHandler(svc, zap.NewNop())

	r := gin.New()
	r.POST("/api/suggest-messages", handler.Suggest)
	return r
}

func TestSuggestSuccess(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"generations": []map[string]string{{"text": "One?||Two?||Three?"}},
		})
	}))
	defer upstream.Close()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/suggest-messages", nil)
	suggestRouter(upstream.URL).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "One?||Two?||Three?", body["questions"])
}

func TestSuggestUpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer upstream.Close()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/suggest-messages", nil)
	suggestRouter(upstream.URL).ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)

	// Failure uses the proxy's {error} envelope, not the shared one
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Error generating suggestions", body["error"])
	assert.NotContains(t, body, "success")
}
