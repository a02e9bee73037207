package dalle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/haojie06/dallebot/internal/options"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient("sk-test", server.URL+"/v1")
}

func TestGenerate(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/images/generations", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"created": 1, "data": [{"url": "https://img/1.png", "revised_prompt": "a fluffy cat"}]}`))
	})

	result, err := client.Generate(context.Background(), options.GenerationRequest{
		Prompt:  "a cat",
		Model:   options.ModelDallE3,
		Quality: options.QualityHD,
		Size:    "1024x1024",
		Count:   1,
		Style:   options.StyleVivid,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://img/1.png"}, result.URLs)
	assert.Equal(t, "a fluffy cat", result.RevisedPrompt)

	assert.Equal(t, "a cat", body["prompt"])
	assert.Equal(t, "dall-e-3", body["model"])
	assert.Equal(t, "hd", body["quality"])
	assert.Equal(t, "vivid", body["style"])
	assert.Equal(t, "url", body["response_format"])
}

func TestGenerateUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"message": "Your request was rejected by the safety system.", "type": "invalid_request_error", "code": "content_policy_violation"}}`))
	})

	_, err := client.Generate(context.Background(), options.GenerationRequest{Prompt: "x", Model: "dall-e-3", Quality: "hd", Size: "1024x1024", Count: 1})
	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, "generate", upstream.Op)
	assert.Equal(t, "Your request was rejected by the safety system.", err.Error())
}

func TestGenerateEmptyData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"created": 1, "data": []}`))
	})

	_, err := client.Generate(context.Background(), options.GenerationRequest{Prompt: "x", Count: 1})
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestCreateVariation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/images/variations", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "4", r.FormValue("n"))
		assert.Equal(t, "1024x1024", r.FormValue("size"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"created": 1, "data": [{"url": "https://img/a.png"}, {"url": "https://img/b.png"}]}`))
	})

	urls, err := client.CreateVariation(context.Background(), []byte("png bytes"), "dall-e-2", 4, "1024x1024")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://img/a.png", "https://img/b.png"}, urls)
}

func TestModerate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/moderations", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "modr-1", "model": "text-moderation-007", "results": [{"flagged": false, "categories": {}, "category_scores": {"hate": 0.01, "violence": 0.26}}]}`))
	})

	flagged, scores, err := client.Moderate(context.Background(), "a knight")
	require.NoError(t, err)
	assert.False(t, flagged)
	assert.InDelta(t, 0.26, scores["violence"], 1e-6)
	assert.InDelta(t, 0.01, scores["hate"], 1e-6)
}
