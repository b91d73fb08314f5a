package summarize

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/beam-cloud/emailreader/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAIModel_DisabledWithoutKey(t *testing.T) {
	assert.Nil(t, NewOpenAIModel(types.ModelConfig{}))
}

func TestOpenAIModel_Generate(t *testing.T) {
	var (
		gotAuth  string
		gotModel string
		gotText  string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotModel = body.Model
		if len(body.Messages) == 1 {
			gotText = body.Messages[0].Content
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "cmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gemini-2.0-flash",
			"choices": [{
				"index": 0,
				"finish_reason": "stop",
				"message": {"role": "assistant", "content": "  A short summary.  "}
			}]
		}`))
	}))
	defer srv.Close()

	model := NewOpenAIModel(types.ModelConfig{APIKey: "secret", BaseURL: srv.URL + "/"})
	require.NotNil(t, model)

	out, err := model.Generate(context.Background(), "Summarize this")
	require.NoError(t, err)
	assert.Equal(t, "A short summary.", out)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, DefaultModel, gotModel)
	assert.Equal(t, "Summarize this", gotText)
}

func TestOpenAIModel_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`))
	}))
	defer srv.Close()

	model := NewOpenAIModel(types.ModelConfig{APIKey: "k", BaseURL: srv.URL + "/", Name: "custom"})
	_, err := model.Generate(context.Background(), "hi")
	assert.ErrorIs(t, err, errEmptyCompletion)
}

func TestOpenAIModel_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"bad key"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	model := NewOpenAIModel(types.ModelConfig{APIKey: "k", BaseURL: srv.URL + "/"})
	_, err := model.Generate(context.Background(), "hi")
	assert.Error(t, err)
}
