package utils_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"nlcal/src-server/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNatural(t *testing.T, handler http.HandlerFunc) *utils.Natural {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_BASE_URL", server.URL+"/v1/")
	t.Setenv("OPENAI_MODEL", "test-model")
	return utils.NewNatural(utils.NewConfig(), server.Client())
}

func TestNaturalComplete(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		Temperature *float64 `json:"temperature"`
	}
	natural := newNatural(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"title\":\"x\"}"}}]}`))
	})

	content, err := natural.Complete(context.Background(), "system turn", "user turn")
	require.NoError(t, err)
	assert.Equal(t, `{"title":"x"}`, content)

	assert.Equal(t, "test-model", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "system turn", got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "user turn", got.Messages[1].Content)
	require.NotNil(t, got.Temperature)
	assert.Zero(t, *got.Temperature)
}

func TestNaturalBadStatus(t *testing.T) {
	natural := newNatural(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	})

	_, err := natural.Complete(context.Background(), "s", "u")
	var commErr *utils.OracleCommunicationError
	require.True(t, errors.As(err, &commErr))
	assert.Equal(t, http.StatusTooManyRequests, commErr.StatusCode)
	assert.Contains(t, commErr.Body, "rate limited")
}

func TestNaturalNoChoices(t *testing.T) {
	for name, body := range map[string]string{
		"empty choices": `{"choices":[]}`,
		"empty content": `{"choices":[{"message":{"content":"  "}}]}`,
		"not json":      `<html>gateway</html>`,
	} {
		t.Run(name, func(t *testing.T) {
			natural := newNatural(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})
			_, err := natural.Complete(context.Background(), "s", "u")
			var commErr *utils.OracleCommunicationError
			assert.True(t, errors.As(err, &commErr))
		})
	}
}

func TestNaturalTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_BASE_URL", server.URL)

	_, err := utils.NewNatural(utils.NewConfig(), nil).Complete(context.Background(), "s", "u")
	var commErr *utils.OracleCommunicationError
	require.True(t, errors.As(err, &commErr))
	assert.Zero(t, commErr.StatusCode)
	assert.Error(t, commErr.Err)
}

func TestNaturalMissingKeyMakesNoRequest(t *testing.T) {
	called := false
	natural := newNatural(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	t.Setenv("OPENAI_API_KEY", "")

	_, err := natural.Complete(context.Background(), "s", "u")
	var cfgErr *utils.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "OPENAI_API_KEY", cfgErr.Key)
	assert.False(t, called)
}
