package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// OracleCommunicationError covers everything between sending the request
// and getting a non-empty answer back: transport failures, non-2xx
// statuses, and bodies without a usable choice.
type OracleCommunicationError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *OracleCommunicationError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("oracle communication error: status %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
	case e.Err != nil:
		return fmt.Sprintf("oracle communication error: %s", e.Err)
	default:
		return "oracle communication error"
	}
}

func (e *OracleCommunicationError) Unwrap() error {
	return e.Err
}

type naturalMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type naturalRequest struct {
	Model       string           `json:"model"`
	Messages    []naturalMessage `json:"messages"`
	Temperature float64          `json:"temperature"`
}

type naturalResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Natural talks to an OpenAI-compatible chat completions endpoint.
type Natural struct {
	config *Config
	client *http.Client
}

func NewNatural(config *Config, client *http.Client) *Natural {
	if client == nil {
		client = http.DefaultClient
	}
	return &Natural{config: config, client: client}
}

// Complete sends the system prompt and the user text as two messages and
// returns the first choice's content untouched.
func (n *Natural) Complete(ctx context.Context, systemPrompt string, userText string) (string, error) {
	apiKey, err := n.config.GetOpenAIApiKey()
	if err != nil {
		return "", fmt.Errorf("(*Natural).Complete: %w", err)
	}

	reqBodyBytes, err := json.Marshal(naturalRequest{
		Model: n.config.GetOpenAIModel(),
		Messages: []naturalMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userText},
		},
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("(*Natural).Complete: failed to marshal request body: %w", err)
	}

	url := n.config.GetOpenAIBaseURL() + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBodyBytes))
	if err != nil {
		return "", fmt.Errorf("(*Natural).Complete: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	slog.Debug("oracle request", "url", url, "model", n.config.GetOpenAIModel())
	resp, err := n.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("(*Natural).Complete: %w", &OracleCommunicationError{Err: err})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("(*Natural).Complete: %w", &OracleCommunicationError{Err: err})
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("(*Natural).Complete: %w", &OracleCommunicationError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
		})
	}

	var respBody naturalResponse
	if err := json.Unmarshal(body, &respBody); err != nil {
		return "", fmt.Errorf("(*Natural).Complete: %w", &OracleCommunicationError{
			Err: fmt.Errorf("failed to unmarshal response: %w", err),
		})
	}
	if len(respBody.Choices) == 0 {
		return "", fmt.Errorf("(*Natural).Complete: %w", &OracleCommunicationError{
			Err: fmt.Errorf("no choices"),
		})
	}
	content := respBody.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("(*Natural).Complete: %w", &OracleCommunicationError{
			Err: fmt.Errorf("no content"),
		})
	}
	return content, nil
}
