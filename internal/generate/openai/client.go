package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"sitecopy-backend/internal/content"
	"sitecopy-backend/internal/generate"
)

const apiURL = "https://api.openai.com/v1/chat/completions"

// Client implements generate.Generator using OpenAI Chat Completions.
type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient constructs a new OpenAI client.
func NewClient(apiKey, model string) (*Client, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for OpenAI")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	timeout := 120 * time.Second
	if raw := strings.TrimSpace(os.Getenv("OPENAI_TIMEOUT_SECONDS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			timeout = time.Duration(parsed) * time.Second
		}
	}
	return &Client{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float32      `json:"temperature,omitempty"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Generate calls the chat API and extracts the candidate payload. A response
// whose payload cannot be decoded gets one repair round-trip before the
// parse error is surfaced to the caller.
func (c *Client) Generate(ctx context.Context, spec generate.PromptSpec) (content.Candidate, error) {
	messages := generate.BuildMessages(spec)
	raw, err := c.completeOnce(ctx, messages)
	if err != nil {
		return content.Candidate{}, err
	}

	candidate, extractErr := generate.ExtractCandidate(raw)
	if extractErr == nil {
		return candidate, nil
	}

	fixMessages := append(messages, generate.Message{
		Role: "user",
		Content: "Your previous response could not be parsed as the required JSON object. " +
			"Resend ONLY the JSON object, no prose, no markdown fences. Previous response:\n" + raw,
	})
	raw, err = c.completeOnce(ctx, fixMessages)
	if err != nil {
		return content.Candidate{}, err
	}
	return generate.ExtractCandidate(raw)
}

func (c *Client) completeOnce(ctx context.Context, messages []generate.Message) (string, error) {
	temp := float32(0.7)
	reqMessages := make([]chatMessage, 0, len(messages))
	for _, m := range messages {
		reqMessages = append(reqMessages, chatMessage{Role: m.Role, Content: m.Content})
	}
	reqBody := chatRequest{
		Model:       c.model,
		Messages:    reqMessages,
		Temperature: &temp,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", fmt.Errorf("openai request timeout: %w", err)
		}
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("openai response parse: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("openai error: %s (%s)", parsed.Error.Message, parsed.Error.Type)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openai response missing choices")
	}

	text := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("openai response empty content")
	}
	logUsage(c.model, parsed.Usage)
	return text, nil
}

func logUsage(model string, usage *struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}) {
	if usage == nil {
		log.Printf("llm response model=%s", model)
		return
	}
	log.Printf("llm response model=%s prompt_tokens=%d completion_tokens=%d total_tokens=%d",
		model, usage.PromptTokens, usage.CompletionTokens, usage.TotalTokens)
}

var _ generate.Generator = (*Client)(nil)
