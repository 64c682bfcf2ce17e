package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Config holds the settings for an OpenAI-compatible endpoint. The chat
// model serves translation and answer synthesis; the embedding model turns
// chunk/query text into vectors.
type Config struct {
	BaseURL        string
	APIKey         string
	ChatModel      string
	EmbeddingModel string
	Temperature    float32
}

// Client is a process-wide handle to the LLM provider. It is stateless
// between calls and safe for concurrent use.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
}

// Complete performs a non-streaming chat completion with the configured
// temperature (0 by default, so repeated identical prompts are reproducible
// as far as the provider allows).
func (c *Client) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	reqBody := map[string]interface{}{
		"model":       c.cfg.ChatModel,
		"messages":    messages,
		"temperature": c.cfg.Temperature,
		"stream":      false,
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := c.postJSON(ctx, "/chat/completions", reqBody, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty llm choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// Embed returns the embedding vector for a single text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("embedding input is empty")
	}
	vectors, err := c.embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, fmt.Errorf("empty embedding in response")
	}
	return vectors[0], nil
}

// EmbedBatch returns one vector per input text, in input order.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	trimmed := make([]string, 0, len(texts))
	for _, t := range texts {
		if s := strings.TrimSpace(t); s != "" {
			trimmed = append(trimmed, s)
		}
	}
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("no non-empty texts for embedding")
	}
	vectors, err := c.embed(ctx, trimmed)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(trimmed) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d texts, got %d vectors", len(trimmed), len(vectors))
	}
	return vectors, nil
}

func (c *Client) embed(ctx context.Context, input interface{}) ([][]float32, error) {
	reqBody := map[string]interface{}{
		"model": c.cfg.EmbeddingModel,
		"input": input,
	}
	var parsed struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := c.postJSON(ctx, "/embeddings", reqBody, &parsed); err != nil {
		return nil, err
	}
	vectors := make([][]float32, len(parsed.Data))
	for i := range parsed.Data {
		vectors[i] = parsed.Data[i].Embedding
	}
	return vectors, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body interface{}, out interface{}) error {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal llm request failed: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("build llm request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("llm request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read llm response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("llm response status %d: %s", resp.StatusCode, string(raw))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse llm json failed: %w", err)
	}
	return nil
}
