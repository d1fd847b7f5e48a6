// Package gemini is a thin HTTP client for the Google Generative Language
// API, covering the two calls the pipeline needs: text embedding and chat
// completion. Wire formats stay inside this package; callers see plain
// vectors and strings plus classifiable errors.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Options configures a Client. Zero values fall back to sensible defaults.
type Options struct {
	APIKey         string
	BaseURL        string
	EmbeddingModel string
	ChatModel      string
	Temperature    float64
	MaxTokens      int
	Timeout        time.Duration
}

type Client struct {
	opts       Options
	httpClient *http.Client
}

func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.EmbeddingModel == "" {
		opts.EmbeddingModel = "embedding-001"
	}
	if opts.ChatModel == "" {
		opts.ChatModel = "gemini-1.5-flash"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	return &Client{
		opts:       opts,
		httpClient: &http.Client{Timeout: opts.Timeout},
	}
}

type embedRequest struct {
	Model   string  `json:"model"`
	Content content `json:"content"`
}

type embedResponse struct {
	Embedding struct {
		Values []float64 `json:"values"`
	} `json:"embedding"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Embed returns the embedding vector for a piece of text. Used for both
// queries and documents; the provider draws no distinction.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	req := embedRequest{
		Model:   "models/" + c.opts.EmbeddingModel,
		Content: content{Parts: []part{{Text: text}}},
	}

	var resp embedResponse
	url := fmt.Sprintf("%s/models/%s:embedContent", c.opts.BaseURL, c.opts.EmbeddingModel)
	if err := c.post(ctx, url, req, &resp); err != nil {
		return nil, err
	}

	if len(resp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("embedding response contained no values")
	}
	return resp.Embedding.Values, nil
}

// Complete runs a chat completion with a system instruction and a user
// message, returning the first candidate's text.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	req := generateRequest{
		Contents:          []content{{Role: "user", Parts: []part{{Text: user}}}},
		SystemInstruction: &content{Parts: []part{{Text: system}}},
		GenerationConfig: &generationConfig{
			Temperature:     c.opts.Temperature,
			MaxOutputTokens: c.opts.MaxTokens,
		},
	}

	var resp generateResponse
	url := fmt.Sprintf("%s/models/%s:generateContent", c.opts.BaseURL, c.opts.ChatModel)
	if err := c.post(ctx, url, req, &resp); err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("completion response contained no candidates")
	}

	var text string
	for _, p := range resp.Candidates[0].Content.Parts {
		text += p.Text
	}
	return text, nil
}

func (c *Client) post(ctx context.Context, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.opts.APIKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return parseAPIError(httpResp.StatusCode, respBody)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
