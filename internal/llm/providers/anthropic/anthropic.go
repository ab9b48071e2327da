// Package anthropic implements the llm capabilities on the Anthropic Messages API.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/everstacklabs/fitplan/internal/httpclient"
	"github.com/everstacklabs/fitplan/internal/llm"
)

const (
	name             = "anthropic"
	defaultBaseURL   = "https://api.anthropic.com/v1"
	defaultModel     = "claude-sonnet-4-20250514"
	apiVersion       = "2023-06-01"
	defaultMaxTokens = 1024
)

func init() {
	llm.Register(name, func(cfg llm.Config) (llm.Provider, error) {
		return New(cfg)
	})
}

// Client implements llm.Provider using the Anthropic Messages API.
type Client struct {
	apiKey      string
	baseURL     string
	textModel   string
	visionModel string
	http        *httpclient.Client
}

// New creates a client for the Anthropic Messages API.
func New(cfg llm.Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic API key is required")
	}
	c := &Client{
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		textModel:   cfg.TextModel,
		visionModel: cfg.VisionModel,
		http: httpclient.New(
			httpclient.WithTimeout(cfg.Timeout),
			httpclient.WithRateLimit(cfg.RateLimit),
		),
	}
	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}
	if c.textModel == "" {
		c.textModel = defaultModel
	}
	if c.visionModel == "" {
		c.visionModel = c.textModel
	}
	return c, nil
}

func (c *Client) Name() string { return name }

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Temperature float64   `json:"temperature"`
	Messages    []message `json:"messages"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int64 `json:"input_tokens"`
		OutputTokens int64 `json:"output_tokens"`
	} `json:"usage"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// GenerateText implements llm.TextGenerator.
func (c *Client) GenerateText(ctx context.Context, req llm.TextRequest) (*llm.Response, error) {
	return c.send(ctx, messagesRequest{
		Model:       c.textModel,
		MaxTokens:   maxTokens(req.MaxTokens),
		System:      req.System,
		Temperature: req.Temperature,
		Messages: []message{
			{Role: "user", Content: []contentBlock{{Type: "text", Text: req.Prompt}}},
		},
	})
}

// GenerateVision implements llm.VisionGenerator. The Messages API has no
// detail hint, so req.Detail is ignored.
func (c *Client) GenerateVision(ctx context.Context, req llm.VisionRequest) (*llm.Response, error) {
	return c.send(ctx, messagesRequest{
		Model:       c.visionModel,
		MaxTokens:   maxTokens(req.MaxTokens),
		Temperature: req.Temperature,
		Messages: []message{
			{Role: "user", Content: []contentBlock{
				{Type: "image", Source: &imageSource{
					Type:      "base64",
					MediaType: req.Image.MIMEType,
					Data:      req.Image.Base64(),
				}},
				{Type: "text", Text: req.Instruction},
			}},
		},
	})
}

func (c *Client) send(ctx context.Context, body messagesRequest) (*llm.Response, error) {
	headers := map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": apiVersion,
	}

	resp, err := c.http.PostJSON(ctx, c.baseURL+"/messages", headers, body)
	if err != nil {
		var se *httpclient.StatusError
		if errors.As(err, &se) {
			return nil, &llm.APIError{Provider: name, StatusCode: se.StatusCode, Message: errorMessage(se.Body)}
		}
		return nil, fmt.Errorf("sending request: %w", err)
	}

	var mr messagesResponse
	if err := json.Unmarshal(resp.Body, &mr); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if mr.Error != nil {
		return nil, &llm.APIError{Provider: name, StatusCode: resp.StatusCode, Message: mr.Error.Type + ": " + mr.Error.Message}
	}

	var text strings.Builder
	for _, block := range mr.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, llm.ErrEmptyResponse
	}

	return &llm.Response{
		Text: text.String(),
		Usage: llm.Usage{
			PromptTokens:     mr.Usage.InputTokens,
			CompletionTokens: mr.Usage.OutputTokens,
			TotalTokens:      mr.Usage.InputTokens + mr.Usage.OutputTokens,
		},
	}, nil
}

// errorMessage pulls the message out of an error envelope, falling back to
// the raw body.
func errorMessage(body []byte) string {
	var env struct {
		Error *apiError `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err == nil && env.Error != nil {
		return env.Error.Type + ": " + env.Error.Message
	}
	return string(body)
}

func maxTokens(n int) int {
	if n <= 0 {
		return defaultMaxTokens
	}
	return n
}
