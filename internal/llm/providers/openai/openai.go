// Package openai implements the llm capabilities on the OpenAI Chat
// Completions API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/everstacklabs/fitplan/internal/llm"
)

const (
	name               = "openai"
	defaultTextModel   = "gpt-4o-mini"
	defaultVisionModel = "gpt-4o"
)

func init() {
	llm.Register(name, func(cfg llm.Config) (llm.Provider, error) {
		return New(cfg)
	})
}

// Client implements llm.Provider with the official OpenAI SDK.
type Client struct {
	client      openai.Client
	textModel   string
	visionModel string
}

// New creates an OpenAI-backed provider. SDK retries are disabled: a failed
// call is reported to the caller, which falls back instead of retrying.
func New(cfg llm.Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	c := &Client{
		client:      openai.NewClient(opts...),
		textModel:   cfg.TextModel,
		visionModel: cfg.VisionModel,
	}
	if c.textModel == "" {
		c.textModel = defaultTextModel
	}
	if c.visionModel == "" {
		c.visionModel = defaultVisionModel
	}
	return c, nil
}

func (c *Client) Name() string { return name }

// GenerateText implements llm.TextGenerator.
func (c *Client) GenerateText(ctx context.Context, req llm.TextRequest) (*llm.Response, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.textModel),
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}

	return c.complete(ctx, params)
}

// GenerateVision implements llm.VisionGenerator. The image is sent inline as
// a base64 data URL.
func (c *Client) GenerateVision(ctx context.Context, req llm.VisionRequest) (*llm.Response, error) {
	detail := req.Detail
	if detail == "" {
		detail = llm.DetailAuto
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.visionModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(req.Instruction),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL:    req.Image.DataURL(),
					Detail: string(detail),
				}),
			}),
		},
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}

	return c.complete(ctx, params)
}

func (c *Client) complete(ctx context.Context, params openai.ChatCompletionNewParams) (*llm.Response, error) {
	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, &llm.APIError{Provider: name, StatusCode: apiErr.StatusCode, Message: apiErr.Message}
		}
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}

	slog.Debug("openai completion",
		"model", params.Model,
		"prompt_tokens", completion.Usage.PromptTokens,
		"completion_tokens", completion.Usage.CompletionTokens,
		"total_tokens", completion.Usage.TotalTokens)

	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return nil, llm.ErrEmptyResponse
	}

	return &llm.Response{
		Text: completion.Choices[0].Message.Content,
		Usage: llm.Usage{
			PromptTokens:     completion.Usage.PromptTokens,
			CompletionTokens: completion.Usage.CompletionTokens,
			TotalTokens:      completion.Usage.TotalTokens,
		},
	}, nil
}
