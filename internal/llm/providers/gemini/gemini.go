// Package gemini implements the llm capabilities on the Google Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/everstacklabs/fitplan/internal/llm"
)

const (
	name         = "gemini"
	defaultModel = "gemini-2.5-flash"
)

func init() {
	llm.Register(name, func(cfg llm.Config) (llm.Provider, error) {
		return New(context.Background(), cfg)
	})
}

// Client implements llm.Provider using the genai SDK.
type Client struct {
	client      *genai.Client
	textModel   string
	visionModel string
}

// New creates a Gemini-backed provider.
func New(ctx context.Context, cfg llm.Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini API key is required")
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		cc.HTTPOptions.Timeout = &cfg.Timeout
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	c := &Client{
		client:      client,
		textModel:   cfg.TextModel,
		visionModel: cfg.VisionModel,
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

// GenerateText implements llm.TextGenerator.
func (c *Client) GenerateText(ctx context.Context, req llm.TextRequest) (*llm.Response, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(req.Prompt, genai.RoleUser),
	}
	result, err := c.client.Models.GenerateContent(ctx, c.textModel, contents, textConfig(req))
	if err != nil {
		return nil, mapError(err)
	}
	return toResponse(result)
}

// GenerateVision implements llm.VisionGenerator. The image travels as inline
// blob data next to the instruction.
func (c *Client) GenerateVision(ctx context.Context, req llm.VisionRequest) (*llm.Response, error) {
	result, err := c.client.Models.GenerateContent(ctx, c.visionModel, visionContents(req), visionConfig(req))
	if err != nil {
		return nil, mapError(err)
	}
	return toResponse(result)
}

func textConfig(req llm.TextRequest) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	return cfg
}

func visionConfig(req llm.VisionRequest) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(req.Temperature)),
		MediaResolution: mediaResolution(req.Detail),
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	return cfg
}

func visionContents(req llm.VisionRequest) []*genai.Content {
	parts := []*genai.Part{
		genai.NewPartFromText(req.Instruction),
		{InlineData: &genai.Blob{Data: req.Image.Data, MIMEType: req.Image.MIMEType}},
	}
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
}

func mediaResolution(d llm.Detail) genai.MediaResolution {
	switch d {
	case llm.DetailLow:
		return genai.MediaResolutionLow
	case llm.DetailHigh:
		return genai.MediaResolutionHigh
	default:
		return genai.MediaResolutionUnspecified
	}
}

func toResponse(result *genai.GenerateContentResponse) (*llm.Response, error) {
	if result == nil || len(result.Candidates) == 0 {
		return nil, llm.ErrEmptyResponse
	}
	text := result.Text()
	if text == "" {
		return nil, llm.ErrEmptyResponse
	}

	resp := &llm.Response{Text: text}
	if u := result.UsageMetadata; u != nil {
		resp.Usage = llm.Usage{
			PromptTokens:     int64(u.PromptTokenCount),
			CompletionTokens: int64(u.CandidatesTokenCount),
			TotalTokens:      int64(u.TotalTokenCount),
		}
	}
	return resp, nil
}

func mapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &llm.APIError{Provider: name, StatusCode: apiErr.Code, Message: apiErr.Message}
	}
	return fmt.Errorf("gemini generate content: %w", err)
}
