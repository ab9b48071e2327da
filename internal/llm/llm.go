// Package llm defines the text and vision generation capabilities the plan
// pipeline depends on, independent of any provider SDK.
package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
)

// Usage is the token accounting reported by a provider for one call.
type Usage struct {
	PromptTokens     int64 `json:"promptTokens"`
	CompletionTokens int64 `json:"completionTokens"`
	TotalTokens      int64 `json:"totalTokens"`
}

// Response is the text a model produced plus its usage.
type Response struct {
	Text  string
	Usage Usage
}

// TextRequest is a single system + user prompt completion.
type TextRequest struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Detail is the image resolution hint sent with vision requests.
type Detail string

const (
	DetailLow  Detail = "low"
	DetailHigh Detail = "high"
	DetailAuto Detail = "auto"
)

// Image is a normalized photo: raw bytes plus a MIME type.
type Image struct {
	MIMEType string
	Data     []byte
}

// Base64 returns the standard base64 encoding of the image bytes.
func (i Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

// DataURL returns the image as a data: URL.
func (i Image) DataURL() string {
	return fmt.Sprintf("data:%s;base64,%s", i.MIMEType, i.Base64())
}

// VisionRequest asks a model to describe a single image.
type VisionRequest struct {
	Instruction string
	Image       Image
	Detail      Detail
	Temperature float64
	MaxTokens   int
}

// TextGenerator produces text from a prompt.
type TextGenerator interface {
	GenerateText(ctx context.Context, req TextRequest) (*Response, error)
}

// VisionGenerator produces text from an instruction and an image.
type VisionGenerator interface {
	GenerateVision(ctx context.Context, req VisionRequest) (*Response, error)
}

// Provider is a configured backend offering both capabilities.
type Provider interface {
	Name() string
	TextGenerator
	VisionGenerator
}

// ErrEmptyResponse is returned when a provider answers successfully but the
// envelope carries no text.
var ErrEmptyResponse = errors.New("empty response from model")

// APIError is a non-success status returned by a provider.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}
