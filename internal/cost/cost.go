package cost

import "math"

// Default rates (USD per million tokens) for the models the generator uses
// out of the box: gpt-4o-mini for text, gpt-4o for vision.
const (
	DefaultInputPerMillion  = 0.15
	DefaultOutputPerMillion = 0.60
	DefaultVisionPerMillion = 10.00

	// DefaultLowDetailImageTokens is the flat charge for one low-detail image.
	DefaultLowDetailImageTokens = 85

	// InputShare and OutputShare split a total token count when the provider
	// only reports totals.
	InputShare  = 0.7
	OutputShare = 0.3
)

// Pricing holds the rates used for cost estimates.
type Pricing struct {
	InputPerMillion      float64 `mapstructure:"input_per_million"`
	OutputPerMillion     float64 `mapstructure:"output_per_million"`
	VisionPerMillion     float64 `mapstructure:"vision_per_million"`
	LowDetailImageTokens int     `mapstructure:"low_detail_image_tokens"`
}

// DefaultPricing returns the built-in rates.
func DefaultPricing() Pricing {
	return Pricing{
		InputPerMillion:      DefaultInputPerMillion,
		OutputPerMillion:     DefaultOutputPerMillion,
		VisionPerMillion:     DefaultVisionPerMillion,
		LowDetailImageTokens: DefaultLowDetailImageTokens,
	}
}

// ChatCost estimates the cost of a text generation call from its total token
// count, weighting 70% as input and 30% as output.
func (p Pricing) ChatCost(tokens int64) float64 {
	if tokens <= 0 {
		return 0
	}
	t := float64(tokens)
	c := t*InputShare*p.InputPerMillion/1_000_000 + t*OutputShare*p.OutputPerMillion/1_000_000
	return math.Max(c, 0)
}

// ImageCost is the flat per-photo charge for a low-detail vision call,
// independent of the actual image.
func (p Pricing) ImageCost() float64 {
	c := float64(p.LowDetailImageTokens) * p.VisionPerMillion / 1_000_000
	return math.Max(c, 0)
}

// Estimate is the itemized cost of one generation request.
type Estimate struct {
	PhotoCost  float64
	ChatCost   float64
	TotalCost  float64
	TokensUsed int64
}

// NewEstimate sums photo and chat cost.
func NewEstimate(photoCost, chatCost float64, tokens int64) Estimate {
	return Estimate{
		PhotoCost:  photoCost,
		ChatCost:   chatCost,
		TotalCost:  photoCost + chatCost,
		TokensUsed: tokens,
	}
}

// Round rounds to five decimal places. Display only; never feed the result
// back into accumulation.
func Round(v float64) float64 {
	return math.Round(v*100_000) / 100_000
}
