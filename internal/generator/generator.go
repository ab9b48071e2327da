// Package generator orchestrates plan generation: equipment analysis, prompt
// construction, the model call, parsing, and cost annotation, degrading to the
// demo plan whenever a step fails.
package generator

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/everstacklabs/fitplan/internal/cost"
	"github.com/everstacklabs/fitplan/internal/equipment"
	"github.com/everstacklabs/fitplan/internal/llm"
	"github.com/everstacklabs/fitplan/internal/parser"
	"github.com/everstacklabs/fitplan/internal/plan"
	"github.com/everstacklabs/fitplan/internal/prompt"
)

const (
	DefaultTemperature = 0.5
	DefaultMaxTokens   = 2500

	// FallbackError is stamped on plans served after a failed generation.
	FallbackError = "AI temporarily unavailable - showing demo plan"
)

// Options tunes the text generation call.
type Options struct {
	Temperature float64
	MaxTokens   int
	// StrictParse turns unrecoverable model output into a fallback instead of
	// the parser's minimal plan.
	StrictParse bool
	Pricing     cost.Pricing
}

// Generator produces workout plans.
type Generator struct {
	text     llm.TextGenerator
	analyzer *equipment.Analyzer
	opts     Options

	now   func() time.Time
	newID func() string
}

// New creates a Generator. A nil text generator means no capability is
// configured: every call returns the demo plan. A nil analyzer is replaced by
// one without vision.
func New(text llm.TextGenerator, analyzer *equipment.Analyzer, opts Options) *Generator {
	if opts.Temperature == 0 {
		opts.Temperature = DefaultTemperature
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.Pricing == (cost.Pricing{}) {
		opts.Pricing = cost.DefaultPricing()
	}
	if analyzer == nil {
		analyzer = equipment.NewAnalyzer(nil, equipment.Options{Pricing: opts.Pricing})
	}
	return &Generator{
		text:     text,
		analyzer: analyzer,
		opts:     opts,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Configured reports whether a text generation capability is available.
func (g *Generator) Configured() bool {
	return g.text != nil
}

// Generate always returns a plan with at least one session, each with at
// least one exercise. Failures are reported on the plan, never returned.
func (g *Generator) Generate(ctx context.Context, profile plan.UserProfile, photos []equipment.PhotoInput) *plan.WorkoutPlan {
	// 1. No capability
	if g.text == nil {
		slog.Info("no generation capability configured, serving demo plan")
		p := plan.Demo(profile)
		p.ID = g.newID()
		return p
	}

	// 2. Equipment
	eq := g.analyzer.Analyze(ctx, photos)

	// 3. Prompt
	userPrompt := prompt.Build(profile, eq.Equipment)

	// 4. Invoke
	resp, err := g.text.GenerateText(ctx, llm.TextRequest{
		System:      prompt.SystemInstruction(),
		Prompt:      userPrompt,
		Temperature: g.opts.Temperature,
		MaxTokens:   g.opts.MaxTokens,
	})
	if err != nil {
		return g.fallback(profile, len(photos), cost.NewEstimate(eq.Cost, 0, 0), err)
	}

	tokens := resp.Usage.TotalTokens
	est := cost.NewEstimate(eq.Cost, g.opts.Pricing.ChatCost(tokens), tokens)

	// 5. Parse and annotate
	var p *plan.WorkoutPlan
	if g.opts.StrictParse {
		p, err = parser.ParseStrict(resp.Text)
	} else {
		p, err = parser.Parse(resp.Text)
	}
	if err != nil {
		return g.fallback(profile, len(photos), est, err)
	}

	generatedAt := g.now().UTC()
	p.ID = g.newID()
	p.DetectedEquipment = eq.Equipment
	p.IsAIGenerated = true
	p.GeneratedAt = &generatedAt
	p.TokensUsed = est.TokensUsed
	p.PhotoCount = len(photos)
	p.PhotoCost = est.PhotoCost
	p.ChatCost = est.ChatCost
	p.TotalCost = est.TotalCost

	slog.Info("workout plan generated",
		"ai", true,
		"sessions", len(p.Workouts),
		"exercises", p.ExerciseCount(),
		"tokens", est.TokensUsed,
		"photo_cost", cost.Round(est.PhotoCost),
		"chat_cost", cost.Round(est.ChatCost),
		"total_cost", cost.Round(est.TotalCost),
		"parse_warning", p.ParseWarning != "")

	return p
}

// fallback serves the demo plan while keeping the cost already spent.
func (g *Generator) fallback(profile plan.UserProfile, photoCount int, est cost.Estimate, err error) *plan.WorkoutPlan {
	slog.Error("generation failed, serving demo plan",
		"error", err,
		"tokens", est.TokensUsed,
		"total_cost", cost.Round(est.TotalCost))

	p := plan.Demo(profile)
	p.ID = g.newID()
	p.IsAIGenerated = false
	p.Error = FallbackError
	p.FallbackReason = err.Error()
	p.TokensUsed = est.TokensUsed
	p.PhotoCount = photoCount
	p.PhotoCost = est.PhotoCost
	p.ChatCost = est.ChatCost
	p.TotalCost = est.TotalCost
	return p
}
