// Package render formats workout plans for terminals and files.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/everstacklabs/fitplan/internal/cost"
	"github.com/everstacklabs/fitplan/internal/plan"
)

// Format names an output encoding.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// Render encodes p in the requested format.
func Render(p *plan.WorkoutPlan, f Format) ([]byte, error) {
	switch f {
	case FormatJSON, "":
		return JSON(p)
	case FormatYAML:
		return YAML(p)
	case FormatMarkdown, "md":
		return []byte(Markdown(p)), nil
	default:
		return nil, fmt.Errorf("unknown format %q (want json, yaml or markdown)", f)
	}
}

// JSON returns the plan as indented JSON.
func JSON(p *plan.WorkoutPlan) ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding plan as JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// YAML returns the plan as YAML.
func YAML(p *plan.WorkoutPlan) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return nil, fmt.Errorf("encoding plan as YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding plan as YAML: %w", err)
	}
	return buf.Bytes(), nil
}

// Markdown renders a human-readable summary with one table per session.
func Markdown(p *plan.WorkoutPlan) string {
	if p == nil {
		return ""
	}

	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", p.Title)
	if p.Error != "" {
		fmt.Fprintf(&b, "> **%s**", p.Error)
		if p.FallbackReason != "" {
			fmt.Fprintf(&b, " (%s)", p.FallbackReason)
		}
		b.WriteString("\n\n")
	}
	if p.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", p.Description)
	}

	fmt.Fprintf(&b, "**Frequency:** %s | **Session:** %s\n\n", p.Frequency, p.SessionDuration)

	if len(p.DetectedEquipment) > 0 {
		fmt.Fprintf(&b, "**Equipment:** %s\n\n", strings.Join(p.DetectedEquipment, ", "))
	}

	for _, w := range p.Workouts {
		fmt.Fprintf(&b, "## %s\n\n", w.Day)
		if w.Focus != "" {
			fmt.Fprintf(&b, "_Focus: %s_\n\n", w.Focus)
		}
		if w.Warmup != "" {
			fmt.Fprintf(&b, "**Warm-up:** %s\n\n", w.Warmup)
		}

		b.WriteString("| Exercise | Sets | Reps | Rest | Muscles | Intensity | Notes |\n")
		b.WriteString("|----------|------|------|------|---------|-----------|-------|\n")
		for _, e := range w.Exercises {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
				cell(e.Name), cell(e.Sets.String()), cell(e.Reps.String()), cell(e.Rest.String()),
				cell(e.Muscles), cell(e.Intensity), cell(e.Notes))
		}
		b.WriteString("\n")

		if w.Cooldown != "" {
			fmt.Fprintf(&b, "**Cool-down:** %s\n\n", w.Cooldown)
		}
	}

	if p.Progression != "" {
		fmt.Fprintf(&b, "## Progression\n\n%s\n\n", p.Progression)
	}
	if p.ImportantNotes != "" {
		fmt.Fprintf(&b, "## Important Notes\n\n%s\n\n", p.ImportantNotes)
	}

	b.WriteString("---\n\n")
	source := "demo plan"
	if p.IsAIGenerated {
		source = "AI generated"
	}
	fmt.Fprintf(&b, "_%s", source)
	if p.TokensUsed > 0 {
		fmt.Fprintf(&b, " | %d tokens", p.TokensUsed)
	}
	if p.TotalCost > 0 {
		fmt.Fprintf(&b, " | cost $%.5f (photos $%.5f, chat $%.5f)",
			cost.Round(p.TotalCost), cost.Round(p.PhotoCost), cost.Round(p.ChatCost))
	}
	b.WriteString("_\n")

	return b.String()
}

// cell escapes table separators and line breaks.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
