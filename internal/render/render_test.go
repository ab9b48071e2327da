package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/everstacklabs/fitplan/internal/plan"
)

func TestMarkdown_Demo(t *testing.T) {
	p := plan.Demo(plan.NewProfile(plan.PersonalInfo{FitnessExperience: "beginner"}, plan.Goals{PrimaryGoal: "weight_loss"}))
	md := Markdown(p)

	for _, want := range []string{
		"# WEIGHT LOSS Plan - BEGINNER",
		"## Day 1 - Upper Body Strength",
		"## Day 2 - Lower Body Power",
		"| Push-ups | 3 | 10-15 | 60 seconds |",
		"**Equipment:** demo equipment",
		"_demo plan_",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestMarkdown_FallbackAndCost(t *testing.T) {
	p := plan.Demo(plan.UserProfile{})
	p.Error = "AI temporarily unavailable - showing demo plan"
	p.FallbackReason = "timeout"
	p.PhotoCost = 0.00085
	p.TotalCost = 0.00085

	md := Markdown(p)
	if !strings.Contains(md, "> **AI temporarily unavailable - showing demo plan** (timeout)") {
		t.Error("expected fallback banner")
	}
	if !strings.Contains(md, "cost $0.00085 (photos $0.00085, chat $0.00000)") {
		t.Errorf("expected cost footer, got:\n%s", md)
	}
}

func TestMarkdown_EscapesCells(t *testing.T) {
	p := plan.Minimal()
	p.Workouts[0].Exercises[0].Notes = "a | b\nc"
	if md := Markdown(p); !strings.Contains(md, `a \| b c`) {
		t.Error("expected escaped cell")
	}
}

func TestMarkdown_Nil(t *testing.T) {
	if Markdown(nil) != "" {
		t.Error("expected empty output for nil plan")
	}
}

func TestJSON(t *testing.T) {
	p := plan.Demo(plan.UserProfile{})
	data, err := JSON(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got plan.WorkoutPlan
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if diff := cmp.Diff(*p, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestJSON_ZeroCostsPresent(t *testing.T) {
	data, err := JSON(plan.Demo(plan.UserProfile{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	for _, key := range []string{"tokensUsed", "photoCost", "chatCost", "totalCost"} {
		v, ok := raw[key]
		if !ok {
			t.Errorf("key %q missing", key)
			continue
		}
		if v != float64(0) {
			t.Errorf("%s = %v, want 0", key, v)
		}
	}
}

func TestYAML_SnakeCaseKeys(t *testing.T) {
	p := plan.Demo(plan.UserProfile{})
	data, err := YAML(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := string(data)
	for _, want := range []string{"title: FITNESS Plan - DEMO", "session_duration: 60 minutes", "important_notes:", "is_ai_generated: false"} {
		if !strings.Contains(s, want) {
			t.Errorf("yaml missing %q", want)
		}
	}

	var got plan.WorkoutPlan
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if diff := cmp.Diff(*p, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_Formats(t *testing.T) {
	p := plan.Minimal()
	for _, f := range []Format{FormatJSON, FormatYAML, FormatMarkdown, "md", ""} {
		if _, err := Render(p, f); err != nil {
			t.Errorf("Render(%q): %v", f, err)
		}
	}
	if _, err := Render(p, "toml"); err == nil {
		t.Error("expected error for unknown format")
	}
}
