package parser

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/everstacklabs/fitplan/internal/plan"
)

const cleanPlan = `{
  "title": "Plan Strength - Intermediate",
  "description": "Barbell focused plan",
  "frequency": "3-4",
  "sessionDuration": "60 minutes",
  "workouts": [
    {
      "day": "Day 1 - Push",
      "focus": "Chest, Shoulders",
      "warmup": "5 minutes rowing",
      "exercises": [
        {
          "name": "Bench Press",
          "sets": "4",
          "reps": "6-8",
          "rest": "120 seconds",
          "muscles": "Chest",
          "intensity": "high",
          "notes": "Retract shoulder blades"
        }
      ],
      "cooldown": "Chest stretch"
    }
  ],
  "progression": "Add 2.5kg per week",
  "importantNotes": "Use a spotter"
}`

func mustParseStrict(t *testing.T, raw string) *plan.WorkoutPlan {
	t.Helper()
	p, err := ParseStrict(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return p
}

// --- Parse tests ---

func TestParse_PlainJSON(t *testing.T) {
	p := mustParseStrict(t, cleanPlan)
	if p.Title != "Plan Strength - Intermediate" {
		t.Errorf("title = %q", p.Title)
	}
	if len(p.Workouts) != 1 || p.Workouts[0].Exercises[0].Name != "Bench Press" {
		t.Errorf("unexpected workouts: %+v", p.Workouts)
	}
}

func TestParse_ProseAndFences(t *testing.T) {
	raw := "Here is your plan:\n```json\n" + cleanPlan + "\n```"
	got := mustParseStrict(t, raw)
	want := mustParseStrict(t, cleanPlan)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("plan mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_FencesAndTrailingComma(t *testing.T) {
	broken := strings.Replace(cleanPlan, `"Use a spotter"`, `"Use a spotter",`, 1)
	broken = strings.Replace(broken, `"Retract shoulder blades"`, `"Retract shoulder blades",`, 1)
	raw := "```\n" + broken + "\n```"

	got := mustParseStrict(t, raw)
	want := mustParseStrict(t, cleanPlan)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("plan mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_BareKeysAndSingleQuotes(t *testing.T) {
	raw := `{title: 'Quick Plan', workouts: [{day: 'Day 1', exercises: [{name: 'Squat', sets: 3, reps: '10'}]}]}`
	p := mustParseStrict(t, raw)

	if p.Title != "Quick Plan" {
		t.Errorf("title = %q", p.Title)
	}
	ex := p.Workouts[0].Exercises[0]
	if ex.Name != "Squat" || ex.Sets != "3" || ex.Reps != "10" {
		t.Errorf("unexpected exercise: %+v", ex)
	}
}

func TestParse_RawNewlinesInStrings(t *testing.T) {
	raw := "{\"title\": \"Line one\nline two\", \"workouts\": [{\"day\": \"D1\", \"exercises\": [{\"name\": \"Plank\"}]}]}"
	p := mustParseStrict(t, raw)
	if p.Title != "Line one line two" {
		t.Errorf("title = %q", p.Title)
	}
}

func TestParse_NumericSetsAccepted(t *testing.T) {
	raw := `{"title":"T","workouts":[{"day":"D","exercises":[{"name":"Row","sets":4,"reps":12,"rest":90}]}]}`
	p := mustParseStrict(t, raw)
	ex := p.Workouts[0].Exercises[0]
	if ex.Sets != "4" || ex.Reps != "12" || ex.Rest != "90" {
		t.Errorf("unexpected exercise: %+v", ex)
	}
}

func TestParse_UnrecoverableFallsBackToMinimal(t *testing.T) {
	p, err := Parse("I'm sorry, I can't help with that.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Title != plan.Minimal().Title {
		t.Errorf("expected minimal plan, got %q", p.Title)
	}
	if p.ParseWarning == "" {
		t.Error("expected parse warning to be recorded")
	}
	if len(p.Workouts) == 0 || len(p.Workouts[0].Exercises) == 0 {
		t.Error("minimal plan violates non-empty invariant")
	}
}

func TestParse_EmptyWorkoutsFallsBack(t *testing.T) {
	p, err := Parse(`{"title":"Empty","workouts":[]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(p.ParseWarning, StageValidate) {
		t.Errorf("parse warning = %q, want validate stage", p.ParseWarning)
	}
}

func TestParse_UnnamedExerciseKeepsPlan(t *testing.T) {
	raw := `{"title":"Three Day","workouts":[
	  {"day":"D1","exercises":[{"name":"Squat"},{"name":""}]},
	  {"day":"D2","exercises":[{"name":"Row"}]},
	  {"day":"D3","exercises":[{"name":"Press"}]}]}`

	p, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Title != "Three Day" || len(p.Workouts) != 3 {
		t.Errorf("plan replaced: title=%q sessions=%d", p.Title, len(p.Workouts))
	}
	if p.ParseWarning != "" {
		t.Errorf("unexpected parse warning %q", p.ParseWarning)
	}
}

func TestParse_DropsAnnotationFields(t *testing.T) {
	raw := `{"title":"T","workouts":[{"day":"D","exercises":[{"name":"Row"}]}],
	  "id":"model-id","isAiGenerated":true,"detectedEquipment":["rack"],
	  "error":"x","fallbackReason":"y","parseWarning":"z",
	  "tokensUsed":99,"photoCost":-1,"chatCost":-1,"totalCost":-1}`

	got := mustParseStrict(t, raw)
	want := &plan.WorkoutPlan{
		Title:    "T",
		Workouts: []plan.WorkoutSession{{Day: "D", Exercises: []plan.Exercise{{Name: "Row"}}}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("annotation fields leaked (-want +got):\n%s", diff)
	}
}

func TestParse_RepairStopsAtFirstDecodablePass(t *testing.T) {
	// Only the trailing comma is broken. The bare-key pass would rewrite the
	// "tip:" inside the notes string, so it must not run.
	raw := `{"title":"T","workouts":[{"day":"D","exercises":[{"name":"Row","notes":"Pull hard, tip: squeeze"},]}]}`

	p := mustParseStrict(t, raw)
	if got := p.Workouts[0].Exercises[0].Notes; got != "Pull hard, tip: squeeze" {
		t.Errorf("notes = %q", got)
	}
}

func TestParseStrict_Errors(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		stage string
	}{
		{"no object", "no json here", StageExtract},
		{"only closing brace", "} {", StageExtract},
		{"garbage object", "{not: [valid, json}", StageDecode},
		{"session without exercises", `{"workouts":[{"day":"D1","exercises":[]}]}`, StageValidate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStrict(tt.raw)
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ParseError, got %v", err)
			}
			if pe.Stage != tt.stage {
				t.Errorf("stage = %q, want %q", pe.Stage, tt.stage)
			}
		})
	}
}

func TestParseStrict_NoObjectUnwraps(t *testing.T) {
	_, err := ParseStrict("nothing")
	if !errors.Is(err, ErrNoObject) {
		t.Errorf("expected ErrNoObject, got %v", err)
	}
}

func TestParse_DemoRoundTrip(t *testing.T) {
	profiles := []plan.UserProfile{
		{},
		plan.NewProfile(
			plan.PersonalInfo{Age: "30", FitnessExperience: "beginner"},
			plan.Goals{PrimaryGoal: "weight_loss", WorkoutFrequency: "3-4", SessionDuration: "45"},
		),
	}
	for _, prof := range profiles {
		want := plan.Demo(prof)
		data, err := json.Marshal(want)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		got := mustParseStrict(t, string(data))
		// Annotations are not model-owned and never survive a parse.
		want.DetectedEquipment = nil
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s", diff)
		}
	}
}

// --- extraction tests ---

func TestStripFences(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"```json\n{}\n```", "{}"},
		{"```\n{}\n```", "{}"},
		{"  {}  ", "{}"},
		{"text ```json {\"a\":1}``` more", "text  {\"a\":1} more"},
	}
	for _, tt := range tests {
		if got := StripFences(tt.in); got != tt.want {
			t.Errorf("StripFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtractObject_Greedy(t *testing.T) {
	got, err := ExtractObject(`prefix {"a":{"b":1}} suffix`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"a":{"b":1}}` {
		t.Errorf("got %q", got)
	}
}
