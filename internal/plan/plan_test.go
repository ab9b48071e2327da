package plan

import (
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func scenarioProfile() UserProfile {
	return NewProfile(
		PersonalInfo{Age: "30", FitnessExperience: "beginner"},
		Goals{
			PrimaryGoal:      "weight_loss",
			WorkoutFrequency: "3-4",
			SessionDuration:  "45",
			MuscleGroupFocus: "full_body",
		},
	)
}

func TestDemo_TitleFromProfile(t *testing.T) {
	p := Demo(scenarioProfile())

	if !strings.Contains(p.Title, "WEIGHT LOSS") {
		t.Errorf("title %q missing goal", p.Title)
	}
	if !strings.Contains(p.Title, "BEGINNER") {
		t.Errorf("title %q missing experience", p.Title)
	}
	if p.IsAIGenerated {
		t.Error("demo plan must not be marked AI generated")
	}
	if p.SessionDuration != "45 minutes" {
		t.Errorf("session duration = %q, want %q", p.SessionDuration, "45 minutes")
	}
	if !strings.Contains(p.Description, "45-minute") {
		t.Errorf("description %q missing duration", p.Description)
	}
	if p.Frequency != "3-4" {
		t.Errorf("frequency = %q, want 3-4", p.Frequency)
	}
}

func TestDemo_Defaults(t *testing.T) {
	p := Demo(UserProfile{})

	if p.Title != "FITNESS Plan - DEMO" {
		t.Errorf("title = %q", p.Title)
	}
	if p.SessionDuration != "60 minutes" {
		t.Errorf("session duration = %q", p.SessionDuration)
	}
	if p.Frequency != "3-4 times per week" {
		t.Errorf("frequency = %q", p.Frequency)
	}
}

func TestDemo_MultipleUnderscores(t *testing.T) {
	p := Demo(UserProfile{Goals: Goals{PrimaryGoal: "body_recomposition_phase"}})
	if !strings.HasPrefix(p.Title, "BODY RECOMPOSITION PHASE Plan") {
		t.Errorf("title = %q", p.Title)
	}
}

func TestDemoAndMinimal_NonEmptyInvariant(t *testing.T) {
	plans := map[string]*WorkoutPlan{
		"demo":    Demo(scenarioProfile()),
		"empty":   Demo(UserProfile{}),
		"minimal": Minimal(),
	}
	for name, p := range plans {
		t.Run(name, func(t *testing.T) {
			if len(p.Workouts) == 0 {
				t.Fatal("no workouts")
			}
			for i, w := range p.Workouts {
				if len(w.Exercises) == 0 {
					t.Errorf("session %d has no exercises", i)
				}
			}
		})
	}
}

func TestDemo_IsPure(t *testing.T) {
	a := Demo(scenarioProfile())
	b := Demo(scenarioProfile())
	a.Workouts[0].Exercises[0].Name = "mutated"
	if b.Workouts[0].Exercises[0].Name == "mutated" {
		t.Error("demo plans share state")
	}
}

func TestExerciseCount(t *testing.T) {
	if got := Demo(UserProfile{}).ExerciseCount(); got != 4 {
		t.Errorf("ExerciseCount() = %d, want 4", got)
	}
}

// --- profile decoding ---

func TestUserProfile_UnmarshalJSON(t *testing.T) {
	raw := `{"fullName":"Sam","age":30,"height":"180","weight":72.5,
		"fitnessExperience":"beginner","primaryGoal":"weight_loss",
		"workoutFrequency":"3-4","sessionDuration":45,"muscleGroupFocus":"full_body"}`

	var p UserProfile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.Age != "30" {
		t.Errorf("age = %q", p.Age)
	}
	if p.Weight != "72.5" {
		t.Errorf("weight = %q", p.Weight)
	}
	if p.Height != "180" {
		t.Errorf("height = %q", p.Height)
	}
	if p.SessionDuration != "45" {
		t.Errorf("session duration = %q", p.SessionDuration)
	}
	if p.PrimaryGoal != "weight_loss" {
		t.Errorf("primary goal = %q", p.PrimaryGoal)
	}
}

func TestScalar_RejectsObjects(t *testing.T) {
	var s Scalar
	if err := json.Unmarshal([]byte(`{"a":1}`), &s); err == nil {
		t.Error("expected error for object")
	}
	if err := json.Unmarshal([]byte(`null`), &s); err != nil || s != "" {
		t.Errorf("null: got %q, %v", s, err)
	}
}

func TestUserProfile_UnmarshalYAML(t *testing.T) {
	raw := `
full_name: Sam
age: 30
fitness_experience: intermediate
primary_goal: strength
workout_frequency: daily
session_duration: 60
health_issues: lower back pain
`
	var p UserProfile
	if err := yaml.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Age != "30" || p.SessionDuration != "60" {
		t.Errorf("scalars not decoded: age=%q duration=%q", p.Age, p.SessionDuration)
	}
	if p.FitnessExperience != "intermediate" || p.WorkoutFrequency != "daily" {
		t.Errorf("strings not decoded: %+v", p)
	}
	if p.HealthIssues != "lower back pain" {
		t.Errorf("health issues = %q", p.HealthIssues)
	}
}
