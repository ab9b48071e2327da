package plan

import "time"

// Exercise is a single movement prescription within a session. Sets, reps and
// rest are free text ("3-4", "12 each leg") but models sometimes emit bare
// numbers, so they decode from either form.
type Exercise struct {
	Name      string `json:"name" yaml:"name"`
	Sets      Scalar `json:"sets" yaml:"sets"`
	Reps      Scalar `json:"reps" yaml:"reps"`
	Rest      Scalar `json:"rest" yaml:"rest"`
	Muscles   string `json:"muscles" yaml:"muscles"`
	Intensity string `json:"intensity" yaml:"intensity"`
	Notes     string `json:"notes" yaml:"notes"`
}

// WorkoutSession is one training day of a plan.
type WorkoutSession struct {
	Day       string     `json:"day" yaml:"day"`
	Focus     string     `json:"focus" yaml:"focus"`
	Warmup    string     `json:"warmup" yaml:"warmup"`
	Exercises []Exercise `json:"exercises" yaml:"exercises"`
	Cooldown  string     `json:"cooldown" yaml:"cooldown"`
}

// WorkoutPlan is the document returned to callers.
//
// The first block of fields is what the generation model is asked to produce.
// The remaining fields are annotations stamped by the generator and are never
// requested from the model.
type WorkoutPlan struct {
	Title           string           `json:"title" yaml:"title"`
	Description     string           `json:"description" yaml:"description"`
	Frequency       string           `json:"frequency" yaml:"frequency"`
	SessionDuration string           `json:"sessionDuration" yaml:"session_duration"`
	Workouts        []WorkoutSession `json:"workouts" yaml:"workouts"`
	Progression     string           `json:"progression" yaml:"progression"`
	ImportantNotes  string           `json:"importantNotes" yaml:"important_notes"`

	ID                string     `json:"id,omitempty" yaml:"id,omitempty"`
	DetectedEquipment []string   `json:"detectedEquipment,omitempty" yaml:"detected_equipment,omitempty"`
	IsAIGenerated     bool       `json:"isAiGenerated" yaml:"is_ai_generated"`
	GeneratedAt       *time.Time `json:"generatedAt,omitempty" yaml:"generated_at,omitempty"`
	TokensUsed        int64      `json:"tokensUsed" yaml:"tokens_used"`
	PhotoCount        int        `json:"photoCount,omitempty" yaml:"photo_count,omitempty"`
	PhotoCost         float64    `json:"photoCost" yaml:"photo_cost"`
	ChatCost          float64    `json:"chatCost" yaml:"chat_cost"`
	TotalCost         float64    `json:"totalCost" yaml:"total_cost"`
	Error             string     `json:"error,omitempty" yaml:"error,omitempty"`
	FallbackReason    string     `json:"fallbackReason,omitempty" yaml:"fallback_reason,omitempty"`
	ParseWarning      string     `json:"parseWarning,omitempty" yaml:"parse_warning,omitempty"`
}

// Skeleton is the shape the generation model must fill in. Only the model-owned
// fields are present, so annotation fields never leak into prompts.
type Skeleton struct {
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	Frequency       string           `json:"frequency"`
	SessionDuration string           `json:"sessionDuration"`
	Workouts        []WorkoutSession `json:"workouts"`
	Progression     string           `json:"progression"`
	ImportantNotes  string           `json:"importantNotes"`
}

// ExerciseCount returns the total number of exercises across all sessions.
func (p *WorkoutPlan) ExerciseCount() int {
	n := 0
	for _, w := range p.Workouts {
		n += len(w.Exercises)
	}
	return n
}

// Minimal returns the single-session plan used when a model response cannot be
// recovered. It always satisfies the non-empty workouts/exercises invariant.
func Minimal() *WorkoutPlan {
	return &WorkoutPlan{
		Title:           "Custom Workout Plan - AI Generated",
		Description:     "Personalized workout plan based on your goals and equipment",
		Frequency:       "3-4 times per week",
		SessionDuration: "60 minutes",
		Workouts: []WorkoutSession{
			{
				Day:    "Day 1 - Full Body",
				Focus:  "Strength and Conditioning",
				Warmup: "5-10 minutes dynamic warm-up",
				Exercises: []Exercise{
					{
						Name:      "Compound Movement",
						Sets:      "3",
						Reps:      "8-12",
						Rest:      "90 seconds",
						Muscles:   "Multiple muscle groups",
						Intensity: "medium",
						Notes:     "Focus on proper form",
					},
				},
				Cooldown: "10 minutes stretching",
			},
		},
		Progression:    "Increase weight or reps weekly as you get stronger",
		ImportantNotes: "Always warm up properly and listen to your body",
	}
}
