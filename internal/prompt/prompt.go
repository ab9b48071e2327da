// Package prompt renders a user profile and equipment list into the
// instruction sent to the text generation model.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lithammer/dedent"

	"github.com/everstacklabs/fitplan/internal/plan"
)

// Richness classifies how much equipment is available.
type Richness string

const (
	Limited      Richness = "limited"
	WellEquipped Richness = "well-equipped"
)

// LimitedMaxItems is the largest list size still treated as limited.
const LimitedMaxItems = 3

// DefaultWorkoutDays is used for frequencies missing from DaysByFrequency.
const DefaultWorkoutDays = 3

// DaysByFrequency maps a workout frequency to the number of sessions requested.
var DaysByFrequency = map[string]int{
	"1-2":   2,
	"3-4":   3,
	"5-6":   4,
	"daily": 5,
}

// BodyweightOnly lists items that on their own never make a gym well equipped.
var BodyweightOnly = []string{"bodyweight exercises", "floor space", "wall"}

const (
	limitedGuidance      = "LIMITED EQUIPMENT DETECTED: Focus on bodyweight exercises, functional movements, and creative use of available space. Make the workout challenging and effective despite equipment limitations."
	wellEquippedGuidance = "WELL-EQUIPPED GYM: Use the available equipment to create varied, progressive workouts."
)

// CheckEquipmentRichness reports Limited when the list has at most
// LimitedMaxItems entries or holds only BodyweightOnly items.
func CheckEquipmentRichness(equipment []string) Richness {
	if len(equipment) <= LimitedMaxItems {
		return Limited
	}
	for _, item := range equipment {
		if !isBodyweight(item) {
			return WellEquipped
		}
	}
	return Limited
}

func isBodyweight(item string) bool {
	for _, b := range BodyweightOnly {
		if item == b {
			return true
		}
	}
	return false
}

// WorkoutDays returns the number of sessions to request for a frequency.
func WorkoutDays(frequency string) int {
	if d, ok := DaysByFrequency[frequency]; ok {
		return d
	}
	return DefaultWorkoutDays
}

// SystemInstruction fixes the model's role and output discipline.
func SystemInstruction() string {
	return strings.TrimSpace(dedent.Dedent(`
		You are an expert certified personal trainer with 15+ years of experience. Create workouts ONLY using the available equipment listed.
		IMPORTANT: Respond ONLY with valid JSON in the exact format requested. Do not include any markdown formatting, explanations, or text outside the JSON structure.
	`))
}

// Build renders the user prompt for one generation request.
func Build(p plan.UserProfile, equipment []string) string {
	frequency := or(p.WorkoutFrequency, "3-4")
	duration := p.SessionDuration.Or("60")

	guidance := wellEquippedGuidance
	if CheckEquipmentRichness(equipment) == Limited {
		guidance = limitedGuidance
	}

	var b strings.Builder

	b.WriteString("You are an expert certified personal trainer. Create a personalized workout plan.\n\n")

	b.WriteString("PERSONAL DATA:\n")
	fmt.Fprintf(&b, "- Age: %s years\n", p.Age.Or("not specified"))
	fmt.Fprintf(&b, "- Experience: %s\n", or(p.FitnessExperience, "not specified"))
	fmt.Fprintf(&b, "- Primary Goal: %s\n", or(p.PrimaryGoal, "general fitness"))
	fmt.Fprintf(&b, "- Frequency: %s\n", frequency)
	fmt.Fprintf(&b, "- Session Duration: %s minutes\n", duration)
	fmt.Fprintf(&b, "- Muscle Focus: %s\n", or(p.MuscleGroupFocus, "full body"))
	fmt.Fprintf(&b, "- Health Issues: %s\n\n", or(p.HealthIssues, "none"))

	b.WriteString("AVAILABLE EQUIPMENT:\n")
	b.WriteString(strings.Join(equipment, ", "))
	b.WriteString("\n\n")

	b.WriteString(guidance)
	b.WriteString("\n\n")

	b.WriteString("IMPORTANT: Create exercises ONLY using the equipment listed above. Do NOT suggest exercises requiring equipment not in the list.\n\n")

	fmt.Fprintf(&b, "Create %d workout days.\n\n", WorkoutDays(p.WorkoutFrequency))

	b.WriteString("RESPONSE FORMAT (JSON):\n")
	b.WriteString(schema(frequency, duration))
	b.WriteString("\n\n")

	b.WriteString("Respond ONLY with valid JSON, no other text. Do not wrap the JSON in markdown code fences.")

	return b.String()
}

// schema renders the output skeleton from the plan type itself, so the
// requested shape always matches what the parser decodes.
func schema(frequency, duration string) string {
	sk := plan.Skeleton{
		Title:           "Plan [Goal] - [Level]",
		Description:     "Brief plan description noting equipment used",
		Frequency:       frequency,
		SessionDuration: duration + " minutes",
		Workouts: []plan.WorkoutSession{
			{
				Day:    "Day 1 - Session Name",
				Focus:  "Main muscle groups",
				Warmup: "5-10 minutes using available equipment",
				Exercises: []plan.Exercise{
					{
						Name:      "Exercise name (using available equipment)",
						Sets:      "3-4",
						Reps:      "8-15",
						Rest:      "60-120 seconds",
						Muscles:   "Target muscles",
						Intensity: "high/medium/low",
						Notes:     "Form cues and equipment-specific tips",
					},
				},
				Cooldown: "Stretching and mobility",
			},
		},
		Progression:    "How to progress with available equipment",
		ImportantNotes: "Safety tips specific to available equipment",
	}

	data, err := json.MarshalIndent(sk, "", "  ")
	if err != nil {
		// Skeleton holds only strings and slices of plain structs.
		panic(fmt.Sprintf("marshaling plan schema: %v", err))
	}
	return string(data)
}

func or(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
