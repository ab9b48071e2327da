package plan

import (
	"fmt"
	"strings"
)

// Demo returns the deterministic plan served when no generation capability is
// configured or when generation fails. It performs no I/O.
func Demo(p UserProfile) *WorkoutPlan {
	goal := "FITNESS"
	if p.PrimaryGoal != "" {
		goal = strings.ToUpper(strings.ReplaceAll(p.PrimaryGoal, "_", " "))
	}
	level := "DEMO"
	if p.FitnessExperience != "" {
		level = strings.ToUpper(p.FitnessExperience)
	}
	duration := p.SessionDuration.Or("60")

	frequency := p.WorkoutFrequency
	if frequency == "" {
		frequency = "3-4 times per week"
	}

	return &WorkoutPlan{
		Title:             fmt.Sprintf("%s Plan - %s", goal, level),
		Description:       fmt.Sprintf("Personalized %s-minute workout plan (Demo version)", duration),
		Frequency:         frequency,
		SessionDuration:   duration + " minutes",
		DetectedEquipment: []string{"demo equipment"},
		Workouts: []WorkoutSession{
			{
				Day:    "Day 1 - Upper Body Strength",
				Focus:  "Chest, Shoulders, Triceps",
				Warmup: "5-10 minutes of arm circles, light cardio, and dynamic stretching",
				Exercises: []Exercise{
					{
						Name:      "Push-ups",
						Sets:      "3",
						Reps:      "10-15",
						Rest:      "60 seconds",
						Muscles:   "Chest, Shoulders, Triceps",
						Intensity: "medium",
						Notes:     "Keep core tight, modify on knees if needed",
					},
					{
						Name:      "Pike Push-ups",
						Sets:      "3",
						Reps:      "8-12",
						Rest:      "60 seconds",
						Muscles:   "Shoulders, Upper Chest",
						Intensity: "medium",
						Notes:     "Elevate feet for more difficulty",
					},
				},
				Cooldown: "10 minutes of upper body stretching",
			},
			{
				Day:    "Day 2 - Lower Body Power",
				Focus:  "Quads, Glutes, Hamstrings",
				Warmup: "10 minutes of leg swings, bodyweight squats, and activation exercises",
				Exercises: []Exercise{
					{
						Name:      "Bodyweight Squats",
						Sets:      "4",
						Reps:      "15-20",
						Rest:      "90 seconds",
						Muscles:   "Quads, Glutes, Core",
						Intensity: "medium",
						Notes:     "Keep chest up, weight in heels",
					},
					{
						Name:      "Single-Leg Glute Bridges",
						Sets:      "3",
						Reps:      "12 each leg",
						Rest:      "60 seconds",
						Muscles:   "Glutes, Hamstrings",
						Intensity: "medium",
						Notes:     "Focus on hip drive and glute activation",
					},
				},
				Cooldown: "15 minutes of lower body stretching and hip mobility",
			},
		},
		Progression:    "Week 1-2: Master the movements. Week 3-4: Increase reps by 2-3. Week 5-6: Add additional sets or harder variations.",
		ImportantNotes: "This is a demo plan. The AI service will analyze your gym photos for personalized equipment-based workouts.",
	}
}
