package validate

import (
	"strings"
	"testing"

	"github.com/everstacklabs/fitplan/internal/plan"
)

func validPlan() *plan.WorkoutPlan {
	return plan.Demo(plan.UserProfile{})
}

func TestValidPlanPassesAllChecks(t *testing.T) {
	r := ValidatePlan(validPlan())

	if r.HasErrors() {
		t.Errorf("expected no errors, got: %v", r.Errors())
	}
	if len(r.Warnings()) > 0 {
		t.Errorf("expected no warnings, got: %v", r.Warnings())
	}
	if r.Err() != nil {
		t.Errorf("Err() = %v, want nil", r.Err())
	}
}

func TestStructuralErrors(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*plan.WorkoutPlan)
		errField string
	}{
		{"no workouts", func(p *plan.WorkoutPlan) { p.Workouts = nil }, "workouts"},
		{"session without exercises", func(p *plan.WorkoutPlan) { p.Workouts[1].Exercises = nil }, "exercises"},
		{"exercise without name", func(p *plan.WorkoutPlan) { p.Workouts[0].Exercises[0].Name = " " }, "name"},
		{"negative cost", func(p *plan.WorkoutPlan) { p.TotalCost = -1 }, "cost"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPlan()
			tt.mutate(p)
			r := ValidatePlan(p)

			if !r.HasErrors() {
				t.Fatal("expected errors")
			}
			found := false
			for _, e := range r.Errors() {
				if e.Field == tt.errField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on %q, got %v", tt.errField, r.Errors())
			}
			if r.Err() == nil {
				t.Error("Err() returned nil")
			}
		})
	}
}

func TestCheckStructure_IgnoresDocumentRules(t *testing.T) {
	p := validPlan()
	p.Workouts[0].Exercises[0].Name = ""
	p.TotalCost = -1
	p.Title = ""

	if r := CheckStructure(p); len(r.Issues) != 0 {
		t.Errorf("expected no structural issues, got %v", r.Issues)
	}
	if !ValidatePlan(p).HasErrors() {
		t.Error("ValidatePlan should still report name and cost errors")
	}
}

func TestCheckStructure_Errors(t *testing.T) {
	p := validPlan()
	p.Workouts[1].Exercises = nil
	if r := CheckStructure(p); !r.HasErrors() {
		t.Error("expected error for session without exercises")
	}

	p.Workouts = nil
	if r := CheckStructure(p); !r.HasErrors() {
		t.Error("expected error for plan without workouts")
	}
	if !CheckStructure(nil).HasErrors() {
		t.Error("expected error for nil plan")
	}
}

func TestWarnings(t *testing.T) {
	p := validPlan()
	p.Title = ""
	p.Workouts[0].Day = ""
	p.Workouts[0].Exercises[0].Intensity = "moderate"
	p.Workouts[0].Exercises[1].Intensity = "HIGH"

	r := ValidatePlan(p)
	if r.HasErrors() {
		t.Fatalf("unexpected errors: %v", r.Errors())
	}
	if got := len(r.Warnings()); got != 3 {
		t.Errorf("expected 3 warnings, got %d: %v", got, r.Warnings())
	}
}

func TestNilPlan(t *testing.T) {
	if !ValidatePlan(nil).HasErrors() {
		t.Error("expected error for nil plan")
	}
}

func TestFormatResult(t *testing.T) {
	if got := FormatResult(&Result{}); !strings.Contains(got, "passed") {
		t.Errorf("unexpected output: %q", got)
	}

	p := validPlan()
	p.Workouts = nil
	p.Title = ""
	out := FormatResult(ValidatePlan(p))
	if !strings.Contains(out, "Errors (1)") || !strings.Contains(out, "Warnings (1)") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "[ERROR] plan: workouts") {
		t.Errorf("missing error line:\n%s", out)
	}
}
