package validate

import (
	"fmt"
	"strings"

	"github.com/everstacklabs/fitplan/internal/plan"
)

// Severity classifies validation issues.
type Severity int

const (
	SeverityError   Severity = iota // Plan cannot be served
	SeverityWarning                 // Served, but worth a look
)

// Issue represents a single validation problem.
type Issue struct {
	Severity Severity
	Location string
	Field    string
	Message  string
}

func (i Issue) String() string {
	sev := "ERROR"
	if i.Severity == SeverityWarning {
		sev = "WARN"
	}
	return fmt.Sprintf("[%s] %s: %s - %s", sev, i.Location, i.Field, i.Message)
}

// Result holds all validation issues.
type Result struct {
	Issues []Issue
}

// HasErrors returns true if there are any blocking errors.
func (r *Result) HasErrors() bool {
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns only error-severity issues.
func (r *Result) Errors() []Issue {
	var errs []Issue
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			errs = append(errs, i)
		}
	}
	return errs
}

// Warnings returns only warning-severity issues.
func (r *Result) Warnings() []Issue {
	var warns []Issue
	for _, i := range r.Issues {
		if i.Severity == SeverityWarning {
			warns = append(warns, i)
		}
	}
	return warns
}

// Err returns the first error as a Go error, or nil.
func (r *Result) Err() error {
	errs := r.Errors()
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("invalid plan: %s %s", errs[0].Field, errs[0].Message)
}

var knownIntensities = map[string]bool{
	"high":   true,
	"medium": true,
	"low":    true,
}

// CheckStructure checks only the invariants every served plan must hold: at
// least one session, and at least one exercise per session. The parser gates
// model output on this and nothing stricter.
func CheckStructure(p *plan.WorkoutPlan) *Result {
	r := &Result{}
	if p == nil {
		r.Issues = append(r.Issues, Issue{SeverityError, "plan", "plan", "plan is nil"})
		return r
	}
	if len(p.Workouts) == 0 {
		r.Issues = append(r.Issues, Issue{SeverityError, "plan", "workouts", "at least one session required"})
	}
	for i, w := range p.Workouts {
		if len(w.Exercises) == 0 {
			r.Issues = append(r.Issues, Issue{SeverityError, fmt.Sprintf("workouts[%d]", i), "exercises", "at least one exercise required"})
		}
	}
	return r
}

// ValidatePlan runs CheckStructure plus the stricter document rules used by
// the validate command: named exercises, non-negative costs, and warnings for
// missing labels or unknown intensities.
func ValidatePlan(p *plan.WorkoutPlan) *Result {
	r := CheckStructure(p)
	if p == nil {
		return r
	}

	if strings.TrimSpace(p.Title) == "" {
		r.Issues = append(r.Issues, Issue{SeverityWarning, "plan", "title", "required field is empty"})
	}

	for i, w := range p.Workouts {
		loc := fmt.Sprintf("workouts[%d]", i)
		if strings.TrimSpace(w.Day) == "" {
			r.Issues = append(r.Issues, Issue{SeverityWarning, loc, "day", "required field is empty"})
		}
		for j, e := range w.Exercises {
			eloc := fmt.Sprintf("%s.exercises[%d]", loc, j)
			if strings.TrimSpace(e.Name) == "" {
				r.Issues = append(r.Issues, Issue{SeverityError, eloc, "name", "required field is empty"})
			}
			// The prompt asks for one of high/medium/low, but models often send
			// "moderate" or ranges; flag, don't block.
			if e.Intensity != "" && !knownIntensities[strings.ToLower(e.Intensity)] {
				r.Issues = append(r.Issues, Issue{SeverityWarning, eloc, "intensity",
					fmt.Sprintf("unknown intensity %q, expected one of: high, medium, low", e.Intensity)})
			}
		}
	}

	if p.TotalCost < 0 || p.PhotoCost < 0 || p.ChatCost < 0 {
		r.Issues = append(r.Issues, Issue{SeverityError, "plan", "cost", "cost must not be negative"})
	}

	return r
}

// FormatResult formats validation results for display.
func FormatResult(r *Result) string {
	if len(r.Issues) == 0 {
		return "Validation passed: no issues found."
	}

	var b strings.Builder
	errors := r.Errors()
	warnings := r.Warnings()

	if len(errors) > 0 {
		fmt.Fprintf(&b, "Errors (%d):\n", len(errors))
		for _, e := range errors {
			fmt.Fprintf(&b, "  %s\n", e)
		}
	}

	if len(warnings) > 0 {
		fmt.Fprintf(&b, "Warnings (%d):\n", len(warnings))
		for _, w := range warnings {
			fmt.Fprintf(&b, "  %s\n", w)
		}
	}

	return b.String()
}
