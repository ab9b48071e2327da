package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/everstacklabs/fitplan/internal/plan"
	"github.com/everstacklabs/fitplan/internal/validate"
)

// Parse stages reported by ParseError.
const (
	StageExtract  = "extract"
	StageDecode   = "decode"
	StageValidate = "validate"
)

// ErrNoObject is returned when the text contains no {...} candidate.
var ErrNoObject = errors.New("no JSON object found in response")

// ParseError describes why model output could not be turned into a plan.
type ParseError struct {
	Stage string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse workout plan (%s): %v", e.Stage, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse turns raw model output into a plan. It never fails on bad model text:
// when the output cannot be recovered it returns plan.Minimal() with
// ParseWarning set to the failure reason.
func Parse(raw string) (*plan.WorkoutPlan, error) {
	p, err := ParseStrict(raw)
	if err == nil {
		return p, nil
	}

	var pe *ParseError
	if !errors.As(err, &pe) {
		return nil, err
	}

	slog.Warn("plan parse failed, using minimal plan",
		"stage", pe.Stage,
		"error", pe.Err,
		"preview", preview(raw, 200))

	fallback := plan.Minimal()
	fallback.ParseWarning = pe.Error()
	return fallback, nil
}

// ParseStrict is Parse without the minimal-plan fallback. Failures are
// returned as *ParseError.
func ParseStrict(raw string) (*plan.WorkoutPlan, error) {
	candidate, err := ExtractObject(raw)
	if err != nil {
		return nil, &ParseError{Stage: StageExtract, Err: err}
	}

	p, err := decode(candidate)
	if err != nil {
		var rerr error
		if p, rerr = decodeRepaired(candidate); rerr != nil {
			return nil, &ParseError{Stage: StageDecode, Err: rerr}
		}
		slog.Debug("plan decoded after repair", "error", err)
	}

	if res := validate.CheckStructure(p); res.HasErrors() {
		return nil, &ParseError{Stage: StageValidate, Err: res.Err()}
	}

	return p, nil
}

// decodeRepaired applies the repair passes one at a time and stops at the
// first rewrite that decodes, so later lossy passes only run when needed.
func decodeRepaired(s string) (*plan.WorkoutPlan, error) {
	var err error
	for _, pass := range Repairs {
		s = pass.Apply(s)
		var p *plan.WorkoutPlan
		if p, err = decode(s); err == nil {
			slog.Debug("plan repaired", "pass", pass.Name)
			return p, nil
		}
	}
	return nil, err
}

// decode reads only the model-owned fields. Annotation fields in the model
// output (costs, error markers, ids) are dropped.
func decode(s string) (*plan.WorkoutPlan, error) {
	var sk plan.Skeleton
	if err := json.Unmarshal([]byte(s), &sk); err != nil {
		return nil, err
	}
	return &plan.WorkoutPlan{
		Title:           sk.Title,
		Description:     sk.Description,
		Frequency:       sk.Frequency,
		SessionDuration: sk.SessionDuration,
		Workouts:        sk.Workouts,
		Progression:     sk.Progression,
		ImportantNotes:  sk.ImportantNotes,
	}, nil
}

// StripFences removes markdown code fences, both language-tagged and bare.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```JSON", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// ExtractObject strips fences and returns the text from the first '{' to the
// last '}', which tolerates prose before and after the object.
func ExtractObject(s string) (string, error) {
	s = StripFences(s)
	first := strings.Index(s, "{")
	last := strings.LastIndex(s, "}")
	if first == -1 || last <= first {
		return "", ErrNoObject
	}
	return s[first : last+1], nil
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
