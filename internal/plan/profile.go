package plan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scalar holds a profile value that callers may send either as a JSON number
// or as a JSON string ("30" and 30 are both accepted).
type Scalar string

// UnmarshalJSON accepts strings, numbers, and null.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Scalar(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("scalar must be a string or number: %w", err)
	}
	*s = Scalar(n.String())
	return nil
}

// UnmarshalYAML accepts any YAML scalar.
func (s *Scalar) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: scalar expected", value.Line)
	}
	if value.Tag == "!!null" {
		*s = ""
		return nil
	}
	*s = Scalar(value.Value)
	return nil
}

func (s Scalar) String() string { return string(s) }

// Or returns the value, or def when empty.
func (s Scalar) Or(def string) string {
	if strings.TrimSpace(string(s)) == "" {
		return def
	}
	return string(s)
}

// PersonalInfo is the first wizard step.
type PersonalInfo struct {
	FullName          string `json:"fullName,omitempty" yaml:"full_name,omitempty"`
	Age               Scalar `json:"age,omitempty" yaml:"age,omitempty"`
	Gender            string `json:"gender,omitempty" yaml:"gender,omitempty"`
	Height            Scalar `json:"height,omitempty" yaml:"height,omitempty"`
	Weight            Scalar `json:"weight,omitempty" yaml:"weight,omitempty"`
	FitnessExperience string `json:"fitnessExperience,omitempty" yaml:"fitness_experience,omitempty"`
}

// Goals is the second wizard step.
type Goals struct {
	PrimaryGoal      string `json:"primaryGoal,omitempty" yaml:"primary_goal,omitempty"`
	WorkoutFrequency string `json:"workoutFrequency,omitempty" yaml:"workout_frequency,omitempty"`
	SessionDuration  Scalar `json:"sessionDuration,omitempty" yaml:"session_duration,omitempty"`
	MuscleGroupFocus string `json:"muscleGroupFocus,omitempty" yaml:"muscle_group_focus,omitempty"`
	HealthIssues     string `json:"healthIssues,omitempty" yaml:"health_issues,omitempty"`
}

// UserProfile is the flattened merge of PersonalInfo and Goals. The core treats
// every field as opaque and only substitutes defaults for missing values.
type UserProfile struct {
	PersonalInfo `yaml:",inline"`
	Goals        `yaml:",inline"`
}

// NewProfile merges the two wizard steps into one profile.
func NewProfile(info PersonalInfo, goals Goals) UserProfile {
	return UserProfile{PersonalInfo: info, Goals: goals}
}
