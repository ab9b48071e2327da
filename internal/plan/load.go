package plan

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// wizardProfile is the request-body shape: the two wizard steps kept apart.
type wizardProfile struct {
	PersonalInfo *PersonalInfo `json:"personalInfo" yaml:"personal_info"`
	Goals        *Goals        `json:"goals" yaml:"goals"`
}

// LoadProfile reads a profile from a JSON or YAML file, chosen by extension.
// Both the flat form and the {personalInfo, goals} form are accepted.
func LoadProfile(path string) (UserProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return UserProfile{}, fmt.Errorf("reading profile: %w", err)
	}

	var wizard wizardProfile
	if err := unmarshal(path, data, &wizard); err != nil {
		return UserProfile{}, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	if wizard.PersonalInfo != nil || wizard.Goals != nil {
		var p UserProfile
		if wizard.PersonalInfo != nil {
			p.PersonalInfo = *wizard.PersonalInfo
		}
		if wizard.Goals != nil {
			p.Goals = *wizard.Goals
		}
		return p, nil
	}

	var p UserProfile
	if err := unmarshal(path, data, &p); err != nil {
		return UserProfile{}, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return p, nil
}

// LoadPlan reads a plan document from a JSON or YAML file.
func LoadPlan(path string) (*WorkoutPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan: %w", err)
	}
	var p WorkoutPlan
	if err := unmarshal(path, data, &p); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return &p, nil
}

func unmarshal(path string, data []byte, v any) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, v)
	default:
		return json.Unmarshal(data, v)
	}
}
