// Package profile holds the learner profile that steers note generation.
package profile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profile describes the reader so generated notes match their background.
type Profile struct {
	PriorExpertise    string `yaml:"prior_expertise"`
	MathComfort       string `yaml:"math_comfort"`
	DetailLevel       string `yaml:"detail_level"`
	PrimaryGoal       string `yaml:"primary_goal"`
	AdditionalContext string `yaml:"additional_context,omitempty"`
}

// Default is the profile used when no file is present.
func Default() Profile {
	return Profile{
		PriorExpertise: "some familiarity with the subject",
		MathComfort:    "comfortable with standard notation",
		DetailLevel:    "balanced",
		PrimaryGoal:    "understand the material well enough to apply it",
	}
}

// Load reads a profile from a YAML file. A missing file is not an error; the
// default profile is returned instead.
func Load(path string) (Profile, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Profile{}, fmt.Errorf("failed to read profile: %w", err)
	}
	p := Default()
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Profile{}, fmt.Errorf("failed to parse profile: %w", err)
	}
	return p, nil
}

// Save writes the profile as YAML.
func Save(path string, p Profile) error {
	raw, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	return nil
}

// Describe renders the profile as a prompt block.
func (p Profile) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Prior expertise: %s\n", p.PriorExpertise)
	fmt.Fprintf(&b, "Math comfort: %s\n", p.MathComfort)
	fmt.Fprintf(&b, "Preferred detail level: %s\n", p.DetailLevel)
	fmt.Fprintf(&b, "Primary goal: %s\n", p.PrimaryGoal)
	if p.AdditionalContext != "" {
		fmt.Fprintf(&b, "Additional context: %s\n", p.AdditionalContext)
	}
	return b.String()
}
