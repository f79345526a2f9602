// Package agent implements the conversational SQL assistant: a bounded
// tool-calling loop where the model answers questions about the connected
// database by invoking registered tools.
package agent

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default profile values, used when the profile file omits a field or no
// profile file is configured.
const (
	DefaultTemperature = 0.2
	DefaultMaxTokens   = 1024
	DefaultMaxRounds   = 8
)

// Profile configures the assistant's behavior. Profiles are plain YAML files
// so prompts can be tuned without a rebuild.
type Profile struct {
	Name string `yaml:"name"`
	// Model overrides the provider default model when non-empty.
	Model string `yaml:"model"`
	// Instructions is appended to the built-in system prompt.
	Instructions string  `yaml:"instructions"`
	Temperature  float32 `yaml:"temperature"`
	MaxTokens    int     `yaml:"max_tokens"`
	// MaxRounds bounds the tool-calling loop per user turn.
	MaxRounds int `yaml:"max_rounds"`
}

// DefaultProfile returns the profile used when no file is configured.
func DefaultProfile() Profile {
	return Profile{
		Name:        "sqlpilot",
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
		MaxRounds:   DefaultMaxRounds,
	}
}

// LoadProfile reads a YAML profile from path. Missing fields fall back to
// defaults; an empty path returns the default profile.
func LoadProfile(path string) (Profile, error) {
	profile := DefaultProfile()
	if path == "" {
		return profile, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("agent: read profile %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return Profile{}, fmt.Errorf("agent: parse profile %s: %w", path, err)
	}

	if profile.Name == "" {
		profile.Name = "sqlpilot"
	}
	if profile.Temperature <= 0 {
		profile.Temperature = DefaultTemperature
	}
	if profile.MaxTokens <= 0 {
		profile.MaxTokens = DefaultMaxTokens
	}
	if profile.MaxRounds <= 0 {
		profile.MaxRounds = DefaultMaxRounds
	}
	return profile, nil
}
