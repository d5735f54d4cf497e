package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Profile carries per-user preference overrides loaded from profile.json.
// Everything here is optional: an absent profile leaves the YAML config
// untouched.
type Profile struct {
	Name               string          `json:"name"`
	TargetTechnologies []string        `json:"target_technologies"`
	SeniorityTerms     []string        `json:"seniority_terms"`
	Locations          []string        `json:"locations"`
	Scoring            *ProfileScoring `json:"scoring"`
	TechStackWeights   map[string]int  `json:"tech_stack_weights"`
}

type ProfileScoring struct {
	Threshold int            `json:"threshold"`
	Weights   map[string]int `json:"weights"`
}

// LoadProfile reads profile.json from path. A missing file is not an error:
// it returns a nil profile and the caller proceeds with config defaults.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	return &p, nil
}

// Apply merges the profile's overrides into the config. Profile values win
// over YAML values wherever both are set.
func (p *Profile) Apply(cfg *Config) {
	if p == nil {
		return
	}

	if len(p.TargetTechnologies) > 0 {
		cfg.Rules.TargetTechnologies = p.TargetTechnologies
	}
	if len(p.SeniorityTerms) > 0 {
		cfg.Scoring.SeniorityTerms = p.SeniorityTerms
	}
	if len(p.Locations) > 0 {
		cfg.Scoring.RegionTerms = p.Locations
	}
	if len(p.TechStackWeights) > 0 {
		cfg.Scoring.TechStack = p.TechStackWeights
	}
	if p.Scoring != nil {
		if p.Scoring.Threshold > 0 {
			cfg.Scoring.Threshold = p.Scoring.Threshold
		}
		if len(p.Scoring.Weights) > 0 {
			if cfg.Scoring.Weights == nil {
				cfg.Scoring.Weights = make(map[string]int)
			}
			for k, v := range p.Scoring.Weights {
				cfg.Scoring.Weights[k] = v
			}
		}
	}
}
