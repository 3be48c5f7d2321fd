// Package config loads session/pipeline YAML configuration, matching the
// teacher's yaml-tagged structs (inspector/info).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PointsToConfig selects the points-to context strategy and its tunables.
type PointsToConfig struct {
	Strategy    string `yaml:"strategy"` // insensitive, k-call-site, object-sensitive, 2-object, type-sensitive, hybrid, selective
	K           int    `yaml:"k"`
	ObjectDepth int    `yaml:"objectDepth"`
}

// TaintConfig tunes the taint engine.
type TaintConfig struct {
	MaxDepth     int  `yaml:"maxDepth"`     // default 100
	UseSMTPruning bool `yaml:"useSmtPruning"`
	RoundCap     int  `yaml:"roundCap"` // default 10
}

// SMTConfig tunes the SMT orchestrator.
type SMTConfig struct {
	Backend    string `yaml:"backend"` // e.g. "mock", "z3"
	TimeoutMS  int    `yaml:"timeoutMs"` // default 5000, overridable by Z3_TIMEOUT_MS
}

// ImpactConfig tunes change-impact propagation and the cost model.
type ImpactConfig struct {
	DefaultDepthCap  int      `yaml:"defaultDepthCap"`  // default 2
	CriticalDepthCap int      `yaml:"criticalDepthCap"` // default 5
	CriticalNodeIDs  []string `yaml:"criticalNodeIds"`
}

// Config is the top-level session/pipeline configuration document.
type Config struct {
	PointsTo        PointsToConfig `yaml:"pointsTo"`
	Taint           TaintConfig    `yaml:"taint"`
	SMT             SMTConfig      `yaml:"smt"`
	Impact          ImpactConfig   `yaml:"impact"`
	EnabledStages   []string       `yaml:"enabledStages"`
	CloneMinTokens  int            `yaml:"cloneMinTokens"`
	CloneMinLOC     int            `yaml:"cloneMinLoc"`
}

// Default returns the spec-mandated default configuration.
func Default() Config {
	return Config{
		PointsTo: PointsToConfig{Strategy: "insensitive"},
		Taint:    TaintConfig{MaxDepth: 100, UseSMTPruning: true, RoundCap: 10},
		SMT:      SMTConfig{Backend: "mock", TimeoutMS: 5000},
		Impact:   ImpactConfig{DefaultDepthCap: 2, CriticalDepthCap: 5},
		CloneMinTokens: 20,
		CloneMinLOC:    3,
	}
}

// applyEnv lets Z3_TIMEOUT_MS override SMT.TimeoutMS, the one
// environment-variable convention spec §6 allows.
func (c *Config) applyEnv() {
	if v := os.Getenv("Z3_TIMEOUT_MS"); v != "" {
		var ms int
		if _, err := fmt.Sscanf(v, "%d", &ms); err == nil && ms > 0 {
			c.SMT.TimeoutMS = ms
		}
	}
}

// Load reads a YAML configuration document from path, defaulting unset
// fields and honoring the Z3_TIMEOUT_MS environment override.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	cfg.applyEnv()
	return cfg, nil
}
