package config

import (
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the complete ARK configuration
type Config struct {
	Version   int    `json:"version" mapstructure:"version"`
	Workspace string `json:"workspace" mapstructure:"workspace"`

	Output    OutputConfig    `json:"output" mapstructure:"output"`
	Analysis  AnalysisConfig  `json:"analysis" mapstructure:"analysis"`
	Safety    SafetyConfig    `json:"safety" mapstructure:"safety"`
	Transform TransformConfig `json:"transform" mapstructure:"transform"`
	Store     StoreConfig     `json:"store" mapstructure:"store"`
	Logging   LoggingConfig   `json:"logging" mapstructure:"logging"`
}

// OutputConfig controls where generated artifacts and code are written
type OutputConfig struct {
	// RootName is the quarantined output directory created inside the
	// workspace. Everything the pipeline writes lives under it.
	RootName string `json:"rootName" mapstructure:"rootName"`
}

// AnalysisConfig contains analysis pipeline configuration
type AnalysisConfig struct {
	DefaultTier string `json:"defaultTier" mapstructure:"defaultTier"`
	// Workers sets the extraction worker pool size. 1 keeps the pipeline
	// fully synchronous.
	Workers int `json:"workers" mapstructure:"workers"`
	// ParseTimeoutSeconds bounds per-file parsing.
	ParseTimeoutSeconds int `json:"parseTimeoutSeconds" mapstructure:"parseTimeoutSeconds"`
	// CacheSize is the extraction LRU cache capacity (entries).
	CacheSize int `json:"cacheSize" mapstructure:"cacheSize"`
}

// SafetyConfig contains safety layer configuration
type SafetyConfig struct {
	// MaxGeneratedFileBytes is the size ceiling for generated-output validation.
	MaxGeneratedFileBytes int `json:"maxGeneratedFileBytes" mapstructure:"maxGeneratedFileBytes"`
	// ProtectedRoots are workspace-relative directories protected at
	// session start, sourced from ark.toml.
	ProtectedRoots []string `json:"protectedRoots,omitempty" mapstructure:"protectedRoots"`
}

// TransformConfig contains transformation planning configuration
type TransformConfig struct {
	DefaultStrategy string `json:"defaultStrategy" mapstructure:"defaultStrategy"`
}

// StoreConfig selects the artifact store backend
type StoreConfig struct {
	// Backend is "file" or "sqlite".
	Backend string `json:"backend" mapstructure:"backend"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:   1,
		Workspace: ".",
		Output: OutputConfig{
			RootName: ".ark_output",
		},
		Analysis: AnalysisConfig{
			DefaultTier:         "comprehensive",
			Workers:             1,
			ParseTimeoutSeconds: 300,
			CacheSize:           512,
		},
		Safety: SafetyConfig{
			MaxGeneratedFileBytes: 1_000_000,
		},
		Transform: TransformConfig{
			DefaultStrategy: "conservative",
		},
		Store: StoreConfig{
			Backend: "file",
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// Load loads configuration from .ark/config.yaml under the workspace,
// falling back to defaults when no config file exists. Environment
// variables prefixed with ARK_ override file values.
func Load(workspace string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("version", defaults.Version)
	v.SetDefault("workspace", workspace)
	v.SetDefault("output.rootName", defaults.Output.RootName)
	v.SetDefault("analysis.defaultTier", defaults.Analysis.DefaultTier)
	v.SetDefault("analysis.workers", defaults.Analysis.Workers)
	v.SetDefault("analysis.parseTimeoutSeconds", defaults.Analysis.ParseTimeoutSeconds)
	v.SetDefault("analysis.cacheSize", defaults.Analysis.CacheSize)
	v.SetDefault("safety.maxGeneratedFileBytes", defaults.Safety.MaxGeneratedFileBytes)
	v.SetDefault("transform.defaultStrategy", defaults.Transform.DefaultStrategy)
	v.SetDefault("store.backend", defaults.Store.Backend)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.level", defaults.Logging.Level)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(workspace, ".ark"))
	v.SetEnvPrefix("ARK")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// The manifest, when present, takes precedence over config defaults for
	// project-level facts (protected roots, output root name).
	manifest, err := LoadManifest(workspace)
	if err != nil {
		return nil, err
	}
	if manifest != nil {
		cfg.applyManifest(manifest)
	}

	return &cfg, nil
}

func (c *Config) applyManifest(m *Manifest) {
	if m.Output.RootName != "" {
		c.Output.RootName = m.Output.RootName
	}
	if m.Analysis.DefaultTier != "" {
		c.Analysis.DefaultTier = m.Analysis.DefaultTier
	}
	if m.Analysis.Workers > 0 {
		c.Analysis.Workers = m.Analysis.Workers
	}
	if len(m.Safety.ProtectedRoots) > 0 {
		c.Safety.ProtectedRoots = append(c.Safety.ProtectedRoots, m.Safety.ProtectedRoots...)
	}
}
