// Package config loads the depscope tool configuration from
// .depscope/config.json, falling back to defaults when absent.
// This is the tool's own configuration; the analyzed project's path-alias
// configuration (tsconfig.json, next.config.js) is loaded by the aliases
// package.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
)

// Config represents the complete depscope configuration
type Config struct {
	Version   int             `json:"version" mapstructure:"version"`
	Discovery DiscoveryConfig `json:"discovery" mapstructure:"discovery"`
	Scoring   ScoringConfig   `json:"scoring" mapstructure:"scoring"`
	GitHub    GitHubConfig    `json:"github" mapstructure:"github"`
	LLM       LLMConfig       `json:"llm" mapstructure:"llm"`
	Logging   LoggingConfig   `json:"logging" mapstructure:"logging"`
}

// DiscoveryConfig controls file discovery
type DiscoveryConfig struct {
	// Extensions are the source file extensions considered for analysis.
	// Order matters: extension inference during resolution tries them in order.
	Extensions []string `json:"extensions" mapstructure:"extensions"`

	// ExcludeDirs are directory names skipped entirely during discovery
	ExcludeDirs []string `json:"excludeDirs" mapstructure:"excludeDirs"`

	// ExcludeGlobs are additional glob patterns matched against
	// repo-relative paths (stricter variants exclude test/fixture trees here)
	ExcludeGlobs []string `json:"excludeGlobs" mapstructure:"excludeGlobs"`

	// UseGitignore honors the repository's .gitignore during local discovery
	UseGitignore bool `json:"useGitignore" mapstructure:"useGitignore"`
}

// ScoringConfig controls relevance scoring
type ScoringConfig struct {
	// PathWeight, ContentWeight and StructuralWeight combine the three
	// sub-scores into the composite relevance score
	PathWeight       float64 `json:"pathWeight" mapstructure:"pathWeight"`
	ContentWeight    float64 `json:"contentWeight" mapstructure:"contentWeight"`
	StructuralWeight float64 `json:"structuralWeight" mapstructure:"structuralWeight"`

	// MaxFiles is the default size of the selected subset
	MaxFiles int `json:"maxFiles" mapstructure:"maxFiles"`

	// PathCandidates bounds how many files proceed to content scoring
	PathCandidates int `json:"pathCandidates" mapstructure:"pathCandidates"`

	// ContentWindowBytes bounds how much of each candidate file is read
	ContentWindowBytes int `json:"contentWindowBytes" mapstructure:"contentWindowBytes"`

	// ContentCacheSize is the LRU capacity for cached file contents
	ContentCacheSize int `json:"contentCacheSize" mapstructure:"contentCacheSize"`
}

// GitHubConfig controls the remote source tree provider
type GitHubConfig struct {
	APIBaseURL string `json:"apiBaseUrl" mapstructure:"apiBaseUrl"`
	Branch     string `json:"branch" mapstructure:"branch"`

	// MaxConcurrentListings bounds the directory-listing fan-out
	MaxConcurrentListings int `json:"maxConcurrentListings" mapstructure:"maxConcurrentListings"`

	// MaxRetries bounds backoff retries on transient network errors
	MaxRetries int `json:"maxRetries" mapstructure:"maxRetries"`

	// RateLimitBufferSeconds is the safety buffer added to the reset time
	RateLimitBufferSeconds int `json:"rateLimitBufferSeconds" mapstructure:"rateLimitBufferSeconds"`
}

// LLMConfig controls the generative-model collaborator
type LLMConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Model   string `json:"model" mapstructure:"model"`

	// MaxCandidates is the similarity pre-filter threshold: repositories
	// with more candidate files than this send only a scored shortlist
	MaxCandidates int `json:"maxCandidates" mapstructure:"maxCandidates"`

	// ShortlistSize is the size of the shortlist sent to the model
	ShortlistSize int `json:"shortlistSize" mapstructure:"shortlistSize"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Discovery: DiscoveryConfig{
			Extensions:   []string{".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs"},
			ExcludeDirs:  []string{"node_modules", ".git", ".next", "out", "build", "dist"},
			ExcludeGlobs: []string{},
			UseGitignore: false,
		},
		Scoring: ScoringConfig{
			PathWeight:         0.3,
			ContentWeight:      0.5,
			StructuralWeight:   0.2,
			MaxFiles:           15,
			PathCandidates:     50,
			ContentWindowBytes: 10000,
			ContentCacheSize:   256,
		},
		GitHub: GitHubConfig{
			APIBaseURL:             "https://api.github.com",
			Branch:                 "main",
			MaxConcurrentListings:  4,
			MaxRetries:             5,
			RateLimitBufferSeconds: 5,
		},
		LLM: LLMConfig{
			Enabled:       false,
			Model:         "gpt-4o-mini",
			MaxCandidates: 1000,
			ShortlistSize: 200,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from .depscope/config.json under repoRoot.
// A missing file yields the defaults; a malformed file is an error the
// caller downgrades to a warning.
func LoadConfig(repoRoot string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("version", defaults.Version)
	v.SetDefault("discovery.extensions", defaults.Discovery.Extensions)
	v.SetDefault("discovery.excludeDirs", defaults.Discovery.ExcludeDirs)
	v.SetDefault("discovery.excludeGlobs", defaults.Discovery.ExcludeGlobs)
	v.SetDefault("discovery.useGitignore", defaults.Discovery.UseGitignore)
	v.SetDefault("scoring.pathWeight", defaults.Scoring.PathWeight)
	v.SetDefault("scoring.contentWeight", defaults.Scoring.ContentWeight)
	v.SetDefault("scoring.structuralWeight", defaults.Scoring.StructuralWeight)
	v.SetDefault("scoring.maxFiles", defaults.Scoring.MaxFiles)
	v.SetDefault("scoring.pathCandidates", defaults.Scoring.PathCandidates)
	v.SetDefault("scoring.contentWindowBytes", defaults.Scoring.ContentWindowBytes)
	v.SetDefault("scoring.contentCacheSize", defaults.Scoring.ContentCacheSize)
	v.SetDefault("github.apiBaseUrl", defaults.GitHub.APIBaseURL)
	v.SetDefault("github.branch", defaults.GitHub.Branch)
	v.SetDefault("github.maxConcurrentListings", defaults.GitHub.MaxConcurrentListings)
	v.SetDefault("github.maxRetries", defaults.GitHub.MaxRetries)
	v.SetDefault("github.rateLimitBufferSeconds", defaults.GitHub.RateLimitBufferSeconds)
	v.SetDefault("llm.enabled", defaults.LLM.Enabled)
	v.SetDefault("llm.model", defaults.LLM.Model)
	v.SetDefault("llm.maxCandidates", defaults.LLM.MaxCandidates)
	v.SetDefault("llm.shortlistSize", defaults.LLM.ShortlistSize)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.level", defaults.Logging.Level)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(repoRoot, ".depscope"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to .depscope/config.json under repoRoot
func (c *Config) Save(repoRoot string) error {
	dir := filepath.Join(repoRoot, ".depscope")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// EnvOverride records one environment override that took effect.
type EnvOverride struct {
	Variable string
	Value    string
}

// envVarMappings maps DEPSCOPE_* variables to config fields. Each setter
// reports whether the value was usable.
var envVarMappings = map[string]func(*Config, string) bool{
	"DEPSCOPE_LOG_LEVEL": func(c *Config, v string) bool {
		c.Logging.Level = v
		return true
	},
	"DEPSCOPE_LOG_FORMAT": func(c *Config, v string) bool {
		c.Logging.Format = v
		return true
	},
	"DEPSCOPE_BRANCH": func(c *Config, v string) bool {
		c.GitHub.Branch = v
		return true
	},
	"DEPSCOPE_API_BASE_URL": func(c *Config, v string) bool {
		c.GitHub.APIBaseURL = v
		return true
	},
	"DEPSCOPE_MAX_FILES": func(c *Config, v string) bool {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return false
		}
		c.Scoring.MaxFiles = n
		return true
	},
	"DEPSCOPE_LLM_MODEL": func(c *Config, v string) bool {
		c.LLM.Model = v
		return true
	},
}

// ApplyEnvOverrides applies DEPSCOPE_* environment variables over the
// loaded configuration and returns the overrides that took effect.
// Unusable values are skipped, keeping the configured value.
func ApplyEnvOverrides(c *Config) []EnvOverride {
	var applied []EnvOverride
	for name, set := range envVarMappings {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		if set(c, v) {
			applied = append(applied, EnvOverride{Variable: name, Value: v})
		}
	}
	return applied
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if len(c.Discovery.Extensions) == 0 {
		return &ConfigError{Field: "discovery.extensions", Message: "at least one extension required"}
	}
	if c.Scoring.MaxFiles <= 0 {
		return &ConfigError{Field: "scoring.maxFiles", Message: "must be positive"}
	}
	if c.GitHub.MaxConcurrentListings <= 0 {
		return &ConfigError{Field: "github.maxConcurrentListings", Message: "must be positive"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
