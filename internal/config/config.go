package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// DefaultMaxDepth bounds rendering unless configured otherwise.
const DefaultMaxDepth = 64

// Output formats understood by the renderers.
var Formats = []string{"text", "html", "markdown", "json", "summary"}

// Header styles understood by formatter.Header.
var HeaderStyles = []string{"raw", "title", "snake", "camel", "lower_camel", "kebab"}

// Glamour styles accepted for pretty Markdown output.
var PrettyStyles = []string{"auto", "dark", "light", "notty"}

// Config represents the complete configuration for shapeview
type Config struct {
	Format string       `yaml:"format"`
	Render RenderConfig `yaml:"render"`
	Pretty PrettyConfig `yaml:"pretty"`
	Syntax SyntaxConfig `yaml:"syntax"`
	Log    LogConfig    `yaml:"log"`
}

// RenderConfig controls how shapes are drawn
type RenderConfig struct {
	MaxDepth       int               `yaml:"max_depth"`
	NullText       string            `yaml:"null_text"`
	HeaderStyle    string            `yaml:"header_style"`
	HeaderMappings map[string]string `yaml:"header_mappings"`
	HiddenColumns  []ColumnRule      `yaml:"hidden_columns"`
	Indent         string            `yaml:"indent"`
}

// ColumnRule matches object keys and table columns by pattern
type ColumnRule struct {
	Pattern string `yaml:"pattern"`
	Comment string `yaml:"comment,omitempty"`

	// compiled regex (not serialized)
	regex *regexp.Regexp
}

// PrettyConfig controls terminal rendering of Markdown output
type PrettyConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Style    string `yaml:"style"`
	WordWrap int    `yaml:"word_wrap"`
}

// SyntaxConfig controls syntax-tree extraction for source files
type SyntaxConfig struct {
	NamedOnly   bool `yaml:"named_only"`
	IncludeText bool `yaml:"include_text"`
}

// LogConfig controls logging
type LogConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Format: "text",
		Render: RenderConfig{
			MaxDepth:       DefaultMaxDepth,
			NullText:       "null",
			HeaderStyle:    "raw",
			HeaderMappings: make(map[string]string),
			HiddenColumns:  []ColumnRule{},
			Indent:         "  ",
		},
		Pretty: PrettyConfig{
			Enabled:  false,
			Style:    "auto",
			WordWrap: 80,
		},
		Syntax: SyntaxConfig{
			NamedOnly:   true,
			IncludeText: true,
		},
		Log: LogConfig{
			Level:    "warn",
			Encoding: "console",
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.compilePatterns(); err != nil {
		return nil, fmt.Errorf("failed to compile patterns: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".shapeview.yml", ".shapeview.yaml", "shapeview.yml", "shapeview.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Validate checks that enumerated settings hold known values
func (c *Config) Validate() error {
	if !contains(Formats, c.Format) {
		return fmt.Errorf("invalid format '%s': must be one of %v", c.Format, Formats)
	}
	if !contains(HeaderStyles, c.Render.HeaderStyle) {
		return fmt.Errorf("invalid header style '%s': must be one of %v", c.Render.HeaderStyle, HeaderStyles)
	}
	if !contains(PrettyStyles, c.Pretty.Style) {
		return fmt.Errorf("invalid pretty style '%s': must be one of %v", c.Pretty.Style, PrettyStyles)
	}
	if c.Render.MaxDepth < 0 {
		return fmt.Errorf("invalid max_depth %d: must be zero (unlimited) or positive", c.Render.MaxDepth)
	}
	if c.Pretty.WordWrap < 0 {
		return fmt.Errorf("invalid word_wrap %d: must not be negative", c.Pretty.WordWrap)
	}
	return nil
}

// compilePatterns compiles all regex patterns in the config
func (c *Config) compilePatterns() error {
	for i, rule := range c.Render.HiddenColumns {
		compiled, err := NewColumnRule(rule.Pattern, rule.Comment)
		if err != nil {
			return err
		}
		c.Render.HiddenColumns[i] = compiled
	}
	return nil
}

// NewColumnRule compiles pattern into a rule.
func NewColumnRule(pattern, comment string) (ColumnRule, error) {
	regex, err := regexp.Compile(pattern)
	if err != nil {
		return ColumnRule{}, fmt.Errorf("invalid hidden column pattern '%s': %w", pattern, err)
	}
	return ColumnRule{Pattern: pattern, Comment: comment, regex: regex}, nil
}

// MatchesColumn checks if this rule matches the given column name. A rule
// that was not built by NewColumnRule or a config load never matches.
func (cr *ColumnRule) MatchesColumn(column string) bool {
	return cr.regex != nil && cr.regex.MatchString(column)
}

// IsHidden checks if a column or object key should be left out of rendered tables
func (c *Config) IsHidden(column string) bool {
	for i := range c.Render.HiddenColumns {
		if c.Render.HiddenColumns[i].MatchesColumn(column) {
			return true
		}
	}
	return false
}

// Overrides carries values given on the command line. Nil pointers and empty
// strings mean "not set".
type Overrides struct {
	Format   string
	MaxDepth *int
	Pretty   *bool
	Debug    bool
}

// LoadConfigWithCLI loads config with CLI argument precedence:
// CLI > config file > defaults
func LoadConfigWithCLI(configPath string, cli Overrides) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	if cli.Format != "" {
		cfg.Format = cli.Format
	}
	if cli.MaxDepth != nil {
		cfg.Render.MaxDepth = *cli.MaxDepth
	}
	if cli.Pretty != nil {
		cfg.Pretty.Enabled = *cli.Pretty
	}
	if cli.Debug {
		cfg.Log.Level = "debug"
	}

	if err := cfg.compilePatterns(); err != nil {
		return nil, fmt.Errorf("failed to compile patterns: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
