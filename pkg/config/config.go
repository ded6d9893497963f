package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for personalens
type Config struct {
	// Extraction defaults
	Extraction ExtractionConfig `yaml:"extraction" json:"extraction"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Batch processing settings
	Batch BatchConfig `yaml:"batch" json:"batch"`

	// SQLite archive of extraction runs
	Archive ArchiveConfig `yaml:"archive" json:"archive"`

	// Prometheus textfile export
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`

	// MCP server settings
	MCP MCPConfig `yaml:"mcp" json:"mcp"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ExtractionConfig holds defaults applied to every extraction
type ExtractionConfig struct {
	Handle   string `yaml:"handle" json:"handle"`
	OwnOnly  bool   `yaml:"own_only" json:"own_only"`
	TopPosts int    `yaml:"top_posts" json:"top_posts"`
}

// OutputConfig holds result file configuration
type OutputConfig struct {
	Directory string `yaml:"directory" json:"directory"`
	Format    string `yaml:"format" json:"format"`
	Overwrite bool   `yaml:"overwrite" json:"overwrite"`
}

// BatchConfig holds batch extraction configuration
type BatchConfig struct {
	Workers       int    `yaml:"workers" json:"workers"`
	Pattern       string `yaml:"pattern" json:"pattern"`
	RetryAttempts int    `yaml:"retry_attempts" json:"retry_attempts"`
}

// ArchiveConfig holds archive database configuration
type ArchiveConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path"`
}

// MetricsConfig holds metrics export configuration
type MetricsConfig struct {
	Textfile string `yaml:"textfile" json:"textfile"`
}

// MCPConfig holds MCP server configuration
type MCPConfig struct {
	DisabledTools []string `yaml:"disabled_tools,omitempty" json:"disabled_tools,omitempty"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
	// NoColor disables ANSI colors in console output.
	NoColor bool `yaml:"no_color" json:"no_color"`
}

// Output formats accepted by OutputConfig.Format
var validFormats = map[string]bool{
	"json":  true,
	"yaml":  true,
	"table": true,
}

// DataDirectory returns the directory for application state, honoring
// XDG_DATA_HOME.
func DataDirectory() string {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "personalens")
	}
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "personalens")
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Extraction: ExtractionConfig{
			TopPosts: 5,
		},
		Output: OutputConfig{
			Directory: "./results",
			Format:    "json",
			Overwrite: false,
		},
		Batch: BatchConfig{
			Workers:       4,
			Pattern:       "*.txt",
			RetryAttempts: 3,
		},
		Archive: ArchiveConfig{
			Enabled: false,
			Path:    filepath.Join(DataDirectory(), "archive.db"),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if handle := os.Getenv("PERSONALENS_HANDLE"); handle != "" {
		c.Extraction.Handle = handle
	}
	if ownOnly := os.Getenv("PERSONALENS_OWN_ONLY"); ownOnly != "" {
		c.Extraction.OwnOnly = strings.ToLower(ownOnly) == "true"
	}

	// Output
	if outputDir := os.Getenv("PERSONALENS_OUTPUT_DIR"); outputDir != "" {
		c.Output.Directory = outputDir
	}
	if format := os.Getenv("PERSONALENS_FORMAT"); format != "" {
		c.Output.Format = format
	}

	// Batch workers
	if workers := os.Getenv("PERSONALENS_WORKERS"); workers != "" {
		var val int
		fmt.Sscanf(workers, "%d", &val)
		if val > 0 {
			c.Batch.Workers = val
		}
	}

	// Archive
	if archivePath := os.Getenv("PERSONALENS_ARCHIVE_PATH"); archivePath != "" {
		c.Archive.Path = archivePath
		c.Archive.Enabled = true
	}
	if enabled := os.Getenv("PERSONALENS_ARCHIVE_ENABLED"); enabled != "" {
		c.Archive.Enabled = strings.ToLower(enabled) == "true"
	}

	if textfile := os.Getenv("PERSONALENS_METRICS_TEXTFILE"); textfile != "" {
		c.Metrics.Textfile = textfile
	}

	// Logging level
	if logLevel := os.Getenv("PERSONALENS_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if os.Getenv("NO_COLOR") != "" {
		c.Logging.NoColor = true
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	// Check in order of precedence
	locations := []string{
		".personalens.yaml",
		".personalens.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "personalens", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "personalens", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".personalens.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// DefaultPath is where `config init` writes a new configuration file.
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "personalens", "config.yaml")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Extraction.TopPosts < 0 {
		errs = append(errs, errors.New("top posts cannot be negative"))
	}

	// Validate output settings
	if c.Output.Directory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	if !validFormats[strings.ToLower(c.Output.Format)] {
		errs = append(errs, fmt.Errorf("invalid output format %q", c.Output.Format))
	}

	// Validate batch settings
	if c.Batch.Workers <= 0 {
		errs = append(errs, errors.New("batch workers must be positive"))
	}
	if c.Batch.Workers > 64 {
		errs = append(errs, errors.New("batch workers should not exceed 64"))
	}
	if c.Batch.RetryAttempts < 0 {
		errs = append(errs, errors.New("retry attempts cannot be negative"))
	}
	if c.Batch.Pattern != "" {
		if _, err := filepath.Match(c.Batch.Pattern, ""); err != nil {
			errs = append(errs, fmt.Errorf("invalid batch pattern: %w", err))
		}
	}

	if c.Archive.Enabled && c.Archive.Path == "" {
		errs = append(errs, errors.New("archive path is required when the archive is enabled"))
	}

	// Validate logging
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Keys are flag names; values of the wrong type or zero values are ignored.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if handle, ok := flags["handle"].(string); ok && handle != "" {
		c.Extraction.Handle = handle
	}
	if ownOnly, ok := flags["own-only"].(bool); ok && ownOnly {
		c.Extraction.OwnOnly = true
	}
	if top, ok := flags["top"].(int); ok && top > 0 {
		c.Extraction.TopPosts = top
	}
	if outputDir, ok := flags["output-dir"].(string); ok && outputDir != "" {
		c.Output.Directory = outputDir
	}
	if format, ok := flags["format"].(string); ok && format != "" {
		c.Output.Format = format
	}
	if overwrite, ok := flags["overwrite"].(bool); ok && overwrite {
		c.Output.Overwrite = true
	}
	if workers, ok := flags["workers"].(int); ok && workers > 0 {
		c.Batch.Workers = workers
	}
	if pattern, ok := flags["pattern"].(string); ok && pattern != "" {
		c.Batch.Pattern = pattern
	}
	if archive, ok := flags["archive"].(bool); ok && archive {
		c.Archive.Enabled = true
	}
	if archivePath, ok := flags["archive-path"].(string); ok && archivePath != "" {
		c.Archive.Path = archivePath
	}
	if textfile, ok := flags["metrics-textfile"].(string); ok && textfile != "" {
		c.Metrics.Textfile = textfile
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if noColor, ok := flags["no-color"].(bool); ok && noColor {
		c.Logging.NoColor = true
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".personalens.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
