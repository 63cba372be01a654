// Package config provides YAML-based configuration management for the viewer server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/eif-viewer/backend/internal/models"
	"github.com/eif-viewer/backend/internal/parser"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is the config file looked up next to the executable.
const DefaultFileName = "eifview.yaml"

// AppConfig represents the root YAML configuration structure
type AppConfig struct {
	// Server configuration
	Server ServerConfig `yaml:"server"`

	// Storage configuration
	Storage StorageConfig `yaml:"storage"`

	// Processing configuration
	Processing ProcessingConfig `yaml:"processing"`

	// Detector configuration
	Detector DetectorConfig `yaml:"detector"`

	// Security configuration
	Security SecurityConfig `yaml:"security"`

	// Advanced options
	Advanced AdvancedConfig `yaml:"advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port           int    `yaml:"port"`
	BindAddress    string `yaml:"bind_address"`
	EnableCORS     bool   `yaml:"enable_cors"`
	AllowOrigins   string `yaml:"allow_origins"`
	ReadTimeout    int    `yaml:"read_timeout_seconds"`
	WriteTimeout   int    `yaml:"write_timeout_seconds"`
	RequestTimeout int    `yaml:"request_timeout_seconds"`
	BodyLimit      string `yaml:"body_limit"`
}

// StorageConfig contains file storage settings
type StorageConfig struct {
	DataDirectory    string `yaml:"data_directory"`
	UploadsDirectory string `yaml:"uploads_directory"`
	ExportsDirectory string `yaml:"exports_directory"`
}

// ProcessingConfig contains loading and session settings
type ProcessingConfig struct {
	Wiggle                 int  `yaml:"wiggle"`
	SessionTimeoutMinutes  int  `yaml:"session_timeout_minutes"`
	CleanupIntervalMinutes int  `yaml:"cleanup_interval_minutes"`
	EnableCompression      bool `yaml:"enable_compression"`
	CompressionLevel       int  `yaml:"compression_level"`
}

// DetectorConfig names the trigger signals. A rules file, when set, takes
// precedence over the signals and over processing.wiggle.
type DetectorConfig struct {
	RulesFile   string `yaml:"rules_file"`
	StartSignal string `yaml:"start_signal"`
	CloseSignal string `yaml:"close_signal"`
}

// SecurityConfig contains security settings
type SecurityConfig struct {
	AllowFileDeletion bool   `yaml:"allow_file_deletion"`
	AllowedFileTypes  string `yaml:"allowed_file_types"`
}

// AdvancedConfig contains advanced/tuning options
type AdvancedConfig struct {
	LogLevel             string `yaml:"log_level"`
	EnableRequestLogging bool   `yaml:"enable_request_logging"`
	DuckDBThreads        int    `yaml:"duckdb_threads"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:           8089,
			BindAddress:    "0.0.0.0",
			EnableCORS:     true,
			AllowOrigins:   "*",
			ReadTimeout:    30,
			WriteTimeout:   30,
			RequestTimeout: 60,
			BodyLimit:      "512M",
		},
		Storage: StorageConfig{
			DataDirectory:    "./data",
			UploadsDirectory: "./data/uploads",
			ExportsDirectory: "./data/exports",
		},
		Processing: ProcessingConfig{
			Wiggle:                 parser.DefaultWiggle,
			SessionTimeoutMinutes:  30,
			CleanupIntervalMinutes: 5,
			EnableCompression:      true,
			CompressionLevel:       5,
		},
		Detector: DetectorConfig{
			StartSignal: parser.DefaultStartSignal,
			CloseSignal: parser.DefaultCloseSignal,
		},
		Security: SecurityConfig{
			AllowFileDeletion: true,
			AllowedFileTypes:  ".log,.txt,.gz",
		},
		Advanced: AdvancedConfig{
			LogLevel:             "info",
			EnableRequestLogging: true,
			DuckDBThreads:        4,
		},
	}
}

// LoadConfig loads configuration from a YAML file, creating it with
// defaults when it does not exist.
func LoadConfig(configPath string) (*AppConfig, error) {
	config := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Keys missing from the file keep their defaults
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Apply environment variable overrides
	config.applyEnvironmentOverrides()

	// Resolve relative paths
	config.resolvePaths(filepath.Dir(configPath))

	config.Advanced.LogLevel = strings.ToLower(strings.TrimSpace(config.Advanced.LogLevel))

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Save saves the configuration to a YAML file
func (c *AppConfig) Save(configPath string) error {
	output, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte("# EIF Log Viewer configuration\n# This file is auto-generated on first run\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	// PORT override
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	// DATA_DIR override moves the derived directories with it
	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		c.Storage.DataDirectory = dataDir
		c.Storage.UploadsDirectory = filepath.Join(dataDir, "uploads")
		c.Storage.ExportsDirectory = filepath.Join(dataDir, "exports")
	}

	if wiggle := os.Getenv("EIFVIEW_WIGGLE"); wiggle != "" {
		if w, err := strconv.Atoi(wiggle); err == nil {
			c.Processing.Wiggle = w
		}
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	for _, p := range []*string{
		&c.Storage.DataDirectory,
		&c.Storage.UploadsDirectory,
		&c.Storage.ExportsDirectory,
		&c.Detector.RulesFile,
	} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(configDir, *p)
		}
	}
}

// Validate reports settings the server cannot start with.
func (c *AppConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Processing.Wiggle < 0 {
		return fmt.Errorf("invalid processing wiggle %d: must be non-negative", c.Processing.Wiggle)
	}
	if c.Processing.SessionTimeoutMinutes <= 0 {
		return fmt.Errorf("invalid session timeout %d minutes: must be positive", c.Processing.SessionTimeoutMinutes)
	}
	if c.Processing.CleanupIntervalMinutes <= 0 {
		return fmt.Errorf("invalid cleanup interval %d minutes: must be positive", c.Processing.CleanupIntervalMinutes)
	}
	switch c.Advanced.LogLevel {
	case "debug", "info", "warn", "error", "off":
	default:
		return fmt.Errorf("invalid log level %q", c.Advanced.LogLevel)
	}
	return nil
}

// NewDetector builds the sequence detector described by the configuration.
func (c *AppConfig) NewDetector() (*parser.Detector, error) {
	d := parser.NewDetector()
	d.Wiggle = c.Processing.Wiggle

	d, err := parser.ApplyRules(d, models.DetectorRules{
		StartSignal: c.Detector.StartSignal,
		CloseSignal: c.Detector.CloseSignal,
	})
	if err != nil {
		return nil, err
	}

	if c.Detector.RulesFile == "" {
		return d, nil
	}

	rules, err := parser.ReadDetectorRules(c.Detector.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("loading detector rules: %w", err)
	}
	return parser.ApplyRules(d, rules)
}

// IsAllowedFileType reports whether name has one of the allowed extensions.
func (c *AppConfig) IsAllowedFileType(name string) bool {
	if strings.TrimSpace(c.Security.AllowedFileTypes) == "" {
		return true
	}
	lower := strings.ToLower(name)
	for _, ext := range strings.Split(c.Security.AllowedFileTypes, ",") {
		if ext = strings.TrimSpace(strings.ToLower(ext)); ext != "" && strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// GetDataDir returns the absolute data directory path
func (c *AppConfig) GetDataDir() string {
	return c.Storage.DataDirectory
}

// GetUploadDir returns the absolute uploads directory path
func (c *AppConfig) GetUploadDir() string {
	return c.Storage.UploadsDirectory
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDirectory,
		c.Storage.UploadsDirectory,
		c.Storage.ExportsDirectory,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
