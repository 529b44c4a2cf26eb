// Package config provides XML-based configuration management for air-gapped deployment.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// AppConfig represents the root XML configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"CircuitBench"`

	// Server configuration
	Server ServerConfig `xml:"Server"`

	// Workspace lifecycle configuration
	Workspace WorkspaceConfig `xml:"Workspace"`

	// Trace recording configuration
	Trace TraceConfig `xml:"Trace"`

	// Advanced options
	Advanced AdvancedConfig `xml:"Advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `xml:"Port"`
	BindAddress  string `xml:"BindAddress"`
	EnableCORS   bool   `xml:"EnableCORS"`
	AllowOrigins string `xml:"AllowOrigins"`
	ReadTimeout  int    `xml:"ReadTimeoutSeconds"`
	WriteTimeout int    `xml:"WriteTimeoutSeconds"`
	IdleTimeout  int    `xml:"IdleTimeoutSeconds"`
	BodyLimit    string `xml:"BodyLimit"`
}

// WorkspaceConfig contains workspace lifecycle settings
type WorkspaceConfig struct {
	DataDirectory          string `xml:"DataDirectory"`
	TimeoutMinutes         int    `xml:"TimeoutMinutes"`
	CleanupIntervalMinutes int    `xml:"CleanupIntervalMinutes"`
}

// TraceConfig contains signal trace recording settings
type TraceConfig struct {
	TempDirectory string `xml:"TempDirectory"`
	MemoryLimit   string `xml:"MemoryLimit"`
	Threads       int    `xml:"Threads"`
	BatchSize     int    `xml:"BatchSize"`
}

// AdvancedConfig contains advanced/tuning options
type AdvancedConfig struct {
	EnableRequestLogging    bool `xml:"EnableRequestLogging"`
	EnableCompression       bool `xml:"EnableCompression"`
	CompressionLevel        int  `xml:"CompressionLevel"`
	WebSocketMaxMessageSize int  `xml:"WebSocketMaxMessageSizeKB"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8090,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  30,
			// Long enough to outlive a full trace stream window
			WriteTimeout: 600,
			IdleTimeout:  120,
			BodyLimit:    "1M",
		},
		Workspace: WorkspaceConfig{
			DataDirectory:          "./data",
			TimeoutMinutes:         30,
			CleanupIntervalMinutes: 5,
		},
		Trace: TraceConfig{
			TempDirectory: "./data/temp",
			MemoryLimit:   "256MB",
			Threads:       2,
			BatchSize:     32,
		},
		Advanced: AdvancedConfig{
			EnableRequestLogging:    true,
			EnableCompression:       true,
			CompressionLevel:        5,
			WebSocketMaxMessageSize: 256,
		},
	}
}

// LoadConfig loads configuration from XML file
func LoadConfig(configPath string) (*AppConfig, error) {
	// If file doesn't exist, create default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &AppConfig{}
	if err := xml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply environment variable overrides
	config.applyEnvironmentOverrides()

	// Resolve relative paths
	config.resolvePaths(filepath.Dir(configPath))

	return config, nil
}

// Save saves the configuration to XML file
func (c *AppConfig) Save(configPath string) error {
	output, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(xml.Header + "\n<!-- CircuitBench Configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
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

	// DATA_DIR override
	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		c.Workspace.DataDirectory = dataDir
	}

	// TRACE_TEMP_DIR override (special handling)
	if tempDir := os.Getenv("TRACE_TEMP_DIR"); tempDir != "" {
		c.Trace.TempDirectory = tempDir
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	if !filepath.IsAbs(c.Workspace.DataDirectory) {
		c.Workspace.DataDirectory = filepath.Join(configDir, c.Workspace.DataDirectory)
	}
	if !filepath.IsAbs(c.Trace.TempDirectory) {
		c.Trace.TempDirectory = filepath.Join(configDir, c.Trace.TempDirectory)
	}
}

// GetDataDir returns the absolute data directory path
func (c *AppConfig) GetDataDir() string {
	return c.Workspace.DataDirectory
}

// GetTraceTempDir returns the directory for per-workspace trace databases
func (c *AppConfig) GetTraceTempDir() string {
	return c.Trace.TempDirectory
}

// GetCatalogPath returns the path of the optional part catalog override
func (c *AppConfig) GetCatalogPath() string {
	return filepath.Join(c.Workspace.DataDirectory, "defaults", "catalog.yaml")
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{
		c.Workspace.DataDirectory,
		c.Trace.TempDirectory,
		filepath.Join(c.Workspace.DataDirectory, "defaults"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
