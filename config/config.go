package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// SourceConfig describes how to launch one MCP tool-server subprocess.
// The command is executed directly; to reach a server inside a container,
// point command at "docker" and put the exec indirection in args.
type SourceConfig struct {
	Command string            `toml:"command"`
	Args    []string          `toml:"args"`
	Env     map[string]string `toml:"env"`
}

type TimeoutsConfig struct {
	// CallSeconds bounds the wait for a single tool response. The
	// subprocess is not killed when it elapses; only the call is abandoned.
	CallSeconds int `toml:"call_seconds"`

	// StartupSeconds bounds the initialize handshake after spawn.
	StartupSeconds int `toml:"startup_seconds"`

	// ShutdownGraceSeconds is the window a source gets to exit on its own
	// before it is force-killed.
	ShutdownGraceSeconds int `toml:"shutdown_grace_seconds"`
}

type ProviderConfig struct {
	Type      string `toml:"type"` // "gemini", "openai", "anthropic", "ollama"
	BaseURL   string `toml:"base_url"`
	Model     string `toml:"model"`
	APIKeyEnv string `toml:"api_key_env"`
}

type Config struct {
	DataDirectory    string                  `toml:"data_directory"`
	ResultsDirectory string                  `toml:"results_directory"`
	SummaryMaxChars  int                     `toml:"summary_max_chars"`
	Timeouts         TimeoutsConfig          `toml:"timeouts"`
	Provider         ProviderConfig          `toml:"provider"`
	Sources          map[string]SourceConfig `toml:"sources"`
}

var Debug = false
var DebugLog *log.Logger

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

func (c *Config) ResultsDir() string {
	return ExpandPath(c.ResultsDirectory)
}

func (c *Config) CallTimeout() time.Duration {
	return time.Duration(c.Timeouts.CallSeconds) * time.Second
}

func (c *Config) StartupTimeout() time.Duration {
	return time.Duration(c.Timeouts.StartupSeconds) * time.Second
}

func (c *Config) ShutdownGrace() time.Duration {
	return time.Duration(c.Timeouts.ShutdownGraceSeconds) * time.Second
}

// APIKey resolves the provider API key from the configured environment
// variable. Keys are never stored in the settings file.
func (c *Config) APIKey() string {
	if c.Provider.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.Provider.APIKeyEnv)
}

func (c *Config) applyEnvOverrides() {
	if dataDir := os.Getenv("MDK_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
	if resultsDir := os.Getenv("MDK_RESULTS_DIR"); resultsDir != "" {
		c.ResultsDirectory = resultsDir
	}
	if model := os.Getenv("MDK_MODEL"); model != "" {
		c.Provider.Model = model
	}
	if provider := os.Getenv("MDK_PROVIDER"); provider != "" {
		c.Provider.Type = provider
	}
}

func CheckDebug() bool {
	return os.Getenv("MDK_DEBUG") == "1"
}

// InitDebugLog opens the debug log file in the data directory when
// MDK_DEBUG=1. DebugLog stays nil otherwise; call sites guard on that.
func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: cannot create data dir for debug log: %v\n", err)
		return
	}

	logPath := filepath.Join(dataDir, "debug.log")
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: cannot open debug log: %v\n", err)
		return
	}

	Debug = true
	DebugLog = log.New(f, "", log.LstdFlags|log.Lmicroseconds)
	DebugLog.Printf("[CONFIG] Debug logging initialized")
}

// Load reads settings.toml (creating it with defaults on first run) and
// applies environment overrides.
func Load() (*Config, error) {
	cfg, err := LoadSettings()
	if err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if cfg.SummaryMaxChars <= 0 {
		cfg.SummaryMaxChars = DefaultSummaryMaxChars
	}
	if cfg.Timeouts.CallSeconds <= 0 {
		cfg.Timeouts.CallSeconds = DefaultCallSeconds
	}
	if cfg.Timeouts.StartupSeconds <= 0 {
		cfg.Timeouts.StartupSeconds = DefaultStartupSeconds
	}
	if cfg.Timeouts.ShutdownGraceSeconds <= 0 {
		cfg.Timeouts.ShutdownGraceSeconds = DefaultShutdownGraceSeconds
	}

	return cfg, nil
}
