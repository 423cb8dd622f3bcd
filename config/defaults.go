package config

// Default knob values. The call timeout and shutdown grace carry over
// from the deployed system's values; both are configurable in
// settings.toml rather than baked in.
const (
	DefaultSummaryMaxChars      = 5000
	DefaultCallSeconds          = 60
	DefaultStartupSeconds       = 30
	DefaultShutdownGraceSeconds = 2
)

func DefaultConfig() *Config {
	return &Config{
		DataDirectory:    "~/.local/share/mdk-mcp",
		ResultsDirectory: "~/.local/share/mdk-mcp/results",
		SummaryMaxChars:  DefaultSummaryMaxChars,
		Timeouts: TimeoutsConfig{
			CallSeconds:          DefaultCallSeconds,
			StartupSeconds:       DefaultStartupSeconds,
			ShutdownGraceSeconds: DefaultShutdownGraceSeconds,
		},
		Provider: ProviderConfig{
			Type:      "gemini",
			Model:     "gemini-2.5-flash-lite",
			APIKeyEnv: "GOOGLE_API_KEY",
		},
		Sources: map[string]SourceConfig{
			"database": {
				Command: "docker",
				Args:    []string{"exec", "-i", "ndiag-database-server", "python", "/app/database_mcp_server.py"},
			},
		},
	}
}

func GenerateConfigTemplate() string {
	return `# mdk-mcp Configuration
# Location: ~/.config/mdk-mcp/settings.toml
# This file uses TOML format: https://toml.io

# Directory for sessions, the archive index and the debug log
data_directory = "~/.local/share/mdk-mcp"

# Directory where full tool results are archived.
# Files accumulate without eviction; each one is an audit record.
results_directory = "~/.local/share/mdk-mcp/results"

# Character budget for tool-result summaries handed to the LLM
summary_max_chars = 5000

[timeouts]
# Per-call response deadline. Network-bound tools can legitimately take
# tens of seconds; the subprocess survives a timeout.
call_seconds = 60

# Initialize-handshake deadline after a source is spawned
startup_seconds = 30

# How long a source gets to exit on SIGTERM before SIGKILL
shutdown_grace_seconds = 2

[provider]
# LLM backend: "gemini", "openai", "anthropic" or "ollama"
type = "gemini"
model = "gemini-2.5-flash-lite"
# Name of the environment variable holding the API key
api_key_env = "GOOGLE_API_KEY"

# Each [sources.<name>] block launches one MCP tool server over stdio.
[sources.database]
command = "docker"
args = ["exec", "-i", "ndiag-database-server", "python", "/app/database_mcp_server.py"]
`
}
