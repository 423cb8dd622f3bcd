package mcp

import (
	"os/exec"
	"sync"

	"github.com/mark3labs/mcp-go/client"
	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"github.com/acefgin/mdk-mcp/config"
)

// ProcState tracks a handle through its lifecycle. Stopped is terminal;
// reconnecting to a source requires a fresh Start.
type ProcState int

const (
	StateNotStarted ProcState = iota
	StateRunning
	StateShuttingDown
	StateStopped
)

func (s ProcState) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting-down"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// ServerProcess is the live handle for one tool-source subprocess: the
// MCP client speaking one-line JSON-RPC over its stdio, the captured
// exec.Cmd for signal-level teardown, and the discovered tool list.
type ServerProcess struct {
	Name   string
	Config config.SourceConfig
	Client *client.Client
	Cmd    *exec.Cmd
	Tools  []mcptypes.Tool
	State  ProcState

	// callMu serializes requests on this handle: the line-oriented
	// channel cannot multiplex responses to interleaved requests.
	callMu sync.Mutex
}
