package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"github.com/acefgin/mdk-mcp/config"
)

const protocolVersion = "2025-06-18"

// ProcessManager supervises one long-lived MCP server subprocess per
// tool source and provides the blocking request/response primitive the
// bridge calls. The source map is written only during startup/shutdown;
// per-handle serialization is the only per-call locking.
type ProcessManager struct {
	mu      sync.RWMutex
	servers map[string]*ServerProcess

	callTimeout    time.Duration
	startupTimeout time.Duration
	shutdownGrace  time.Duration
}

func NewProcessManager(cfg *config.Config) *ProcessManager {
	return &ProcessManager{
		servers:        make(map[string]*ServerProcess),
		callTimeout:    cfg.CallTimeout(),
		startupTimeout: cfg.StartupTimeout(),
		shutdownGrace:  cfg.ShutdownGrace(),
	}
}

// Start spawns the source's subprocess, runs the initialize handshake
// and caches its tools/list. There is no degraded mode: a source that
// fails any part of startup is torn down and reported.
func (pm *ProcessManager) Start(ctx context.Context, name string, src config.SourceConfig) error {
	pm.mu.Lock()
	if existing, ok := pm.servers[name]; ok && existing.State == StateRunning {
		pm.mu.Unlock()
		return fmt.Errorf("tool source %q already running", name)
	}
	pm.mu.Unlock()

	env := buildEnv(src.Env)

	// Capture the exec.Cmd so shutdown can escalate past the transport
	// to SIGTERM/SIGKILL. The command is created without a context:
	// call-level cancellation must never kill the subprocess.
	var capturedCmd *exec.Cmd
	cmdFunc := func(_ context.Context, command string, env []string, args []string) (*exec.Cmd, error) {
		cmd := exec.Command(command, args...)
		cmd.Env = env
		capturedCmd = cmd
		return cmd, nil
	}

	mcpClient, err := client.NewStdioMCPClientWithOptions(
		src.Command,
		env,
		src.Args,
		transport.WithCommandFunc(cmdFunc),
	)
	if err != nil {
		return &LaunchError{Source: name, Err: err}
	}

	if config.DebugLog != nil && capturedCmd != nil && capturedCmd.Process != nil {
		config.DebugLog.Printf("[MCP] Start: source %q spawned (PID %d)", name, capturedCmd.Process.Pid)
	}

	proc := &ServerProcess{
		Name:   name,
		Config: src,
		Client: mcpClient,
		Cmd:    capturedCmd,
		State:  StateRunning,
	}

	initCtx, cancel := context.WithTimeout(ctx, pm.startupTimeout)
	defer cancel()

	initReq := mcptypes.InitializeRequest{
		Params: mcptypes.InitializeParams{
			ProtocolVersion: protocolVersion,
			Capabilities:    mcptypes.ClientCapabilities{},
			ClientInfo: mcptypes.Implementation{
				Name:    "mdk-mcp",
				Version: "1.0.0",
			},
		},
	}

	if _, err := mcpClient.Initialize(initCtx, initReq); err != nil {
		pm.terminate(proc)
		return &HandshakeError{Source: name, Err: err}
	}

	toolsResult, err := mcpClient.ListTools(initCtx, mcptypes.ListToolsRequest{})
	if err != nil {
		pm.terminate(proc)
		return &HandshakeError{Source: name, Err: fmt.Errorf("tools/list: %w", err)}
	}
	proc.Tools = toolsResult.Tools

	pm.mu.Lock()
	pm.servers[name] = proc
	pm.mu.Unlock()

	if config.DebugLog != nil {
		config.DebugLog.Printf("[MCP] Start: source %q ready with %d tools", name, len(proc.Tools))
	}

	return nil
}

// Call sends one tools/call request and blocks for its response.
// Requests on the same handle are strictly serialized: the next request
// is not written until the previous response was read or abandoned.
// A timeout abandons the call but leaves the subprocess running.
func (pm *ProcessManager) Call(ctx context.Context, source, tool string, args map[string]any) (string, error) {
	// State is read under pm.mu: Stop flips it while holding the lock,
	// so checking after RUnlock would race with a concurrent shutdown.
	pm.mu.RLock()
	proc, ok := pm.servers[source]
	running := ok && proc.State == StateRunning
	pm.mu.RUnlock()

	if !running {
		return "", &UnknownSourceError{Source: source}
	}

	proc.callMu.Lock()
	defer proc.callMu.Unlock()

	callCtx, cancel := context.WithTimeout(ctx, pm.callTimeout)
	defer cancel()

	if config.DebugLog != nil {
		config.DebugLog.Printf("[MCP] Call: %s.%s args=%v", source, tool, args)
	}

	result, err := proc.Client.CallTool(callCtx, mcptypes.CallToolRequest{
		Params: mcptypes.CallToolParams{
			Name:      tool,
			Arguments: args,
		},
	})
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			return "", &ToolTimeoutError{Source: source, Tool: tool, Timeout: pm.callTimeout}
		}
		if ctx.Err() != nil {
			// Whole-program cancellation: abandon the call.
			return "", ctx.Err()
		}
		return "", &ToolExecutionError{Source: source, Tool: tool, Message: err.Error()}
	}

	text := extractText(result)
	if result.IsError {
		return "", &ToolExecutionError{Source: source, Tool: tool, Message: text}
	}

	return text, nil
}

// Tools returns the cached tools/list for a source, used by the bridge
// to validate tool names before dispatch.
func (pm *ProcessManager) Tools(source string) ([]mcptypes.Tool, error) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	proc, ok := pm.servers[source]
	if !ok || proc.State != StateRunning {
		return nil, &UnknownSourceError{Source: source}
	}
	return proc.Tools, nil
}

// Sources returns the names of running sources.
func (pm *ProcessManager) Sources() []string {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	names := make([]string, 0, len(pm.servers))
	for name, proc := range pm.servers {
		if proc.State == StateRunning {
			names = append(names, name)
		}
	}
	return names
}

// Stop tears one source down in three bounded stages: close the
// transport (which closes the child's stdin), SIGTERM with a grace
// window, then SIGKILL with an unconditional wait. It never returns an
// error for the teardown itself and never leaves the process alive;
// a canceled ctx only shortens the path to the kill.
func (pm *ProcessManager) Stop(ctx context.Context, source string) error {
	pm.mu.Lock()
	proc, ok := pm.servers[source]
	if !ok {
		pm.mu.Unlock()
		return &UnknownSourceError{Source: source}
	}
	proc.State = StateShuttingDown
	delete(pm.servers, source)
	pm.mu.Unlock()

	pm.stopProcess(ctx, proc)
	proc.State = StateStopped

	if config.DebugLog != nil {
		config.DebugLog.Printf("[MCP] Stop: source %q stopped", source)
	}
	return nil
}

// Shutdown stops all sources in parallel.
func (pm *ProcessManager) Shutdown(ctx context.Context) {
	pm.mu.Lock()
	names := make([]string, 0, len(pm.servers))
	for name := range pm.servers {
		names = append(names, name)
	}
	pm.mu.Unlock()

	if config.DebugLog != nil {
		config.DebugLog.Printf("[MCP] Shutdown: stopping %d sources", len(names))
	}

	var wg sync.WaitGroup
	for _, name := range names {
		wg.Add(1)
		go func(n string) {
			defer wg.Done()
			_ = pm.Stop(ctx, n)
		}(name)
	}
	wg.Wait()
}

func (pm *ProcessManager) stopProcess(ctx context.Context, proc *ServerProcess) {
	// Stage 1: close the transport. This closes the child's stdin,
	// signalling it to stop expecting requests. Close can hang on a
	// wedged child, so it runs in a goroutine with the grace bound.
	if proc.Client != nil {
		closed := make(chan struct{})
		go func() {
			_ = proc.Client.Close()
			close(closed)
		}()

		select {
		case <-closed:
		case <-time.After(pm.shutdownGrace):
		case <-ctx.Done():
			// Caller is itself being torn down: fall through to the kill.
		}
	}

	cmd := proc.Cmd
	if cmd == nil || cmd.Process == nil {
		return
	}

	// Stage 2: graceful termination, skipped when already canceled.
	if !processExited(cmd) && ctx.Err() == nil {
		_ = cmd.Process.Signal(syscall.SIGTERM)

		deadline := time.Now().Add(pm.shutdownGrace)
		for !processExited(cmd) && time.Now().Before(deadline) {
			if ctx.Err() != nil {
				break
			}
			time.Sleep(20 * time.Millisecond)
		}
	}

	// Stage 3: forceful kill, waited on unconditionally. SIGKILL cannot
	// be ignored, so this loop terminates.
	if !processExited(cmd) {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[MCP] stopProcess: force-killing %q (PID %d)", proc.Name, cmd.Process.Pid)
		}
		_ = cmd.Process.Kill()
		for !processExited(cmd) {
			time.Sleep(20 * time.Millisecond)
		}
	}
}

// terminate is the startup-failure path: the handshake never completed,
// so there is nothing to be graceful about.
func (pm *ProcessManager) terminate(proc *ServerProcess) {
	if proc.Client != nil {
		closed := make(chan struct{})
		go func() {
			_ = proc.Client.Close()
			close(closed)
		}()
		select {
		case <-closed:
		case <-time.After(time.Second):
		}
	}
	if proc.Cmd != nil && proc.Cmd.Process != nil && !processExited(proc.Cmd) {
		_ = proc.Cmd.Process.Kill()
	}
	proc.State = StateStopped
}

// processExited reports whether the subprocess is gone. ProcessState is
// set once the transport's own wait reaps the child; the zero-signal
// probe covers the case where that wait has not completed yet.
func processExited(cmd *exec.Cmd) bool {
	if cmd.ProcessState != nil {
		return true
	}
	return cmd.Process.Signal(syscall.Signal(0)) != nil
}

// extractText flattens the text parts of an MCP result. Non-text
// content falls back to its JSON rendering so nothing is dropped.
func extractText(result *mcptypes.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}

	var parts []string
	for _, c := range result.Content {
		if tc, ok := c.(mcptypes.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, "\n")
	}

	raw, err := json.Marshal(result.Content)
	if err != nil {
		return fmt.Sprintf("%v", result.Content)
	}
	return string(raw)
}

func buildEnv(extra map[string]string) []string {
	// Keep the parent environment so PATH and API keys pass through.
	env := os.Environ()
	for k, v := range extra {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	return env
}
