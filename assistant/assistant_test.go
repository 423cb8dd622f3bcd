package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"github.com/acefgin/mdk-mcp/provider"
	"github.com/acefgin/mdk-mcp/storage"
)

// scriptedStep is one canned completion from the fake LLM.
type scriptedStep struct {
	text  string
	calls []provider.ToolCall
}

// scriptedProvider replays a fixed sequence of completions and records
// the message lists it was given.
type scriptedProvider struct {
	steps    []scriptedStep
	pos      int
	received [][]provider.Message
}

func (p *scriptedProvider) Chat(ctx context.Context, messages []provider.Message, callback provider.StreamCallback) error {
	return p.ChatWithTools(ctx, messages, nil, callback)
}

func (p *scriptedProvider) ChatWithTools(_ context.Context, messages []provider.Message, _ []mcptypes.Tool, callback provider.StreamCallback) error {
	p.received = append(p.received, messages)

	var step scriptedStep
	if p.pos < len(p.steps) {
		step = p.steps[p.pos]
		p.pos++
	} else {
		step = scriptedStep{text: "Still working on the analysis."}
	}

	if step.text != "" {
		if err := callback(step.text, nil); err != nil {
			return err
		}
	}
	if len(step.calls) > 0 {
		return callback("", step.calls)
	}
	return nil
}

func (p *scriptedProvider) GetModel() string { return "scripted-model" }

func (p *scriptedProvider) SetModel(string) {}

func (p *scriptedProvider) Ping(context.Context) error { return nil }

// stubExecutor fakes the bridge.
type stubExecutor struct {
	results   map[string]string
	errs      map[string]error
	calls     []string
	sessionID string
}

func (e *stubExecutor) Execute(_ context.Context, name string, _ map[string]any) (string, error) {
	e.calls = append(e.calls, name)
	if err, ok := e.errs[name]; ok {
		return "", err
	}
	return e.results[name], nil
}

func (e *stubExecutor) Tools() []mcptypes.Tool {
	return []mcptypes.Tool{{Name: "get_sequences"}}
}

func (e *stubExecutor) BindSession(id string) { e.sessionID = id }

func newTestAssistant(t *testing.T, p provider.Provider, e ToolExecutor) *Assistant {
	t.Helper()
	sessions, err := storage.NewSessionStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewSessionStorage: %v", err)
	}
	return New(p, e, sessions)
}

func TestRunWorkflowTerminates(t *testing.T) {
	llm := &scriptedProvider{steps: []scriptedStep{
		{text: "Plan: retrieve COI sequences for Salmo salar, then delegate to DatabaseAgent."},
		{calls: []provider.ToolCall{{Name: "get_sequences", Arguments: map[string]any{"taxon": "Salmo salar", "region": "COI"}}}},
		{text: "Data collection complete. Retrieved 87 sequences for Salmo salar. TERMINATE"},
	}}
	executor := &stubExecutor{results: map[string]string{
		"get_sequences": "Retrieved 87 sequences\n\n[Full result saved to: tool_result_get_sequences_x.txt]",
	}}
	a := newTestAssistant(t, llm, executor)

	session, err := a.RunWorkflow(context.Background(), "Design qPCR primers for Salmo salar")
	if err != nil {
		t.Fatalf("RunWorkflow: %v", err)
	}

	if session.Status != StatusCompleted {
		t.Errorf("Status = %q, want %q", session.Status, StatusCompleted)
	}
	if executor.sessionID != session.ID {
		t.Error("executor not bound to the workflow session")
	}
	if len(executor.calls) != 1 || executor.calls[0] != "get_sequences" {
		t.Errorf("executor calls = %v", executor.calls)
	}

	// task, coordinator, tool result, database summary
	roles := make([]string, len(session.Messages))
	for i, msg := range session.Messages {
		roles[i] = msg.Role
	}
	want := []string{"user", "Coordinator", "tool", "DatabaseAgent"}
	if len(roles) != len(want) {
		t.Fatalf("roles = %v, want %v", roles, want)
	}
	for i := range want {
		if roles[i] != want[i] {
			t.Fatalf("roles = %v, want %v", roles, want)
		}
	}
	if session.Messages[2].Tool != "get_sequences" {
		t.Errorf("tool message not tagged: %+v", session.Messages[2])
	}
}

func TestRunWorkflowAgentPerspective(t *testing.T) {
	llm := &scriptedProvider{steps: []scriptedStep{
		{text: "Plan ready, over to DatabaseAgent."},
		{text: "Verified taxonomy. TERMINATE"},
	}}
	a := newTestAssistant(t, llm, &stubExecutor{})

	if _, err := a.RunWorkflow(context.Background(), "Verify Salmo salar taxonomy"); err != nil {
		t.Fatalf("RunWorkflow: %v", err)
	}

	if len(llm.received) != 2 {
		t.Fatalf("got %d completions, want 2", len(llm.received))
	}

	// Second completion is the DatabaseAgent's view of the transcript.
	dbView := llm.received[1]
	if dbView[0].Role != "system" || !strings.Contains(dbView[0].Content, "biological database specialist") {
		t.Errorf("system prompt not swapped per agent: %q...", dbView[0].Content[:40])
	}
	var sawCoordinator bool
	for _, msg := range dbView[1:] {
		if msg.Role == "user" && strings.HasPrefix(msg.Content, "Coordinator: ") {
			sawCoordinator = true
		}
		if msg.Role == "assistant" {
			t.Errorf("another agent's message rendered as assistant: %q", msg.Content)
		}
	}
	if !sawCoordinator {
		t.Error("coordinator's message missing from DatabaseAgent's view")
	}
}

func TestRunWorkflowMaxRounds(t *testing.T) {
	// The fallback step never terminates.
	llm := &scriptedProvider{}
	a := newTestAssistant(t, llm, &stubExecutor{})

	session, err := a.RunWorkflow(context.Background(), "never-ending task")
	if err != nil {
		t.Fatalf("RunWorkflow: %v", err)
	}
	if session.Status != StatusMaxRounds {
		t.Errorf("Status = %q, want %q", session.Status, StatusMaxRounds)
	}
	// One user message plus one per round.
	if len(session.Messages) != maxRounds+1 {
		t.Errorf("got %d messages, want %d", len(session.Messages), maxRounds+1)
	}
}

func TestRunWorkflowToolErrorSurfacesToAgent(t *testing.T) {
	llm := &scriptedProvider{steps: []scriptedStep{
		{text: "Delegating to DatabaseAgent."},
		{calls: []provider.ToolCall{{Name: "get_sequences", Arguments: map[string]any{"taxon": "x"}}}},
		{text: "Tool failed repeatedly, cannot retrieve data. TERMINATE"},
	}}
	executor := &stubExecutor{errs: map[string]error{
		"get_sequences": errors.New("tool call 'get_sequences' on source 'database' timed out after 60s"),
	}}
	a := newTestAssistant(t, llm, executor)

	session, err := a.RunWorkflow(context.Background(), "Design primers")
	if err != nil {
		t.Fatalf("tool errors must not abort the workflow: %v", err)
	}
	if session.Status != StatusCompleted {
		t.Errorf("Status = %q, want %q", session.Status, StatusCompleted)
	}

	var sawError bool
	for _, msg := range session.Messages {
		if msg.Role == "tool" && strings.HasPrefix(msg.Content, "Error: ") {
			sawError = true
		}
	}
	if !sawError {
		t.Error("tool error not surfaced in the transcript")
	}
}

func TestRunWorkflowCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	llm := &scriptedProvider{}
	a := newTestAssistant(t, llm, &stubExecutor{})

	session, err := a.RunWorkflow(ctx, "task")
	if err == nil {
		t.Fatal("expected context error")
	}
	if session.Status != StatusInterrupted {
		t.Errorf("Status = %q, want %q", session.Status, StatusInterrupted)
	}
}
