// Package assistant runs the multi-agent qPCR design workflow: a
// coordinator plans, a database specialist pulls sequence data through
// bridged tools, and an analyst recommends primer strategy. Agents
// speak in a fixed round-robin until one emits the TERMINATE token or
// the round limit is hit.
package assistant

import (
	"context"
	"fmt"
	"strings"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"github.com/acefgin/mdk-mcp/config"
	"github.com/acefgin/mdk-mcp/provider"
	"github.com/acefgin/mdk-mcp/storage"
)

const (
	maxRounds = 20
	// An agent may chain a few tool calls inside its turn, but not
	// loop on them forever.
	maxToolTurns = 5

	terminateToken = "TERMINATE"

	// Workflow statuses persisted on the session.
	StatusCompleted   = "completed"
	StatusMaxRounds   = "max_rounds"
	StatusInterrupted = "interrupted"
)

// ToolExecutor is the bridge surface the workflow needs.
type ToolExecutor interface {
	Execute(ctx context.Context, name string, args map[string]any) (string, error)
	Tools() []mcptypes.Tool
	BindSession(sessionID string)
}

// Agent is one speaker in the round-robin.
type Agent struct {
	Name         string
	SystemPrompt string
	UsesTools    bool
}

// Assistant drives the design workflow.
type Assistant struct {
	llm      provider.Provider
	executor ToolExecutor
	sessions *storage.SessionStorage
	agents   []Agent

	// OnMessage, when set, receives each completed agent message.
	// The CLI uses it to print the conversation as it happens.
	OnMessage func(agent, content string)
}

func New(llm provider.Provider, executor ToolExecutor, sessions *storage.SessionStorage) *Assistant {
	return &Assistant{
		llm:      llm,
		executor: executor,
		sessions: sessions,
		agents: []Agent{
			{Name: "Coordinator", SystemPrompt: coordinatorSystemMessage},
			{Name: "DatabaseAgent", SystemPrompt: databaseAgentSystemMessage, UsesTools: true},
			{Name: "AnalystAgent", SystemPrompt: analystSystemMessage},
		},
	}
}

// RunWorkflow executes one design task to completion and returns the
// persisted session. The transcript is saved after every message, so
// an interrupted run still leaves a usable record.
func (a *Assistant) RunWorkflow(ctx context.Context, task string) (*storage.Session, error) {
	session := &storage.Session{
		Name:  storage.GenerateSessionName(task),
		Task:  task,
		Model: a.llm.GetModel(),
	}
	if err := a.sessions.Save(session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	a.executor.BindSession(session.ID)

	if err := a.sessions.Append(session, storage.Message{Role: "user", Content: task}); err != nil {
		return session, err
	}

	for round := 0; round < maxRounds; round++ {
		agent := a.agents[round%len(a.agents)]

		if err := ctx.Err(); err != nil {
			session.Status = StatusInterrupted
			_ = a.sessions.Save(session)
			return session, err
		}

		content, err := a.runTurn(ctx, session, agent)
		if err != nil {
			session.Status = StatusInterrupted
			_ = a.sessions.Save(session)
			return session, fmt.Errorf("%s turn failed: %w", agent.Name, err)
		}

		if strings.Contains(content, terminateToken) {
			session.Status = StatusCompleted
			if err := a.sessions.Save(session); err != nil {
				return session, err
			}
			return session, nil
		}
	}

	session.Status = StatusMaxRounds
	if err := a.sessions.Save(session); err != nil {
		return session, err
	}
	return session, nil
}

// runTurn gives one agent the floor. Tool-using agents may interleave
// tool calls and follow-up completions; each tool result lands in the
// shared transcript before the agent speaks again.
func (a *Assistant) runTurn(ctx context.Context, session *storage.Session, agent Agent) (string, error) {
	var tools []mcptypes.Tool
	if agent.UsesTools {
		tools = a.executor.Tools()
	}

	var lastContent string
	for turn := 0; turn < maxToolTurns; turn++ {
		messages := a.buildMessages(session, agent)

		var text strings.Builder
		var toolCalls []provider.ToolCall

		callback := func(chunk string, calls []provider.ToolCall) error {
			text.WriteString(chunk)
			toolCalls = append(toolCalls, calls...)
			return nil
		}

		if err := a.llm.ChatWithTools(ctx, messages, tools, callback); err != nil {
			return "", err
		}

		content := strings.TrimSpace(text.String())
		if content != "" {
			if err := a.recordMessage(session, agent.Name, content, ""); err != nil {
				return "", err
			}
			lastContent = content
		}

		if len(toolCalls) == 0 {
			return lastContent, nil
		}

		for _, call := range toolCalls {
			result, err := a.executor.Execute(ctx, call.Name, call.Arguments)
			if err != nil {
				// The agent sees the failure and decides whether to
				// retry, work around it, or terminate.
				result = fmt.Sprintf("Error: %v", err)
			}
			if err := a.recordMessage(session, "tool", result, call.Name); err != nil {
				return "", err
			}
		}
	}

	return lastContent, nil
}

// buildMessages renders the shared transcript from one agent's point
// of view: its own prior messages are "assistant" turns, everything
// else arrives as labeled "user" turns.
func (a *Assistant) buildMessages(session *storage.Session, agent Agent) []provider.Message {
	messages := make([]provider.Message, 0, len(session.Messages)+1)
	messages = append(messages, provider.Message{Role: "system", Content: agent.SystemPrompt})

	for _, msg := range session.Messages {
		switch msg.Role {
		case agent.Name:
			messages = append(messages, provider.Message{Role: "assistant", Content: msg.Content})
		case "tool":
			messages = append(messages, provider.Message{
				Role:    "user",
				Content: fmt.Sprintf("[%s result]\n%s", msg.Tool, msg.Content),
			})
		case "user":
			messages = append(messages, provider.Message{Role: "user", Content: msg.Content})
		default:
			messages = append(messages, provider.Message{
				Role:    "user",
				Content: fmt.Sprintf("%s: %s", msg.Role, msg.Content),
			})
		}
	}

	return messages
}

func (a *Assistant) recordMessage(session *storage.Session, role, content, tool string) error {
	if a.OnMessage != nil {
		a.OnMessage(role, content)
	}
	if config.DebugLog != nil {
		config.DebugLog.Printf("[Assistant] %s: %d chars", role, len(content))
	}
	return a.sessions.Append(session, storage.Message{Role: role, Content: content, Tool: tool})
}
