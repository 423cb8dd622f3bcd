// Package bridge turns model function calls into supervised tool
// calls, archiving each full result and handing the model a bounded
// summary.
package bridge

import (
	"context"
	"fmt"
	"os"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"github.com/acefgin/mdk-mcp/config"
	"github.com/acefgin/mdk-mcp/results"
	"github.com/acefgin/mdk-mcp/storage"
)

// ToolCaller is the supervisor surface the bridge needs.
type ToolCaller interface {
	Call(ctx context.Context, source, tool string, args map[string]any) (string, error)
	Tools(source string) ([]mcptypes.Tool, error)
	Sources() []string
}

// Bridge routes model-visible functions to tool sources.
type Bridge struct {
	caller    ToolCaller
	archiver  *results.Archiver
	index     *storage.ArchiveIndex
	tools     []mcptypes.Tool
	routes    map[string]Route
	maxChars  int
	sessionID string
}

// New builds a bridge over the running sources. Every function in the
// catalog must be backed by a tool the source actually advertises;
// a missing backing tool is a configuration error, not something to
// paper over at call time.
func New(caller ToolCaller, archiver *results.Archiver, index *storage.ArchiveIndex, cfg *config.Config) (*Bridge, error) {
	tools, routes := Catalog(caller.Sources())

	for name, route := range routes {
		advertised, err := caller.Tools(route.Source)
		if err != nil {
			return nil, fmt.Errorf("failed to list tools for source %q: %w", route.Source, err)
		}
		found := false
		for _, t := range advertised {
			if t.Name == route.Tool {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("function %q needs tool %q which source %q does not advertise", name, route.Tool, route.Source)
		}
	}

	maxChars := cfg.SummaryMaxChars
	if maxChars <= 0 {
		maxChars = config.DefaultSummaryMaxChars
	}

	return &Bridge{
		caller:   caller,
		archiver: archiver,
		index:    index,
		tools:    tools,
		routes:   routes,
		maxChars: maxChars,
	}, nil
}

// Tools returns the model-visible function definitions.
func (b *Bridge) Tools() []mcptypes.Tool {
	return b.tools
}

// BindSession tags subsequent archive index entries with a session ID.
func (b *Bridge) BindSession(sessionID string) {
	b.sessionID = sessionID
}

// Execute runs one function call end to end: route, call, archive the
// full result, summarize. Tool errors propagate to the caller
// unchanged; archiving problems only cost the file reference in the
// returned summary.
func (b *Bridge) Execute(ctx context.Context, name string, args map[string]any) (string, error) {
	route, ok := b.routes[name]
	if !ok {
		return "", fmt.Errorf("unknown function: %s", name)
	}

	result, err := b.caller.Call(ctx, route.Source, route.Tool, args)
	if err != nil {
		return "", err
	}

	filename, archiveErr := b.archiver.Save(name, args, result)
	if archiveErr != nil {
		// Degraded but not fatal: the call still returns its summary,
		// so the operator must hear about the missing archive file.
		fmt.Fprintf(os.Stderr, "Warning: failed to archive result for %s: %v\n", name, archiveErr)
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Bridge] archive failed for %s: %v", name, archiveErr)
		}
	}

	summary := results.Summarize(result, b.maxChars)
	summarized := len(result) > b.maxChars

	if summarized && archiveErr == nil {
		summary += fmt.Sprintf("\n\n[Full result saved to: %s]", filename)
	}

	if b.index != nil && archiveErr == nil {
		_, err := b.index.Record(storage.ArchivedResult{
			SessionID:  b.sessionID,
			Source:     route.Source,
			Tool:       route.Tool,
			Filename:   filename,
			ResultSize: len(result),
			Summarized: summarized,
		})
		if err != nil && config.DebugLog != nil {
			config.DebugLog.Printf("[Bridge] index insert failed for %s: %v", name, err)
		}
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Bridge] %s: %d chars -> %d chars", name, len(result), len(summary))
	}

	return summary, nil
}
