package provider

import (
	"testing"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/ollama/ollama/api"
)

func sequenceTool() mcptypes.Tool {
	return mcptypes.Tool{
		Name:        "get_sequences",
		Description: "Retrieve biological sequences",
		InputSchema: mcptypes.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"taxon": map[string]any{
					"type":        "string",
					"description": "Scientific name or taxon ID",
				},
				"region": map[string]any{
					"type": "string",
					"enum": []any{"COI", "16S", "ITS"},
				},
				"max_results": map[string]any{
					"type": "integer",
				},
				"columns": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
			Required: []string{"taxon"},
		},
	}
}

func TestConvertMCPToolsToOllama(t *testing.T) {
	tools := ConvertMCPToolsToOllama([]mcptypes.Tool{sequenceTool()})
	if len(tools) != 1 {
		t.Fatalf("got %d tools, want 1", len(tools))
	}

	fn := tools[0].Function
	if tools[0].Type != "function" {
		t.Errorf("Type = %q, want function", tools[0].Type)
	}
	if fn.Name != "get_sequences" {
		t.Errorf("Name = %q", fn.Name)
	}
	if fn.Parameters.Type != "object" {
		t.Errorf("Parameters.Type = %q", fn.Parameters.Type)
	}
	if len(fn.Parameters.Required) != 1 || fn.Parameters.Required[0] != "taxon" {
		t.Errorf("Required = %v", fn.Parameters.Required)
	}

	taxon, ok := fn.Parameters.Properties["taxon"]
	if !ok {
		t.Fatal("missing taxon property")
	}
	if len(taxon.Type) != 1 || taxon.Type[0] != "string" {
		t.Errorf("taxon.Type = %v", taxon.Type)
	}
	if taxon.Description != "Scientific name or taxon ID" {
		t.Errorf("taxon.Description = %q", taxon.Description)
	}

	region, ok := fn.Parameters.Properties["region"]
	if !ok {
		t.Fatal("missing region property")
	}
	if len(region.Enum) != 3 {
		t.Errorf("region.Enum = %v", region.Enum)
	}

	columns, ok := fn.Parameters.Properties["columns"]
	if !ok {
		t.Fatal("missing columns property")
	}
	if columns.Items == nil {
		t.Error("columns.Items lost in conversion")
	}
}

func TestConvertMCPToolsToOpenAIFormat(t *testing.T) {
	if got := ConvertMCPToolsToOpenAIFormat(nil); got != nil {
		t.Error("nil input must produce nil output")
	}

	tools := ConvertMCPToolsToOpenAIFormat([]mcptypes.Tool{sequenceTool()})
	if len(tools) != 1 {
		t.Fatalf("got %d tools, want 1", len(tools))
	}

	fn := tools[0].OfFunction
	if fn == nil {
		t.Fatal("expected function tool")
	}
	if fn.Function.Name != "get_sequences" {
		t.Errorf("Name = %q", fn.Function.Name)
	}
	params := fn.Function.Parameters
	if params["type"] != "object" {
		t.Errorf("parameters type = %v", params["type"])
	}
	required, ok := params["required"].([]string)
	if !ok || len(required) != 1 || required[0] != "taxon" {
		t.Errorf("required = %v", params["required"])
	}
	props, ok := params["properties"].(map[string]any)
	if !ok {
		t.Fatalf("properties = %T", params["properties"])
	}
	if _, ok := props["region"]; !ok {
		t.Error("region property lost in conversion")
	}
}

func TestConvertMCPToolsToAnthropicFormat(t *testing.T) {
	if got := ConvertMCPToolsToAnthropicFormat(nil); got != nil {
		t.Error("nil input must produce nil output")
	}

	tools := ConvertMCPToolsToAnthropicFormat([]mcptypes.Tool{sequenceTool()})
	if len(tools) != 1 {
		t.Fatalf("got %d tools, want 1", len(tools))
	}

	tool := tools[0].OfTool
	if tool == nil {
		t.Fatal("expected plain tool variant")
	}
	if tool.Name != "get_sequences" {
		t.Errorf("Name = %q", tool.Name)
	}
	if tool.Description.Value != "Retrieve biological sequences" {
		t.Errorf("Description = %q", tool.Description.Value)
	}
	if len(tool.InputSchema.Required) != 1 || tool.InputSchema.Required[0] != "taxon" {
		t.Errorf("Required = %v", tool.InputSchema.Required)
	}
	props, ok := tool.InputSchema.Properties.(map[string]any)
	if !ok {
		t.Fatalf("Properties = %T", tool.InputSchema.Properties)
	}
	if _, ok := props["taxon"]; !ok {
		t.Error("taxon property lost in conversion")
	}
}

func TestParseToolArguments(t *testing.T) {
	args := ParseToolArguments(`{"taxon": "Salmo salar", "max_results": 100}`)
	if args["taxon"] != "Salmo salar" {
		t.Errorf("taxon = %v", args["taxon"])
	}
	if args["max_results"] != float64(100) {
		t.Errorf("max_results = %v", args["max_results"])
	}

	// Malformed arguments degrade to an empty map, not a panic.
	if args := ParseToolArguments("not json"); len(args) != 0 {
		t.Errorf("expected empty map, got %v", args)
	}
}

func TestConvertOllamaToolCalls(t *testing.T) {
	if got := ConvertOllamaToolCalls(nil); got != nil {
		t.Error("nil input must produce nil output")
	}

	calls := ConvertOllamaToolCalls([]api.ToolCall{
		{Function: api.ToolCallFunction{
			Name:      "get_taxonomy",
			Arguments: map[string]any{"query": "Salmo salar"},
		}},
	})
	if len(calls) != 1 {
		t.Fatalf("got %d calls, want 1", len(calls))
	}
	if calls[0].Name != "get_taxonomy" {
		t.Errorf("Name = %q", calls[0].Name)
	}
	if calls[0].Arguments["query"] != "Salmo salar" {
		t.Errorf("Arguments = %v", calls[0].Arguments)
	}
}
