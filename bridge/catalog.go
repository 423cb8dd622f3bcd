package bridge

import (
	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

// Route maps a model-visible function onto a tool source and the tool
// it fronts there.
type Route struct {
	Source string
	Tool   string
}

// Catalog returns the function definitions exposed to the model for
// the given running sources, with the route for each function. The
// definitions are curated rather than mirrored from tools/list so the
// descriptions can carry assay-design guidance the servers don't have.
func Catalog(available []string) ([]mcptypes.Tool, map[string]Route) {
	var tools []mcptypes.Tool
	routes := make(map[string]Route)

	for _, source := range available {
		if source != "database" {
			// Processing, alignment and design servers get their
			// functions here once those phases ship.
			continue
		}

		tools = append(tools, databaseFunctions()...)
		for _, tool := range databaseFunctions() {
			routes[tool.Name] = Route{Source: "database", Tool: tool.Name}
		}
	}

	return tools, routes
}

func databaseFunctions() []mcptypes.Tool {
	return []mcptypes.Tool{
		{
			Name: "get_sequences",
			Description: "Retrieve biological sequences from multiple databases (NCBI, BOLD, gget). " +
				"Use this to get target species sequences and off-target sequences for primer design.",
			InputSchema: mcptypes.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"taxon": map[string]any{
						"type":        "string",
						"description": "Scientific name or taxon ID (e.g., 'Salmo salar', 'Oncorhynchus mykiss')",
					},
					"region": map[string]any{
						"type":        "string",
						"enum":        []string{"COI", "16S", "ITS", "mitogenome", "whole"},
						"description": "Target genomic region for primers. COI is common for species ID.",
						"default":     "COI",
					},
					"source": map[string]any{
						"type":        "string",
						"enum":        []string{"gget", "ncbi", "bold", "silva", "unite"},
						"default":     "ncbi",
						"description": "Database source. NCBI for general, BOLD for COI barcodes.",
					},
					"max_results": map[string]any{
						"type":        "integer",
						"default":     100,
						"description": "Maximum sequences to retrieve (1-10000)",
					},
				},
				Required: []string{"taxon"},
			},
		},
		{
			Name: "get_taxonomy",
			Description: "Get detailed taxonomic information including lineage and rank. " +
				"Use this to understand species relationships and validate scientific names.",
			InputSchema: mcptypes.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "Species name, common name, or accession number",
					},
				},
				Required: []string{"query"},
			},
		},
		{
			Name: "get_neighbors",
			Description: "Find taxonomically similar species (potential qPCR off-targets). " +
				"Critical for designing specific primers that won't cross-react.",
			InputSchema: mcptypes.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"taxon": map[string]any{
						"type":        "string",
						"description": "Target taxon name (e.g., 'Salmo salar')",
					},
					"rank": map[string]any{
						"type":        "string",
						"enum":        []string{"species", "genus", "family"},
						"description": "Taxonomic rank for neighbor search. 'genus' finds related species, 'family' finds related genera.",
					},
					"distance": map[string]any{
						"type":        "integer",
						"default":     1,
						"description": "Taxonomic distance (1=close relatives, 2=more distant)",
					},
				},
				Required: []string{"taxon", "rank"},
			},
		},
		{
			Name: "extract_sequence_columns",
			Description: "Extract and organize metadata from sequence data. " +
				"Use this to parse sequence information after retrieval.",
			InputSchema: mcptypes.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"sequence_data": map[string]any{
						"type":        "string",
						"description": "FASTA, GenBank, or JSON sequence data from get_sequences",
					},
					"columns": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "Metadata fields to extract: Id, Accession, Organism, Length, Marker, Country, etc.",
						"default":     []string{"Id", "Accession", "Organism", "Length", "Marker"},
					},
					"output_format": map[string]any{
						"type":        "string",
						"enum":        []string{"json", "csv", "tsv", "table"},
						"default":     "json",
						"description": "Output format",
					},
				},
				Required: []string{"sequence_data"},
			},
		},
		{
			Name: "search_sra_studies",
			Description: "Search NCBI SRA/BioProject for sequencing studies. " +
				"Use this to find existing qPCR or sequencing studies for reference.",
			InputSchema: mcptypes.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "Search query (e.g., 'Salmo salar qPCR', 'salmon COI amplicon')",
					},
					"filters": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"organism": map[string]any{"type": "string"},
							"library_strategy": map[string]any{
								"type": "string",
								"enum": []string{"AMPLICON", "RNA-Seq", "WGS", "METAGENOMIC"},
							},
							"max_results": map[string]any{"type": "integer", "default": 50},
						},
					},
				},
				Required: []string{"query"},
			},
		},
	}
}
