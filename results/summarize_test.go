package results

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
)

func buildFASTA(n, seqLen int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, ">seq_%d Salmo salar cytochrome c oxidase subunit I\n", i)
		b.WriteString(strings.Repeat("ACGT", seqLen/4))
		b.WriteByte('\n')
	}
	return b.String()
}

func buildRecords(n, fields int) string {
	records := make([]map[string]any, n)
	for i := 0; i < n; i++ {
		rec := map[string]any{
			"Accession": fmt.Sprintf("MN%06d.1", i),
			"Organism":  "Salmo salar",
			"Length":    653,
			"Marker":    "COI",
			"Country":   "Norway",
		}
		for j := 5; j < fields; j++ {
			rec[fmt.Sprintf("extra_%d", j)] = strings.Repeat("x", 300)
		}
		records[i] = rec
	}
	raw, _ := json.Marshal(map[string]any{"records": records})
	return string(raw)
}

func TestSummarizePassthrough(t *testing.T) {
	in := "Retrieved 2 sequences for Salmo salar"
	out := Summarize(in, 5000)
	if out != in {
		t.Fatalf("small result must pass through verbatim, got %q", out)
	}
	// Idempotent on its own output.
	if again := Summarize(out, 5000); again != out {
		t.Fatalf("summary of a summary changed: %q", again)
	}
}

func TestSummarizeFASTA(t *testing.T) {
	fasta := buildFASTA(100, 600)
	out := Summarize(fasta, 5000)

	for _, want := range []string{
		"Retrieved 100 sequences",
		"First 2 sequences (preview):",
		"... and 98 more sequences",
		">seq_0",
		">seq_1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, ">seq_2") {
		t.Error("preview must stop after 2 sequences")
	}
	if len(out) >= len(fasta) {
		t.Errorf("summary (%d chars) not smaller than input (%d chars)", len(out), len(fasta))
	}
}

func TestSummarizeFASTAInsideJSON(t *testing.T) {
	raw, _ := json.Marshal(map[string]any{
		"sequences": buildFASTA(10, 800),
		"source":    "ncbi",
	})
	out := Summarize(string(raw), 5000)

	if !strings.Contains(out, "Retrieved 10 sequences") {
		t.Fatalf("expected sequence count in summary:\n%s", out)
	}
	if !strings.Contains(out, "... and 8 more sequences") {
		t.Fatalf("expected elision marker in summary:\n%s", out)
	}
}

func TestSummarizeRecords(t *testing.T) {
	out := Summarize(buildRecords(50, 5), 5000)

	for _, want := range []string{
		"Retrieved 50 records",
		"First 3 records (preview):",
		"Record 1:",
		"Record 3:",
		"... and 47 more records",
		"Organism: Salmo salar",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Record 4:") {
		t.Error("preview must stop after 3 records")
	}
}

func TestSummarizeRecordsFieldLimits(t *testing.T) {
	records := make([]map[string]any, 10)
	for i := range records {
		records[i] = map[string]any{
			"Accession":  fmt.Sprintf("MN%06d.1", i),
			"Definition": strings.Repeat("x", 400),
			"Features":   strings.Repeat("y", 400),
			"Length":     653,
			"Organism":   "Salmo salar",
			"Sequence":   strings.Repeat("ACGT", 200),
			"Source":     "ncbi",
		}
	}
	raw, _ := json.Marshal(map[string]any{"records": records})
	out := Summarize(string(raw), 5000)

	// At most 5 fields per record, values clipped to 100 chars.
	first := strings.SplitN(out, "Record 2:", 2)[0]
	if got := strings.Count(first, "\n  "); got > 5 {
		t.Errorf("record 1 shows %d fields, want at most 5", got)
	}
	if strings.Contains(out, strings.Repeat("x", 101)) {
		t.Error("field values must be clipped to 100 chars")
	}
	if !strings.Contains(out, strings.Repeat("x", 100)) {
		t.Error("clipped value should keep its first 100 chars")
	}
}

func TestSummarizeGenericObject(t *testing.T) {
	data := make(map[string]any, 14)
	for i := 0; i < 14; i++ {
		data[fmt.Sprintf("key_%02d", i)] = strings.Repeat("v", 600)
	}
	raw, _ := json.Marshal(data)
	out := Summarize(string(raw), 5000)

	if !strings.Contains(out, "Result contains 14 top-level keys") {
		t.Fatalf("expected key count:\n%s", out)
	}
	if !strings.Contains(out, "Keys: key_00") {
		t.Fatalf("expected key listing:\n%s", out)
	}
	if !strings.Contains(out, "... and 4 more keys") {
		t.Fatalf("expected key elision marker:\n%s", out)
	}
	// Key listing is deterministic.
	if again := Summarize(string(raw), 5000); again != out {
		t.Error("generic object summary not deterministic")
	}
}

func TestSummarizeItemList(t *testing.T) {
	items := make([]any, 20)
	for i := range items {
		items[i] = fmt.Sprintf("PRJNA%06d %s", i, strings.Repeat("a", 400))
	}
	raw, _ := json.Marshal(items)
	out := Summarize(string(raw), 5000)

	if !strings.Contains(out, "Retrieved 20 items") {
		t.Fatalf("expected item count:\n%s", out)
	}
	if !strings.Contains(out, "... and 17 more items") {
		t.Fatalf("expected item elision marker:\n%s", out)
	}
}

func TestSummarizeFallbackTruncation(t *testing.T) {
	in := strings.Repeat("no structure here ", 1000)
	out := Summarize(in, 5000)

	if !strings.HasPrefix(out, in[:5000]) {
		t.Fatal("fallback must keep the leading maxChars verbatim")
	}
	if !strings.Contains(out, "[Output truncated: 13,000 more characters. Full result saved to task log file.]") {
		t.Fatalf("missing truncation marker:\n...%s", out[len(out)-120:])
	}
}

func TestSummarizeBounded(t *testing.T) {
	// The marker line is the only allowed overhead past maxChars.
	const maxChars = 500
	inputs := []string{
		strings.Repeat("z", 50000),
		buildFASTA(200, 1000),
		buildRecords(100, 30),
	}
	for i, in := range inputs {
		out := Summarize(in, maxChars)
		if len(out) > maxChars+120 {
			t.Errorf("input %d: summary is %d chars for budget %d", i, len(out), maxChars)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxChars int
		want     ResultKind
	}{
		{"small text", "ok", 5000, KindText},
		{"fasta text", buildFASTA(50, 600), 5000, KindFASTA},
		{"record object", buildRecords(50, 5), 5000, KindRecordList},
		{"json array", "[" + strings.Repeat(`"x",`, 3000) + `"x"]`, 5000, KindRecordList},
		{"plain text", strings.Repeat("abc ", 3000), 5000, KindGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.input, tt.maxChars); got != tt.want {
				t.Errorf("Classify = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGroupThousands(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{7, "7"},
		{999, "999"},
		{1000, "1,000"},
		{13000, "13,000"},
		{1234567, "1,234,567"},
	}
	for _, tt := range tests {
		if got := groupThousands(tt.n); got != tt.want {
			t.Errorf("groupThousands(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
