// Package results bounds tool output for model consumption and
// archives the unabridged output on disk.
package results

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ResultKind classifies a tool result for summarization.
type ResultKind int

const (
	// KindText is a result small enough to pass through verbatim.
	KindText ResultKind = iota
	// KindFASTA is sequence data with '>' header lines.
	KindFASTA
	// KindRecordList is a JSON array, or an object whose "records" or
	// "results" key holds one.
	KindRecordList
	// KindRecordMap is any other JSON object.
	KindRecordMap
	// KindGeneric is oversized unstructured text.
	KindGeneric
)

const (
	previewSequences = 2
	previewRecords   = 3
	previewFields    = 5
	previewKeys      = 10
	fieldValueLimit  = 100
	itemLimit        = 200
)

// Classify reports how Summarize would treat the result. Results at or
// under maxChars are always KindText regardless of content.
func Classify(result string, maxChars int) ResultKind {
	if len(result) <= maxChars {
		return KindText
	}

	var data any
	if err := json.Unmarshal([]byte(result), &data); err == nil {
		switch v := data.(type) {
		case map[string]any:
			if _, ok := fastaPayload(v); ok {
				return KindFASTA
			}
			if _, ok := recordsPayload(v); ok {
				return KindRecordList
			}
			return KindRecordMap
		case []any:
			return KindRecordList
		}
	}

	if looksLikeFASTA(result) {
		return KindFASTA
	}
	return KindGeneric
}

// Summarize reduces an oversized tool result to a bounded preview with
// fixed elision markers. Results that fit within maxChars are returned
// unchanged, so the function is idempotent on its own output. The
// elided content is not recoverable from the summary; callers are
// expected to archive the full result separately.
func Summarize(result string, maxChars int) string {
	if len(result) <= maxChars {
		return result
	}

	var summary string
	switch Classify(result, maxChars) {
	case KindFASTA:
		text := result
		var data map[string]any
		if err := json.Unmarshal([]byte(result), &data); err == nil {
			if payload, ok := fastaPayload(data); ok {
				text = payload
			}
		}
		summary = summarizeFASTA(text)
	case KindRecordList:
		summary = summarizeRecordList(result)
	case KindRecordMap:
		summary = summarizeRecordMap(result)
	default:
		return truncateWithMarker(result, maxChars)
	}

	// Structured previews are small in practice, but a record with
	// pathological field counts could still blow the budget.
	if len(summary) > maxChars {
		return truncateWithMarker(summary, maxChars)
	}
	return summary
}

func summarizeFASTA(text string) string {
	count := strings.Count(text, ">")

	var b strings.Builder
	fmt.Fprintf(&b, "Retrieved %d sequences\n", count)
	fmt.Fprintf(&b, "\nFirst %d sequences (preview):\n", previewSequences)

	seen := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, ">") {
			seen++
			if seen > previewSequences {
				break
			}
		}
		if seen > 0 && seen <= previewSequences {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}

	if count > previewSequences {
		fmt.Fprintf(&b, "\n... and %d more sequences", count-previewSequences)
	}
	return b.String()
}

func summarizeRecordList(result string) string {
	var data any
	if err := json.Unmarshal([]byte(result), &data); err != nil {
		return truncateWithMarker(result, len(result))
	}

	if obj, ok := data.(map[string]any); ok {
		records, _ := recordsPayload(obj)
		return formatRecords(records)
	}
	if items, ok := data.([]any); ok {
		return formatItems(items)
	}
	return truncateWithMarker(result, len(result))
}

func formatRecords(records []any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Retrieved %d records\n", len(records))
	fmt.Fprintf(&b, "\nFirst %d records (preview):\n", previewRecords)

	for i, record := range records {
		if i >= previewRecords {
			break
		}
		fmt.Fprintf(&b, "\nRecord %d:\n", i+1)
		if fields, ok := record.(map[string]any); ok {
			keys := sortedKeys(fields)
			for j, key := range keys {
				if j >= previewFields {
					break
				}
				fmt.Fprintf(&b, "  %s: %s\n", key, clip(stringify(fields[key]), fieldValueLimit))
			}
		} else {
			fmt.Fprintf(&b, "  %s\n", clip(stringify(record), itemLimit))
		}
	}

	if len(records) > previewRecords {
		fmt.Fprintf(&b, "\n... and %d more records", len(records)-previewRecords)
	}
	return b.String()
}

func formatItems(items []any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Retrieved %d items\n", len(items))
	if len(items) > 0 {
		fmt.Fprintf(&b, "\nFirst %d items (preview):\n", previewRecords)
		for i, item := range items {
			if i >= previewRecords {
				break
			}
			fmt.Fprintf(&b, "\n%d. %s", i+1, clip(stringify(item), itemLimit))
		}
		if len(items) > previewRecords {
			fmt.Fprintf(&b, "\n\n... and %d more items", len(items)-previewRecords)
		}
	}
	return b.String()
}

func summarizeRecordMap(result string) string {
	var data map[string]any
	if err := json.Unmarshal([]byte(result), &data); err != nil {
		return truncateWithMarker(result, len(result))
	}

	keys := sortedKeys(data)
	var b strings.Builder
	fmt.Fprintf(&b, "Result contains %d top-level keys\n", len(keys))

	shown := keys
	if len(shown) > previewKeys {
		shown = shown[:previewKeys]
	}
	fmt.Fprintf(&b, "Keys: %s", strings.Join(shown, ", "))
	if len(keys) > previewKeys {
		fmt.Fprintf(&b, "\n... and %d more keys", len(keys)-previewKeys)
	}
	return b.String()
}

// truncateWithMarker cuts text to maxChars and appends the fixed
// truncation marker naming the character count that was dropped.
func truncateWithMarker(text string, maxChars int) string {
	if len(text) <= maxChars {
		return text
	}
	remaining := len(text) - maxChars
	return fmt.Sprintf(
		"%s\n\n... [Output truncated: %s more characters. Full result saved to task log file.]",
		text[:maxChars], groupThousands(remaining),
	)
}

func fastaPayload(data map[string]any) (string, bool) {
	if seq, ok := data["sequences"].(string); ok && strings.Contains(seq, ">") {
		return seq, true
	}
	return "", false
}

func recordsPayload(data map[string]any) ([]any, bool) {
	for _, key := range []string{"records", "results"} {
		if list, ok := data[key].([]any); ok && len(list) > 0 {
			return list, true
		}
	}
	return nil, false
}

func looksLikeFASTA(text string) bool {
	head := text
	if len(head) > 1000 {
		head = head[:1000]
	}
	return strings.HasPrefix(head, ">") || strings.Contains(head, "\n>")
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return "null"
	case float64:
		// JSON numbers decode as float64; keep integers clean.
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(raw)
	}
}

func clip(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}

// groupThousands formats n with comma separators.
func groupThousands(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
