package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/acefgin/mdk-mcp/config"
)

// Archiver writes complete tool results to timestamped files so the
// full output survives summarization. Archive failures are reported
// but are never fatal to the tool call that produced the result.
type Archiver struct {
	dir string
}

func NewArchiver(dir string) (*Archiver, error) {
	if err := config.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}
	return &Archiver{dir: dir}, nil
}

func (a *Archiver) Dir() string {
	return a.dir
}

// Save writes one result file and returns its base filename. The file
// carries a header naming the tool, its arguments and the timestamp,
// then the verbatim result body. Filenames embed a microsecond
// timestamp; same-microsecond collisions get a numeric suffix.
func (a *Archiver) Save(tool string, args map[string]any, body string) (string, error) {
	now := time.Now()
	stamp := fmt.Sprintf("%s_%06d", now.Format("20060102_150405"), now.Nanosecond()/1000)
	base := fmt.Sprintf("tool_result_%s_%s", tool, stamp)

	argsJSON, err := json.MarshalIndent(args, "", "  ")
	if err != nil {
		argsJSON = []byte("{}")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Tool: %s\n", tool)
	fmt.Fprintf(&b, "Arguments: %s\n", argsJSON)
	fmt.Fprintf(&b, "Timestamp: %s\n", now.Format("2006-01-02T15:04:05.000000"))
	b.WriteString(strings.Repeat("=", 80))
	b.WriteString("\n\n")
	b.WriteString(body)

	filename := base + ".txt"
	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			filename = fmt.Sprintf("%s_%d.txt", base, attempt)
		}
		path := filepath.Join(a.dir, filename)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err != nil {
			if os.IsExist(err) && attempt < 100 {
				continue
			}
			return "", fmt.Errorf("failed to create result file: %w", err)
		}

		if _, err := f.WriteString(b.String()); err != nil {
			f.Close()
			return "", fmt.Errorf("failed to write result file: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("failed to close result file: %w", err)
		}

		if config.DebugLog != nil {
			config.DebugLog.Printf("[Results] archived %d chars to %s", len(body), path)
		}
		return filename, nil
	}
}
