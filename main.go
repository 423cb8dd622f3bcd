package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/acefgin/mdk-mcp/assistant"
	"github.com/acefgin/mdk-mcp/bridge"
	"github.com/acefgin/mdk-mcp/config"
	"github.com/acefgin/mdk-mcp/mcp"
	"github.com/acefgin/mdk-mcp/provider"
	"github.com/acefgin/mdk-mcp/results"
	"github.com/acefgin/mdk-mcp/storage"
)

const (
	Version = "v0.01.00"
	License = "Apache-2.0"
)

func main() {
	task := flag.String("task", "", "design request to run (reads stdin when omitted)")
	listSessions := flag.Bool("sessions", false, "list saved workflow sessions and exit")
	exportSession := flag.String("export", "", "export a saved session to <id>.json and exit")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("mdk-mcp %s (%s)\n", Version, License)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize debug logging after config is loaded
	config.InitDebugLog(cfg.DataDir())

	sessionStorage, err := storage.NewSessionStorage(cfg.DataDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize session storage: %v\n", err)
		os.Exit(1)
	}

	if *listSessions {
		printSessions(sessionStorage)
		return
	}

	if *exportSession != "" {
		path := *exportSession + ".json"
		if err := sessionStorage.ExportToJSON(*exportSession, path); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to export session: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Session exported to %s\n", path)
		return
	}

	request := strings.TrimSpace(*task)
	if request == "" {
		request = readTaskFromStdin()
	}
	if request == "" {
		fmt.Fprintln(os.Stderr, "No design request given. Use -task or pipe the request on stdin.")
		os.Exit(1)
	}

	if err := run(cfg, sessionStorage, request); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, sessionStorage *storage.SessionStorage, request string) error {
	// Ctrl+C cancels the workflow; the deferred shutdown still runs
	// with its own bounded context so no subprocess outlives us.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	supervisor := mcp.NewProcessManager(cfg)

	fmt.Println("Connecting to tool sources...")
	for name, src := range cfg.Sources {
		if err := supervisor.Start(ctx, name, src); err != nil {
			supervisor.Shutdown(context.Background())
			return fmt.Errorf("failed to start source %q: %w", name, err)
		}
		fmt.Printf("  ✓ %s\n", name)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		supervisor.Shutdown(shutdownCtx)
	}()

	archiver, err := results.NewArchiver(cfg.ResultsDir())
	if err != nil {
		return err
	}

	index, err := storage.NewArchiveIndex(cfg.DataDir())
	if err != nil {
		return err
	}
	defer index.Close()

	toolBridge, err := bridge.New(supervisor, archiver, index, cfg)
	if err != nil {
		return err
	}

	llm, err := provider.NewProvider(provider.Config{
		Type:    provider.MapProviderIDToType(cfg.Provider.Type),
		BaseURL: cfg.Provider.BaseURL,
		Model:   cfg.Provider.Model,
		APIKey:  cfg.APIKey(),
	})
	if err != nil {
		return fmt.Errorf("failed to create provider: %w", err)
	}

	qpcr := assistant.New(llm, toolBridge, sessionStorage)
	qpcr.OnMessage = func(agent, content string) {
		fmt.Printf("\n[%s]\n%s\n", agent, content)
	}

	fmt.Printf("\nStarting workflow with %s\n", llm.GetModel())
	session, err := qpcr.RunWorkflow(ctx, request)
	if session != nil {
		fmt.Printf("\nWorkflow %s (session %s, %d messages)\n", session.Status, session.ID, len(session.Messages))
		fmt.Printf("Full tool results saved to %s\n", cfg.ResultsDir())
	}
	return err
}

func readTaskFromStdin() string {
	info, err := os.Stdin.Stat()
	if err != nil || info.Mode()&os.ModeCharDevice != 0 {
		return ""
	}

	var b strings.Builder
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		b.WriteString(scanner.Text())
		b.WriteByte('\n')
	}
	return strings.TrimSpace(b.String())
}

func printSessions(sessionStorage *storage.SessionStorage) {
	sessions, err := sessionStorage.List()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list sessions: %v\n", err)
		os.Exit(1)
	}
	if len(sessions) == 0 {
		fmt.Println("No saved sessions.")
		return
	}
	for _, s := range sessions {
		status := s.Status
		if status == "" {
			status = "unknown"
		}
		fmt.Printf("%s  %-40s  %s  %d messages  (%s)\n",
			s.UpdatedAt.Format("2006-01-02 15:04"), s.Name, status, s.MessageCount, s.ID)
	}
}
