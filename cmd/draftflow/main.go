package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/draftflow/draftflow-go/completion"
	"github.com/draftflow/draftflow-go/config"
	"github.com/draftflow/draftflow-go/export"
	"github.com/draftflow/draftflow-go/store"
	amqptransport "github.com/draftflow/draftflow-go/transports/amqp"
	"github.com/draftflow/draftflow-go/units"
	"github.com/draftflow/draftflow-go/workflow"
)

var (
	version = "dev"
)

func main() {
	var (
		configPath string
		verbose    bool
	)

	rootCmd := &cobra.Command{
		Use:     "draftflow",
		Short:   "Agent pipeline for drafting tailored resumes and cover letters",
		Version: version,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "draftflow.yaml", "path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the drafting pipeline over the configured input directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(configPath, verbose)
		},
	}

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recently stored sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showHistory(configPath)
		},
	}

	rootCmd.AddCommand(runCmd, historyCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func runPipeline(configPath string, verbose bool) error {
	logger := newLogger(verbose)

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cvContent, err := readDocuments(cfg.CVDir, logger)
	if err != nil {
		return err
	}
	jobContent, err := readDocuments(cfg.JobDir, logger)
	if err != nil {
		return err
	}

	modelCfg := cfg.Model
	modelCfg.APIKey = cfg.APIKey()
	client, err := completion.NewChatClient(ctx, modelCfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return fmt.Errorf("create database dir: %w", err)
	}
	resultStore, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer resultStore.Close()

	pipelineOpts := []units.PipelineOption{
		units.WithResultSink(resultStore),
		units.WithExporter(export.NewMarkdown(cfg.OutputDir)),
		units.WithReviewerOptions(units.WithThreshold(cfg.QualityThreshold)),
	}
	if cfg.RefineIterations > 1 {
		pipelineOpts = append(pipelineOpts, units.WithRefinement(cfg.RefineIterations))
	}
	pipeline, err := units.NewDraftPipeline(client, pipelineOpts...)
	if err != nil {
		return err
	}

	var sink *amqptransport.Sink
	if cfg.AMQP.URL != "" {
		sinkOpts := []amqptransport.SinkOption{amqptransport.WithSinkLogger(logger)}
		if cfg.AMQP.Exchange != "" {
			sinkOpts = append(sinkOpts, amqptransport.WithExchange(cfg.AMQP.Exchange))
		}
		sink, err = amqptransport.NewSink(cfg.AMQP.URL, sinkOpts...)
		if err != nil {
			return err
		}
		defer sink.Close()
	}

	coordinator := workflow.NewCoordinator(pipeline, workflow.WithLogger(logger))
	events := coordinator.Run(ctx, map[string]any{
		workflow.KeyPrimaryDocument:   cvContent,
		workflow.KeySecondaryDocument: jobContent,
	})

	for event := range events {
		if sink != nil {
			if err := sink.Publish(ctx, event); err != nil {
				logger.Warn("failed to publish event", "eventId", event.ID, "error", err)
			}
		}
		logEvent(logger, event)
	}

	summary := coordinator.Summary()
	printSummary(summary)
	if summary.Status != workflow.StatusCompleted {
		return fmt.Errorf("run finished with status %s", summary.Status)
	}
	return nil
}

func logEvent(logger *slog.Logger, event workflow.Event) {
	if event.Diagnostic != nil {
		logger.Log(context.Background(), event.Diagnostic.Level, event.Diagnostic.Message,
			"author", event.Author)
		return
	}
	keys := make([]string, 0, len(event.Delta))
	for key := range event.Delta {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	logger.Debug("event", "author", event.Author, "keys", strings.Join(keys, ","))
}

// readDocuments concatenates every .txt file in dir, matching the
// original batch behaviour: all CVs and all job postings are merged into
// one primary and one secondary input.
func readDocuments(dir string, logger *slog.Logger) (string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return "", fmt.Errorf("scan %s: %w", dir, err)
	}
	sort.Strings(paths)

	var parts []string
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("skipping unreadable file", "path", path, "error", err)
			continue
		}
		logger.Info("loaded document", "path", path, "bytes", len(data))
		parts = append(parts, fmt.Sprintf("=== %s ===\n%s", filepath.Base(path), string(data)))
	}
	return strings.Join(parts, "\n\n"), nil
}

func printSummary(summary workflow.RunSummary) {
	fmt.Printf("session:    %s\n", summary.SessionID)
	fmt.Printf("status:     %s\n", summary.Status)
	fmt.Printf("components: %s\n", strings.Join(summary.GeneratedComponents, ", "))
	for name, value := range summary.QualityMetrics {
		fmt.Printf("metric:     %s = %.2f\n", name, value)
	}
	for _, e := range summary.Errors {
		fmt.Printf("error:      %s: %s\n", e.Component, e.Message)
	}
}

func showHistory(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	resultStore, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer resultStore.Close()

	records, err := resultStore.RecentSessions(context.Background(), 20)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("no stored sessions")
		return nil
	}
	for _, r := range records {
		approved := " "
		if r.Approved {
			approved = "*"
		}
		fmt.Printf("%s %s  %s  %d documents\n",
			approved, r.CreatedAt.Format("2006-01-02 15:04"), r.SessionID, r.Documents)
	}
	return nil
}
