package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"rftriage/pkg/ai"
	"rftriage/pkg/config"
	"rftriage/pkg/history"
	"rftriage/pkg/logging"
	"rftriage/pkg/ollama"
	"rftriage/pkg/snapshot"
	"rftriage/pkg/testdata"
	"rftriage/pkg/triage"
)

const usage = `Usage: rftriage <command> [arguments]

Commands:
  snapshot                  collect environment context into the context file
  triage <result.json>      analyze a failed test result
  generate <type> [k=v...]  generate test data of the given type
  history [show <id>]       list stored reports, or show one
  version                   print version information
`

func main() {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if args[0] == "version" {
		printVersion()
		return
	}

	cfg, err := config.Load(config.GetConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if _, err := logging.Init(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
		os.Exit(1)
	}

	slog.Debug("configuration loaded",
		"provider", cfg.Provider,
		"dry_run", cfg.DryRun,
		"tags", cfg.Triage.Tags)

	if err := checkConfig(cfg); err != nil {
		slog.Error("configuration validation failed", "error", err)
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	var cmdErr error
	switch args[0] {
	case "snapshot":
		cmdErr = runSnapshot(cfg)
	case "triage":
		if len(args) < 2 {
			cmdErr = fmt.Errorf("triage requires a result file argument")
			break
		}
		cmdErr = runTriage(cfg, args[1])
	case "generate":
		if len(args) < 2 {
			cmdErr = fmt.Errorf("generate requires a data type argument")
			break
		}
		cmdErr = runGenerate(cfg, args[1], args[2:])
	case "history":
		cmdErr = runHistory(cfg, args[1:])
	default:
		flag.Usage()
		os.Exit(2)
	}

	if cmdErr != nil {
		slog.Error("command failed", "command", args[0], "error", cmdErr)
		fmt.Fprintf(os.Stderr, "Error: %v\n", cmdErr)
		os.Exit(1)
	}
}

// runSnapshot collects the environment context and writes the context file.
func runSnapshot(cfg config.Config) error {
	collector := snapshot.NewCollector(cfg.ContextFile)
	path, err := collector.Write()
	if err != nil {
		return err
	}
	fmt.Printf("Context written to %s\n", path)
	return nil
}

// runTriage loads a test result and, if it passes the tag gate, asks the
// configured provider for an analysis. AI failures are downgraded to a
// warning: a broken backend must not fail the surrounding test run.
func runTriage(cfg config.Config, resultPath string) error {
	result, err := triage.LoadResult(resultPath)
	if err != nil {
		return err
	}

	snap, err := snapshot.Load(cfg.ContextFile)
	if err != nil {
		slog.Warn("failed to load context file, continuing without it", "error", err)
	}

	// Provider setup is skipped in dry-run mode, same as validation.
	var provider ai.Provider
	if !cfg.DryRun {
		provider, err = ai.NewProvider(cfg)
		if err != nil {
			slog.Warn("AI analysis unavailable", "test", result.Name)
			slog.Debug("provider setup error detail", "error", err)
			fmt.Printf("AI analysis unavailable for %q (see log for details)\n", result.Name)
			return nil
		}
	}

	analyzer := triage.NewAnalyzer(provider, cfg.Triage)
	if !analyzer.ShouldAnalyze(result) {
		fmt.Printf("Skipping %q: not a failure or not tagged for analysis\n", result.Name)
		return nil
	}

	if cfg.DryRun {
		facts := triage.BuildFacts(result, snap)
		fmt.Println("=== DRY RUN: prompt that would be sent ===")
		fmt.Println(triage.SystemRules)
		fmt.Println()
		fmt.Println(triage.BuildPrompt(facts, result.Message))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout(cfg))
	defer cancel()

	report, err := analyzer.Analyze(ctx, result, snap)
	if err != nil {
		slog.Warn("AI analysis unavailable", "test", result.Name)
		slog.Debug("analysis error detail", "error", err)
		fmt.Printf("AI analysis unavailable for %q (see log for details)\n", result.Name)
		return nil
	}

	store, err := history.NewStore(cfg.DataDir)
	if err != nil {
		slog.Warn("failed to open report store", "error", err)
	} else if err := store.Save(&report); err != nil {
		slog.Warn("failed to persist report", "error", err)
	}

	printReport(report)
	return nil
}

// runGenerate produces one test data object and prints it as JSON.
func runGenerate(cfg config.Config, dataType string, pairs []string) error {
	constraints, err := parseConstraints(pairs)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout(cfg))
	defer cancel()

	provider, err := ai.NewProvider(cfg)
	if err != nil {
		return err
	}

	generator := testdata.NewGenerator(provider)
	object, err := generator.Generate(ctx, dataType, constraints)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(object, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// runHistory lists stored reports or shows a single one.
func runHistory(cfg config.Config, args []string) error {
	store, err := history.NewStore(cfg.DataDir)
	if err != nil {
		return err
	}

	if len(args) >= 2 && args[0] == "show" {
		report, err := store.Load(args[1])
		if err != nil {
			return err
		}
		printReport(*report)
		return nil
	}

	reports, err := store.List()
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		fmt.Println("No reports stored yet.")
		return nil
	}
	for _, meta := range reports {
		fmt.Printf("%s  %s  %-20s %s\n",
			meta.ID, meta.CreatedAt.Format(time.RFC3339), meta.Exception, meta.Test)
	}
	return nil
}

// checkConfig validates the loaded configuration. Validation is skipped in
// dry-run mode, where no backend is contacted.
func checkConfig(cfg config.Config) error {
	if cfg.DryRun {
		return nil
	}
	return cfg.Validate()
}

// parseConstraints turns key=value arguments into a constraint map.
func parseConstraints(pairs []string) (map[string]string, error) {
	constraints := make(map[string]string)
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("constraint %q is not key=value", pair)
		}
		constraints[key] = value
	}
	return constraints, nil
}

func requestTimeout(cfg config.Config) time.Duration {
	seconds := cfg.Ollama.TimeoutSeconds
	if cfg.Provider == string(ai.ProviderOpenAI) {
		seconds = cfg.OpenAI.TimeoutSeconds
	}
	if seconds <= 0 {
		return ollama.DefaultTimeout
	}
	return time.Duration(seconds) * time.Second
}

func printReport(report triage.Report) {
	fmt.Printf("=== Analysis for %s (%s) ===\n", report.Test, report.Model)
	if report.Hint != "" {
		fmt.Printf("Hint: %s\n", report.Hint)
	}
	fmt.Println(report.Analysis)
	if report.ID != "" {
		fmt.Printf("(stored as report %s)\n", report.ID)
	}
}
