// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/aquakb"
	"github.com/poiesic/aquakb/ai"
	"github.com/poiesic/aquakb/core"
	"github.com/poiesic/aquakb/corpus"
	"github.com/poiesic/aquakb/pipeline"
	"github.com/poiesic/aquakb/storage/badger"
	"github.com/urfave/cli/v2"
)

func main() {
	// Optional .env for service hosts and tokens.
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "aquakb",
		Usage: "Build and query a semantic knowledge base over a groundwater modeling library",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run the analysis and embedding pipeline over the corpus",
				Action: runCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "modules",
						Usage: "Root directory of the library source tree",
					},
					&cli.StringFlag{
						Name:  "tutorials",
						Usage: "Directory of tutorial scripts and notebooks",
					},
					&cli.StringFlag{
						Name:  "issues",
						Usage: "JSONL export of repository issues",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Process at most N items per stage (0 = no limit)",
					},
					&cli.BoolFlag{
						Name:  "reset-checkpoints",
						Usage: "Discard saved run progress before starting",
					},
					&cli.StringFlag{
						Name:  "analyzer-host",
						Usage: "Analysis service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "analyzer-model",
						Usage: "Analysis model name",
						Value: "qwen2.5:7b",
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum attempts per external call",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 2 * time.Second,
					},
					&cli.DurationFlag{
						Name:  "pace",
						Usage: "Fixed delay between items",
						Value: 250 * time.Millisecond,
					},
					&cli.IntFlag{
						Name:  "flush-every",
						Usage: "Flush the checkpoint every N completed items",
						Value: 10,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N items",
						Value: 25,
					},
					dbFlag(),
				}, embeddingFlags()...),
			},
			{
				Name:   "status",
				Usage:  "Report per-stage processing counts without running the pipeline",
				Action: statusCommand,
				Flags:  []cli.Flag{dbFlag()},
			},
			{
				Name:   "reset",
				Usage:  "Clear stage records and checkpoints so items return to pending",
				Action: resetCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:  "stage",
						Usage: "Reset only this stage (analysis or embedding)",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Query the knowledge base",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:  "max-hits",
						Usage: "Maximum number of results",
						Value: 5,
					},
					dbFlag(),
				}, embeddingFlags()...),
			},
		},
	}
}

func dbFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "db",
		Aliases:  []string{"d"},
		Usage:    "Path to BadgerDB database directory",
		Required: true,
	}
}

func embeddingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
		&cli.StringFlag{
			Name:    "api-token",
			Usage:   "API token for the AI services",
			Value:   "none",
			EnvVars: []string{"AQUAKB_API_TOKEN"},
		},
	}
}

func runCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scanner, err := corpus.NewScanner(&corpus.Config{
		ModulesDir:   c.String("modules"),
		TutorialsDir: c.String("tutorials"),
		IssuesFile:   c.String("issues"),
	})
	if err != nil {
		return fmt.Errorf("invalid corpus configuration: %w", err)
	}

	aiConfig := ai.NewConfig(
		ai.WithAnalyzerHost(c.String("analyzer-host")),
		ai.WithAnalyzerModel(c.String("analyzer-model")),
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithAPIToken(c.String("api-token")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	kb, err := aquakb.Open(c.String("db"), aquakb.WithAIConfig(aiConfig))
	if err != nil {
		return fmt.Errorf("failed to open knowledge base: %w", err)
	}
	defer kb.Close()

	pipelineConfig := &pipeline.Config{
		MaxAttempts:    c.Int("max-retries"),
		BaseDelay:      c.Duration("retry-delay"),
		PaceDelay:      c.Duration("pace"),
		FlushEvery:     c.Int("flush-every"),
		ReportInterval: c.Int("report-interval"),
		Limit:          c.Int("limit"),
	}
	if pipelineConfig.MaxAttempts <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}
	if pipelineConfig.FlushEvery < 0 {
		return fmt.Errorf("flush-every must not be negative")
	}

	controller, err := kb.NewPipelineController(scanner, pipelineConfig, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}

	if c.Bool("reset-checkpoints") {
		if err := controller.ResetCheckpoints(ctx); err != nil {
			return fmt.Errorf("failed to reset checkpoints: %w", err)
		}
		fmt.Fprintln(os.Stderr, "Checkpoints cleared")
	}

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Analyzer: %s (%s)\n", c.String("analyzer-model"), c.String("analyzer-host"))
	fmt.Fprintf(os.Stderr, "Embedder: %s (%s)\n", c.String("embedding-model"), c.String("embedding-host"))
	fmt.Fprintln(os.Stderr)

	// Per-item failures are recorded in stage records and retried on the
	// next run; only fatal errors reach here.
	if _, err := controller.Run(ctx); err != nil {
		return fmt.Errorf("pipeline run failed: %w", err)
	}

	return nil
}

func statusCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewItemRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer repo.Close()

	stages := []core.Stage{core.StageAnalysis, core.StageEmbedding}

	rows := make([][]string, 0, len(stages))
	for _, stage := range stages {
		counts, err := repo.CountStageStatuses(ctx, stage)
		if err != nil {
			return fmt.Errorf("failed to count %s records: %w", stage, err)
		}
		rows = append(rows, []string{
			string(stage),
			strconv.Itoa(counts[core.StatusPending]),
			strconv.Itoa(counts[core.StatusProcessing]),
			strconv.Itoa(counts[core.StatusCompleted]),
			strconv.Itoa(counts[core.StatusFailed]),
		})
	}

	fmt.Println(renderTable(
		[]string{"Stage", "Pending", "Processing", "Completed", "Failed"},
		rows, 1, 2, 3, 4))

	failures, err := collectFailures(ctx, repo, stages)
	if err != nil {
		return err
	}
	if len(failures) > 0 {
		fmt.Println()
		fmt.Println(renderTable([]string{"Stage", "Item", "Error"}, failures))
	}

	return nil
}

// collectFailures lists failed stage records with their item paths,
// ordered by stage then path.
func collectFailures(ctx context.Context, repo *badger.ItemRepository, stages []core.Stage) ([][]string, error) {
	items, err := repo.ListItemRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	paths := make(map[core.ID]string, len(items))
	for _, record := range items {
		paths[record.Item.Id] = record.Item.Path
	}

	var failures [][]string
	for _, stage := range stages {
		records, err := repo.ListStageRecords(ctx, stage)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s records: %w", stage, err)
		}
		stageFailures := make([][]string, 0)
		for id, record := range records {
			if record.Status != core.StatusFailed {
				continue
			}
			path := paths[id]
			if path == "" {
				path = fmt.Sprintf("item %d", id)
			}
			stageFailures = append(stageFailures, []string{
				string(stage), path, truncate(record.Error, 80),
			})
		}
		sort.Slice(stageFailures, func(i, j int) bool {
			return stageFailures[i][1] < stageFailures[j][1]
		})
		failures = append(failures, stageFailures...)
	}
	return failures, nil
}

func resetCommand(c *cli.Context) error {
	ctx := context.Background()

	stages := []core.Stage{core.StageAnalysis, core.StageEmbedding}
	if name := c.String("stage"); name != "" {
		switch name {
		case "analysis":
			stages = []core.Stage{core.StageAnalysis}
		case "embedding":
			stages = []core.Stage{core.StageEmbedding}
		default:
			return fmt.Errorf("unknown stage %q: must be analysis or embedding", name)
		}
	}

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewItemRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer repo.Close()

	checkpoints := badger.NewCheckpointRepository(backend)

	for _, stage := range stages {
		removed, err := repo.DeleteStageRecords(ctx, stage)
		if err != nil {
			return fmt.Errorf("failed to reset %s records: %w", stage, err)
		}
		if err := checkpoints.DeleteCheckpoint(ctx, stage); err != nil {
			return fmt.Errorf("failed to delete %s checkpoint: %w", stage, err)
		}
		fmt.Printf("%s: removed %d records\n", stage, removed)
	}

	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("query is required")
	}

	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithAPIToken(c.String("api-token")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	kb, err := aquakb.Open(c.String("db"), aquakb.WithAIConfig(aiConfig))
	if err != nil {
		return fmt.Errorf("failed to open knowledge base: %w", err)
	}
	defer kb.Close()

	searcher, err := kb.NewSearcher()
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	results, err := searcher.FindSimilar(ctx, query, c.Int("max-hits"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if len(results) == 0 {
		fmt.Println("No results")
		return nil
	}

	rows := make([][]string, 0, len(results))
	for _, result := range results {
		purpose := ""
		if result.Record.Analysis != nil {
			purpose = result.Record.Analysis.Purpose
		}
		rows = append(rows, []string{
			fmt.Sprintf("%.3f", result.Score),
			result.Record.Item.Path,
			truncate(purpose, 72),
		})
	}
	fmt.Println(renderTable([]string{"Score", "Item", "Purpose"}, rows, 0))

	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
