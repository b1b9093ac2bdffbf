// Copyright 2025 Caselight Systems
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
	"path/filepath"
	"strings"

	"github.com/caselight/retrieval"
	"github.com/caselight/retrieval/ai"
	"github.com/caselight/retrieval/core"
	"github.com/caselight/retrieval/index/qdrant"
	"github.com/caselight/retrieval/ingest"
	"github.com/caselight/retrieval/search"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "caselight",
		Usage: "Hybrid sparse and dense retrieval over legal case documents",
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
				Name:      "index",
				Usage:     "Chunk, encode and index a document",
				ArgsUsage: "FILE",
				Action:    indexCommand,
				Flags: append(engineFlags(),
					&cli.StringFlag{
						Name:  "document-id",
						Usage: "Document identifier (defaults to the file name)",
					},
					&cli.StringFlag{
						Name:     "case-id",
						Usage:    "Case the document belongs to",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "template",
						Usage: "Structural template (contract, brief, transcript, generic)",
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Run a hybrid search and print calibrated results",
				ArgsUsage: "QUERY...",
				Action:    searchCommand,
				Flags: append(engineFlags(),
					&cli.StringSliceFlag{
						Name:  "case",
						Usage: "Restrict results to these case IDs",
					},
					&cli.StringSliceFlag{
						Name:  "granularity",
						Usage: "Restrict dense legs (summary, section, microblock)",
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Maximum number of results",
						Value: 10,
					},
					&cli.Float64Flag{
						Name:  "min-score",
						Usage: "Calibrated score threshold (0 disables filtering)",
					},
					&cli.BoolFlag{
						Name:  "debug-scores",
						Usage: "Print the calibration trace for each result",
					},
				),
			},
			{
				Name:      "delete",
				Usage:     "Remove a document from the index and metadata store",
				ArgsUsage: "DOCUMENT_ID",
				Action:    deleteCommand,
				Flags:     engineFlags(),
			},
			{
				Name:   "refit",
				Usage:  "Rebuild the sparse vocabulary from the stored corpus",
				Action: refitCommand,
				Flags:  engineFlags(),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// engineFlags are the flags every command needs to assemble an Engine.
func engineFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
		},
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
		&cli.IntFlag{
			Name:  "dimensions",
			Usage: "Embedding vector width",
			Value: 384,
		},
		&cli.StringFlag{
			Name:  "qdrant-url",
			Usage: "Qdrant base URL (omit for the in-process index)",
		},
		&cli.StringFlag{
			Name:  "qdrant-api-key",
			Usage: "Qdrant API key",
		},
		&cli.StringFlag{
			Name:  "collection",
			Usage: "Qdrant collection name",
			Value: "caselight",
		},
	}
}

// openEngine assembles an Engine from command-line flags.
func openEngine(ctx context.Context, c *cli.Context) (*retrieval.Engine, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithDimensions(c.Int("dimensions")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	opts := []retrieval.EngineOption{retrieval.WithAIConfig(aiConfig)}

	if url := c.String("qdrant-url"); url != "" {
		store, err := qdrant.NewStore(ctx, qdrant.Config{
			URL:        url,
			APIKey:     c.String("qdrant-api-key"),
			Collection: c.String("collection"),
			Dimensions: c.Int("dimensions"),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Qdrant: %w", err)
		}
		opts = append(opts, retrieval.WithIndexStore(store))
	}

	engine, err := retrieval.NewEngine(c.String("db"), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open engine: %w", err)
	}
	return engine, nil
}

func indexCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one file argument")
	}
	path := c.Args().First()

	text, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	documentID := c.String("document-id")
	if documentID == "" {
		documentID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	engine, err := openEngine(ctx, c)
	if err != nil {
		return err
	}
	defer engine.Close()

	receipt, err := engine.IndexDocument(ctx, ingestDocument(c, documentID, string(text)))
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Document: %s\n", receipt.DocumentID)
	fmt.Fprintf(os.Stderr, "Chunks indexed: %d\n", receipt.ChunksIndexed)
	if receipt.ChunksSkipped > 0 {
		fmt.Fprintf(os.Stderr, "Chunks skipped: %d\n", receipt.ChunksSkipped)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.NArg() == 0 {
		return fmt.Errorf("expected a query")
	}
	query := strings.Join(c.Args().Slice(), " ")

	engine, err := openEngine(ctx, c)
	if err != nil {
		return err
	}
	defer engine.Close()

	req := searchRequest(c, query)
	resp, err := engine.Search(ctx, req)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Printf("Found %d hits (%d candidates, %d below threshold)\n",
		len(resp.Results), resp.TotalBeforeFilter, resp.FilteredCount)
	for i, hit := range resp.Results {
		fmt.Printf("%d: [%0.3f] %s/%s %s#%d\n",
			i+1,
			hit.CalibratedScore,
			hit.Payload.CaseID,
			hit.Payload.DocumentID,
			hit.Payload.Granularity,
			hit.Payload.Position,
		)
		if label := hit.Payload.StructuralLabel; label != "" {
			fmt.Printf("   %s\n", label)
		}
		fmt.Printf("   %s\n", firstLine(hit.Payload.Text))
		if c.Bool("debug-scores") {
			d := hit.Debug
			fmt.Printf("   rrf=%0.6f norm=%0.3f bm25=%0.3f boost=%0.3f\n",
				d.RawRRFScore, d.Normalized, d.BM25Raw, d.Boost)
		}
	}
	return nil
}

func deleteCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one document ID argument")
	}
	documentID := c.Args().First()

	engine, err := openEngine(ctx, c)
	if err != nil {
		return err
	}
	defer engine.Close()

	deleted, err := engine.DeleteDocument(ctx, documentID)
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Deleted %d chunks of %s\n", deleted, documentID)
	return nil
}

func refitCommand(c *cli.Context) error {
	ctx := context.Background()

	engine, err := openEngine(ctx, c)
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := engine.RefitVocabulary(ctx); err != nil {
		return fmt.Errorf("refit failed: %w", err)
	}

	fmt.Fprintln(os.Stderr, "Vocabulary refit and persisted")
	return nil
}

func ingestDocument(c *cli.Context, documentID, text string) ingest.Document {
	return ingest.Document{
		DocumentID: documentID,
		CaseID:     c.String("case-id"),
		Text:       text,
		Template:   c.String("template"),
	}
}

func searchRequest(c *cli.Context, query string) search.Request {
	req := search.Request{
		Query:   query,
		CaseIDs: c.StringSlice("case"),
		TopK:    c.Int("top-k"),
	}
	for _, g := range c.StringSlice("granularity") {
		req.Granularities = append(req.Granularities, core.Granularity(g))
	}
	if c.IsSet("min-score") {
		threshold := c.Float64("min-score")
		req.MinScore = &threshold
	}
	return req
}

// firstLine trims a chunk down to a single display line.
func firstLine(text string) string {
	line := strings.TrimSpace(text)
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	if len(line) > 120 {
		line = line[:120] + "..."
	}
	return line
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
