package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-editor/internal/logger"
	"github.com/jonathan/resume-editor/internal/migration"
	"github.com/jonathan/resume-editor/internal/observability"
)

var migrateBatchCmd = &cobra.Command{
	Use:   "migrate-batch",
	Short: "Migrate every document in a directory",
	Long: `Migrates every *.json document in --in-dir concurrently and writes the current-schema
documents under the same names to --out-dir. Unreadable documents are reported and skipped.`,
	RunE: runMigrateBatch,
}

var (
	batchInputDir  string
	batchOutputDir string
	batchWorkers   int
)

func init() {
	migrateBatchCmd.Flags().StringVar(&batchInputDir, "in-dir", "", "Directory of document JSON files (required)")
	migrateBatchCmd.Flags().StringVar(&batchOutputDir, "out-dir", "", "Directory for migrated documents (required)")
	migrateBatchCmd.Flags().IntVar(&batchWorkers, "workers", 4, "Number of documents migrated concurrently")

	if err := migrateBatchCmd.MarkFlagRequired("in-dir"); err != nil {
		panic(fmt.Sprintf("failed to mark in-dir flag as required: %v", err))
	}
	if err := migrateBatchCmd.MarkFlagRequired("out-dir"); err != nil {
		panic(fmt.Sprintf("failed to mark out-dir flag as required: %v", err))
	}

	rootCmd.AddCommand(migrateBatchCmd)
}

// batchResult tallies a directory migration.
type batchResult struct {
	mu        sync.Mutex
	total     int
	byVersion map[migration.Version]int
	failed    []string
}

func (r *batchResult) record(name string, from migration.Version, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.failed = append(r.failed, fmt.Sprintf("%s: %v", name, err))
		return
	}
	r.byVersion[from]++
}

func runMigrateBatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer log.Sync()

	if batchWorkers < 1 {
		return fmt.Errorf("--workers must be at least 1")
	}
	if err := os.MkdirAll(batchOutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	result, err := migrateDir(cmd.Context(), batchInputDir, batchOutputDir, batchWorkers, log)
	if err != nil {
		return err
	}

	observability.NewPrinter(os.Stdout).PrintBatchSummary(result.total, result.byVersion, result.failed)
	if len(result.failed) > 0 {
		return fmt.Errorf("%d of %d documents could not be migrated", len(result.failed), result.total)
	}
	return nil
}

// migrateDir migrates every *.json file in inDir into outDir. Per-document
// failures are collected in the result; only I/O on the directories themselves
// or a cancelled context aborts the batch.
func migrateDir(ctx context.Context, inDir, outDir string, workers int, log *logger.Logger) (*batchResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	files, err := filepath.Glob(filepath.Join(inDir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	sort.Strings(files)

	result := &batchResult{total: len(files), byVersion: make(map[migration.Version]int)}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, path := range files {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			name := filepath.Base(path)
			from, err := migrateFile(path, filepath.Join(outDir, name))
			if err != nil {
				log.Warn("document skipped", "file", name, "error", err)
			} else {
				log.Debug("document migrated", "file", name, "from", from.String())
			}
			result.record(name, from, err)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch migration aborted: %w", err)
	}

	sort.Strings(result.failed)
	return result, nil
}

func migrateFile(inPath, outPath string) (migration.Version, error) {
	content, err := os.ReadFile(inPath)
	if err != nil {
		return 0, fmt.Errorf("failed to read: %w", err)
	}
	doc, report, err := migration.Migrate(json.RawMessage(content))
	if err != nil {
		return 0, err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("failed to marshal: %w", err)
	}
	if err := os.WriteFile(outPath, append(data, '\n'), 0644); err != nil {
		return 0, fmt.Errorf("failed to write: %w", err)
	}
	return report.From, nil
}
