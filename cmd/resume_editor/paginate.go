package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-editor/internal/browser"
	"github.com/jonathan/resume-editor/internal/config"
	"github.com/jonathan/resume-editor/internal/logger"
	"github.com/jonathan/resume-editor/internal/observability"
	"github.com/jonathan/resume-editor/internal/pagination"
	"github.com/jonathan/resume-editor/internal/types"
)

var paginateCmd = &cobra.Command{
	Use:   "paginate",
	Short: "Split rendered resume content into fixed-height pages",
	Long: `Computes page-break corrections so that no atomic block straddles a page boundary.

Geometry comes either from a JSON file of measured blocks (--blocks) or from an HTML preview
rendered in headless Chrome (--html, requires Chrome). The HTML must contain a canonical flow
container marked data-flow="canonical" whose atomic blocks carry data-block and data-atomic.`,
	RunE: runPaginate,
}

var (
	paginateBlocks   string
	paginateHTML     string
	paginateCapacity float64
	paginateTimeout  time.Duration
	paginateOutput   string
	paginateWatch    bool
)

func init() {
	paginateCmd.Flags().StringVarP(&paginateBlocks, "blocks", "b", "", "Path to measured geometry JSON file (mutually exclusive with --html)")
	paginateCmd.Flags().StringVar(&paginateHTML, "html", "", "Path to HTML preview file (mutually exclusive with --blocks)")
	paginateCmd.Flags().Float64Var(&paginateCapacity, "capacity", 0, "Usable page height in CSS pixels (default from config)")
	paginateCmd.Flags().DurationVar(&paginateTimeout, "timeout", browser.DefaultTimeout, "Time allowed for the HTML preview to load")
	paginateCmd.Flags().StringVarP(&paginateOutput, "out", "o", "", "Path to output Layout JSON file (default: stdout)")

	paginateCmd.Flags().BoolVarP(&paginateWatch, "watch", "w", false, "Keep the HTML preview open and print a new layout whenever it changes (requires --html)")

	paginateCmd.MarkFlagsMutuallyExclusive("blocks", "html")
	paginateCmd.MarkFlagsOneRequired("blocks", "html")

	rootCmd.AddCommand(paginateCmd)
}

func runPaginate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer log.Sync()

	capacity := cfg.PageCapacity
	if cmd.Flags().Changed("capacity") {
		capacity = paginateCapacity
	}
	if capacity <= 0 {
		return fmt.Errorf("--capacity must be positive")
	}
	opts := []pagination.Option{
		pagination.WithMaxIterations(cfg.MaxIterations),
		pagination.WithLogger(log),
	}

	if paginateWatch {
		if paginateHTML == "" {
			return fmt.Errorf("--watch requires --html")
		}
		return watchRendered(cmd.Context(), paginateHTML, capacity, cfg, log, opts)
	}

	var layout types.Layout
	if paginateHTML != "" {
		layout, err = paginateRendered(cmd.Context(), paginateHTML, capacity, log, opts)
	} else {
		layout, err = paginateMeasured(paginateBlocks, capacity, opts)
	}
	if err != nil {
		return err
	}

	if err := writeJSON(paginateOutput, layout); err != nil {
		return err
	}
	if cfg.Verbose {
		observability.NewPrinter(diagnostics(paginateOutput)).PrintLayout(layout)
	}
	return nil
}

// paginateMeasured lays out geometry recorded by a renderer. A capacity in the
// file is ignored in favour of the configured one.
func paginateMeasured(path string, capacity float64, opts []pagination.Option) (types.Layout, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return types.Layout{}, fmt.Errorf("failed to read blocks file: %w", err)
	}

	var req types.PaginateRequest
	if err := json.Unmarshal(content, &req); err != nil {
		return types.Layout{}, fmt.Errorf("failed to unmarshal blocks JSON: %w", err)
	}
	req.Capacity = capacity
	if err := req.Validate(); err != nil {
		return types.Layout{}, fmt.Errorf("invalid blocks file: %w", err)
	}

	return pagination.Paginate(req.Blocks, req.ContentHeight, req.Capacity, opts...), nil
}

// paginateRendered measures an HTML preview in headless Chrome.
func paginateRendered(ctx context.Context, path string, capacity float64, log *logger.Logger, opts []pagination.Option) (types.Layout, error) {
	html, err := os.ReadFile(path)
	if err != nil {
		return types.Layout{}, fmt.Errorf("failed to read HTML file: %w", err)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	layout, err := browser.Paginate(ctx, string(html), capacity, paginateTimeout, log, opts...)
	if err != nil {
		return types.Layout{}, fmt.Errorf("failed to paginate HTML preview: %w", err)
	}
	return layout, nil
}

// watchRendered re-lays out an HTML preview every frame and whenever the file
// changes on disk, printing each distinct layout until interrupted.
func watchRendered(ctx context.Context, path string, capacity float64, cfg config.Config, log *logger.Logger, opts []pagination.Option) error {
	html, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read HTML file: %w", err)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	reload := make(chan string, 1)
	go pollFile(ctx, path, time.Second, reload, log)

	printer := observability.NewPrinter(diagnostics(paginateOutput))
	var last *types.Layout
	onLayout := func(layout types.Layout) {
		if last != nil && sameLayout(*last, layout) {
			return
		}
		last = &layout
		if err := writeJSON(paginateOutput, layout); err != nil {
			log.Warn("failed to write layout", "error", err)
		}
		if cfg.Verbose {
			printer.PrintLayout(layout)
		}
	}

	err = browser.Watch(ctx, string(html), capacity, cfg.FrameInterval(), paginateTimeout, reload, onLayout, log, opts...)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to watch HTML preview: %w", err)
	}
	return nil
}

// sameLayout reports whether two passes produced the same pages.
func sameLayout(a, b types.Layout) bool {
	return a.PageCount == b.PageCount &&
		a.ContentHeight == b.ContentHeight &&
		maps.Equal(a.Corrections, b.Corrections)
}

// pollFile sends the file's content on reload whenever its modification time
// changes.
func pollFile(ctx context.Context, path string, interval time.Duration, reload chan<- string, log *logger.Logger) {
	var modified time.Time
	if info, err := os.Stat(path); err == nil {
		modified = info.ModTime()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		info, err := os.Stat(path)
		if err != nil || !info.ModTime().After(modified) {
			continue
		}
		modified = info.ModTime()

		content, err := os.ReadFile(path)
		if err != nil {
			log.Warn("failed to re-read HTML file", "error", err)
			continue
		}
		log.Debug("HTML preview changed", "file", path)
		select {
		case reload <- string(content):
		case <-ctx.Done():
			return
		}
	}
}
