package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-editor/internal/migration"
	"github.com/jonathan/resume-editor/internal/observability"
	"github.com/jonathan/resume-editor/internal/schemas"
	"github.com/jonathan/resume-editor/internal/types"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Lift a stored resume document into the current schema",
	Long: `Reads a resume document written by any editor version (legacy flat, intermediate or current),
migrates it to the current schema and writes the result as JSON.

Unreadable input (not a JSON object) is an error; the document is never partially written.

--detect only reports which version the input was written by. --schema checks the
migrated document against an additional JSON Schema, such as a house style policy.`,
	RunE: runMigrate,
}

var (
	migrateInput  string
	migrateOutput string
	migrateStrict bool
	migrateSchema string
	migrateDetect bool
)

func init() {
	migrateCmd.Flags().StringVarP(&migrateInput, "in", "i", "", "Path to document JSON file (required)")
	migrateCmd.Flags().StringVarP(&migrateOutput, "out", "o", "", "Path to output JSON file (default: stdout)")
	migrateCmd.Flags().BoolVar(&migrateStrict, "strict", false, "Fail when the migrated document does not match the current document schema")
	migrateCmd.Flags().StringVar(&migrateSchema, "schema", "", "Path to an additional JSON Schema the migrated document must satisfy")
	migrateCmd.Flags().BoolVar(&migrateDetect, "detect", false, "Print the detected document version and exit without migrating")
	migrateCmd.MarkFlagsMutuallyExclusive("detect", "out")

	if err := migrateCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer log.Sync()

	content, err := os.ReadFile(migrateInput)
	if err != nil {
		return fmt.Errorf("failed to read document file: %w", err)
	}

	if migrateDetect {
		version, err := migration.DetectVersion(json.RawMessage(content))
		if err != nil {
			return fmt.Errorf("document version could not be detected: %w", err)
		}
		_, _ = fmt.Fprintln(os.Stdout, version)
		return nil
	}

	doc, report, err := migration.Migrate(json.RawMessage(content))
	if err != nil {
		var invalid *migration.InvalidDocumentError
		if errors.As(err, &invalid) {
			return fmt.Errorf("document could not be migrated: %w", err)
		}
		return fmt.Errorf("failed to migrate document: %w", err)
	}
	log.Debug("document migrated", "file", migrateInput, "from", report.From.String(), "steps", report.Steps)

	if err := checkDocument(doc, migrateStrict, migrateSchema); err != nil {
		return err
	}

	if err := writeJSON(migrateOutput, doc); err != nil {
		return err
	}

	if cfg.Verbose {
		observability.NewPrinter(diagnostics(migrateOutput)).PrintMigration(doc, report)
	}
	if migrateOutput != "" {
		_, _ = fmt.Fprintf(os.Stdout, "Migrated %s (%s) to %s\n", migrateInput, report.From, migrateOutput)
	}
	return nil
}

// checkDocument validates a migrated document against the shipped schema,
// which only warns unless strict, and against the optional policy schema,
// which always fails.
func checkDocument(doc *types.Document, strict bool, policyPath string) error {
	if err := schemas.ValidateDocument(doc); err != nil {
		if strict {
			return fmt.Errorf("migrated document failed schema check: %w", err)
		}
		_, _ = fmt.Fprintf(os.Stderr, "Warning: migrated document does not match the current schema:\n%v", err)
	}
	if policyPath == "" {
		return nil
	}
	if err := schemas.ValidateAgainst(policyPath, doc); err != nil {
		return fmt.Errorf("migrated document failed %s: %w", policyPath, err)
	}
	return nil
}
