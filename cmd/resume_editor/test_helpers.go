package main

import (
	"os"
	"path/filepath"
	"testing"
)

// getBinaryPath returns the path to the resume_editor binary for testing
func getBinaryPath(t *testing.T) string {
	binaryName := "resume_editor"
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := filepath.Join("..", "..", "bin", binaryName)
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		t.Skipf("Binary not found at %s, build it first with 'go build -o bin/resume_editor ./cmd/resume_editor'", binaryPath)
	}

	return binaryPath
}

// writeFixture writes content into a fresh temp dir and returns its path.
func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

const legacyFixture = `{
  "name": "Jane Doe",
  "title": "Software Engineer",
  "email": "jane@example.com",
  "linkedin": "https://linkedin.com/in/janedoe",
  "skills": ["Go", "PostgreSQL"],
  "experience": [
    {"company": "Acme", "position": "Engineer", "summary": "Built things", "highlights": ["Shipped v2", "Cut latency by 40%"]}
  ]
}`
