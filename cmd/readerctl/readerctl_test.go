package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeBook(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tale.txt")
	if err := os.WriteFile(path, []byte("intro\nChapter 1 Start\nOnce.\nChapter 2 End\nTwice."), 0644); err != nil {
		t.Fatalf("Failed to write book: %v", err)
	}
	return path
}

func TestExportCommand(t *testing.T) {
	book := writeBook(t)

	out, err := runCLI(t, "export", book, "--format", "md", "--output", "")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !strings.HasPrefix(out, "# tale\n") || !strings.Contains(out, "## Chapter 2 End\n\nTwice.") {
		t.Errorf("Unexpected export output:\n%s", out)
	}

	if _, err := runCLI(t, "export", book, "--format", "docx"); err == nil {
		t.Error("Expected error for unknown format")
	}
	flagFormat = "md"
}

func TestImportCommand(t *testing.T) {
	book := writeBook(t)
	dataDir := t.TempDir()

	out, err := runCLI(t, "import", book, "--data", dataDir)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if !strings.Contains(out, "tale by unknown (3 chapters)") || !strings.Contains(out, "saved as book_") {
		t.Errorf("Unexpected import output:\n%s", out)
	}

	entries, err := os.ReadDir(filepath.Join(dataDir, "books"))
	if err != nil || len(entries) != 1 {
		t.Errorf("Expected one stored book, got %v (%v)", entries, err)
	}
}
