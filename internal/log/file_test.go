package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFileWriter_Write(t *testing.T) {
	tmpDir := t.TempDir()

	fw, err := NewFileWriter(tmpDir)
	if err != nil {
		t.Fatalf("NewFileWriter failed: %v", err)
	}
	defer fw.Close()

	// Write a log line
	_, err = fw.Write([]byte(`{"msg":"test"}`))
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	// Verify file exists with today's date
	today := time.Now().Format("2006-01-02")
	logFile := filepath.Join(tmpDir, today+".jsonl")
	if _, err := os.Stat(logFile); os.IsNotExist(err) {
		t.Errorf("expected log file %s to exist", logFile)
	}

	// Verify content
	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(content), `{"msg":"test"}`) {
		t.Errorf("expected content to contain test message, got: %s", content)
	}
}

func TestFileWriter_LatestSymlink(t *testing.T) {
	tmpDir := t.TempDir()

	fw, err := NewFileWriter(tmpDir)
	if err != nil {
		t.Fatalf("NewFileWriter failed: %v", err)
	}
	defer fw.Close()

	// Write something to create the file
	if _, err := fw.Write([]byte(`{"msg":"test"}`)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	// Verify symlink exists
	symlinkPath := filepath.Join(tmpDir, "latest")
	target, err := os.Readlink(symlinkPath)
	if err != nil {
		t.Fatalf("reading symlink: %v", err)
	}

	today := time.Now().Format("2006-01-02")
	expected := today + ".jsonl"
	if target != expected {
		t.Errorf("expected symlink to point to %s, got %s", expected, target)
	}
}

func TestCleanup_RemovesOnlyExpiredDailyFiles(t *testing.T) {
	tmpDir := t.TempDir()

	old := time.Now().AddDate(0, 0, -20).Format("2006-01-02") + ".jsonl"
	recent := time.Now().AddDate(0, 0, -2).Format("2006-01-02") + ".jsonl"
	for _, name := range []string{old, recent, "notes.txt"} {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	if n := Cleanup(tmpDir, 14); n != 1 {
		t.Errorf("Cleanup removed %d files, want 1", n)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, old)); !os.IsNotExist(err) {
		t.Errorf("expected %s to be removed", old)
	}
	for _, name := range []string{recent, "notes.txt"} {
		if _, err := os.Stat(filepath.Join(tmpDir, name)); err != nil {
			t.Errorf("expected %s to survive: %v", name, err)
		}
	}
}

func TestCleanup_MissingDir(t *testing.T) {
	if n := Cleanup(filepath.Join(t.TempDir(), "absent"), 7); n != 0 {
		t.Errorf("Cleanup on missing dir = %d, want 0", n)
	}
}
