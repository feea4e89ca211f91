package log

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInit_FileLogging(t *testing.T) {
	tmpDir := t.TempDir()

	if err := Init(Options{DebugDir: tmpDir, Stderr: &bytes.Buffer{}}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	Debug("runtime command", "args", "ps -a")
	Info("server created", "name", "web")
	Close()

	today := time.Now().Format("2006-01-02")
	content, err := os.ReadFile(filepath.Join(tmpDir, today+".jsonl"))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	for _, msg := range []string{"runtime command", "server created"} {
		if !strings.Contains(string(content), msg) {
			t.Errorf("log file should contain %q, got: %s", msg, content)
		}
	}
}

func TestInit_StderrLevels(t *testing.T) {
	var stderr bytes.Buffer

	if err := Init(Options{Stderr: &stderr}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer Close()

	Debug("debug message")
	Info("info message")
	Warn("warn message")
	Error("error message")

	output := stderr.String()
	if strings.Contains(output, "debug message") || strings.Contains(output, "info message") {
		t.Errorf("debug/info should not reach stderr without verbose, got: %s", output)
	}
	if !strings.Contains(output, "warn message") || !strings.Contains(output, "error message") {
		t.Errorf("warn/error should reach stderr, got: %s", output)
	}
}

func TestInit_Verbose(t *testing.T) {
	var stderr bytes.Buffer

	if err := Init(Options{Verbose: true, Stderr: &stderr}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer Close()

	Debug("debug message")

	if !strings.Contains(stderr.String(), "debug message") {
		t.Error("debug should appear on stderr in verbose mode")
	}
}

func TestInit_JSONFormat(t *testing.T) {
	var stderr bytes.Buffer

	if err := Init(Options{JSONFormat: true, Stderr: &stderr}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer Close()

	Warn("credential store unreadable", "path", "/tmp/x.json")

	assert.Contains(t, stderr.String(), `"msg":"credential store unreadable"`)
}

func TestRedactArgs(t *testing.T) {
	args := []string{"run", "-d", "--name", "web", "atmoz/sftp", "alice:s3cret:1001"}

	got := RedactArgs(args, "s3cret", "")

	assert.Equal(t, "alice:[REDACTED]:1001", got[5])
	assert.Equal(t, "alice:s3cret:1001", args[5], "input must not be modified")
	assert.Equal(t, args[:5], got[:5])
}
