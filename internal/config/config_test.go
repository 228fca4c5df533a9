package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFrom_ValidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	data := `terminal:
  max_paste_bytes: 2048
  scrollback_lines: 500
  shell: /bin/zsh
  queue_capacity: 64
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if cfg.Terminal.MaxPasteBytes != 2048 {
		t.Errorf("MaxPasteBytes = %d, want 2048", cfg.Terminal.MaxPasteBytes)
	}
	if cfg.Terminal.ScrollbackLines != 500 {
		t.Errorf("ScrollbackLines = %d, want 500", cfg.Terminal.ScrollbackLines)
	}
	if cfg.Terminal.Shell != "/bin/zsh" {
		t.Errorf("Shell = %q, want /bin/zsh", cfg.Terminal.Shell)
	}
	if cfg.Terminal.QueueCapacity != 64 {
		t.Errorf("QueueCapacity = %d, want 64", cfg.Terminal.QueueCapacity)
	}
}

func TestLoadFrom_MissingFile(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected non-nil config")
	}
	if cfg.Terminal.MaxPasteBytes != DefaultMaxPasteBytes {
		t.Errorf("MaxPasteBytes = %d, want default %d", cfg.Terminal.MaxPasteBytes, DefaultMaxPasteBytes)
	}
	if cfg.Terminal.ScrollbackLines != DefaultScrollbackLines {
		t.Errorf("ScrollbackLines = %d, want default %d", cfg.Terminal.ScrollbackLines, DefaultScrollbackLines)
	}
	if cfg.Terminal.QueueCapacity != DefaultQueueCapacity {
		t.Errorf("QueueCapacity = %d, want default %d", cfg.Terminal.QueueCapacity, DefaultQueueCapacity)
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte("{{invalid yaml"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFrom(path)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoadFrom_NegativeValuesRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	data := `terminal:
  max_paste_bytes: -1
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFrom(path)
	if err == nil {
		t.Fatal("expected error for negative max_paste_bytes")
	}
}

func TestLoadFrom_ShellFallsBackToEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("terminal: {}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("SHELL", "/bin/fish")
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Terminal.Shell != "/bin/fish" {
		t.Errorf("Shell = %q, want /bin/fish", cfg.Terminal.Shell)
	}
}
