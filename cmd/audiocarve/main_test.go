package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/himanishpuri/AudioCarve/pkg/audiocarve"
)

func applyOptions(opts []audiocarve.Option) *audiocarve.Config {
	cfg := audiocarve.DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func TestResolveOptionsLayering(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "carve.yaml")
	yaml := "image: card.img\noutput_dir: from-file\ndb_path: file.sqlite3\nscan:\n  block_size: 65536\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	prev := configPath
	configPath = path
	t.Cleanup(func() { configPath = prev })

	t.Setenv("AUDIOCARVE_OUTPUT_DIR", "from-env")
	t.Setenv("AUDIOCARVE_DB_PATH", "")

	opts, err := resolveOptions()
	if err != nil {
		t.Fatalf("resolveOptions failed: %v", err)
	}
	cfg := applyOptions(opts)

	if cfg.ImagePath != "card.img" {
		t.Errorf("ImagePath = %q, want card.img", cfg.ImagePath)
	}
	if cfg.OutputDir != "from-env" {
		t.Errorf("OutputDir = %q, want environment to override file", cfg.OutputDir)
	}
	if cfg.DBPath != "file.sqlite3" {
		t.Errorf("DBPath = %q, want file.sqlite3", cfg.DBPath)
	}
	if cfg.BlockSize != 65536 {
		t.Errorf("BlockSize = %d, want 65536", cfg.BlockSize)
	}
	if cfg.SampleRate != audiocarve.DefaultSampleRate {
		t.Errorf("SampleRate = %d, want default %d", cfg.SampleRate, audiocarve.DefaultSampleRate)
	}
}

func TestResolveOptionsMissingFile(t *testing.T) {
	prev := configPath
	configPath = filepath.Join(t.TempDir(), "missing.yaml")
	t.Cleanup(func() { configPath = prev })

	if _, err := resolveOptions(); err == nil {
		t.Fatal("Expected error for missing config file")
	}
}

func TestPositionalOptions(t *testing.T) {
	t.Setenv("AUDIOCARVE_OUTPUT_DIR", "from-env")
	prev := configPath
	configPath = ""
	t.Cleanup(func() { configPath = prev })

	base, err := resolveOptions()
	if err != nil {
		t.Fatalf("resolveOptions failed: %v", err)
	}

	tests := []struct {
		name      string
		args      []string
		wantImage string
		wantOut   string
	}{
		{"no arguments", nil, "", "from-env"},
		{"image only", []string{"card.dmg"}, "card.dmg", "from-env"},
		{"image and output", []string{"card.dmg", "out"}, "card.dmg", "out"},
		{"extra arguments ignored", []string{"card.dmg", "out", "junk"}, "card.dmg", "out"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := append(append([]audiocarve.Option{}, base...), positionalOptions(tt.args)...)
			cfg := applyOptions(opts)
			if cfg.ImagePath != tt.wantImage {
				t.Errorf("ImagePath = %q, want %q", cfg.ImagePath, tt.wantImage)
			}
			if cfg.OutputDir != tt.wantOut {
				t.Errorf("OutputDir = %q, want %q", cfg.OutputDir, tt.wantOut)
			}
		})
	}
}

func TestPositionalOutputKeepsDefault(t *testing.T) {
	cfg := applyOptions(positionalOptions([]string{"card.dmg"}))
	if cfg.OutputDir != audiocarve.DefaultOutputDir {
		t.Errorf("OutputDir = %q, want default %q", cfg.OutputDir, audiocarve.DefaultOutputDir)
	}
}
