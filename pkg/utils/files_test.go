package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMakeDirAndFileExists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if err := MakeDir(dir); err != nil {
		t.Fatalf("MakeDir failed: %v", err)
	}
	if FileExists(dir) {
		t.Error("FileExists should be false for a directory")
	}

	path := filepath.Join(dir, "x.raw")
	if err := os.WriteFile(path, []byte{1}, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if !FileExists(path) {
		t.Errorf("Expected %s to exist", path)
	}
}

func TestMoveFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.tmp")
	dst := filepath.Join(dir, "dst.wav")
	if err := os.WriteFile(src, []byte("data"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if err := MoveFile(src, dst); err != nil {
		t.Fatalf("MoveFile failed: %v", err)
	}
	if FileExists(src) {
		t.Error("Source should be gone after move")
	}
	if !FileExists(dst) {
		t.Error("Destination should exist after move")
	}

	_, err := os.Stat(src)
	if !IsNotExist(err) {
		t.Errorf("Expected not-exist error, got %v", err)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	if got := ExpandHome("~/Desktop/recovered_audio"); got != filepath.Join(home, "Desktop", "recovered_audio") {
		t.Errorf("Unexpected expansion: %s", got)
	}
	if got := ExpandHome("/tmp/out"); got != "/tmp/out" {
		t.Errorf("Absolute path should be unchanged, got %s", got)
	}
}

func TestReplaceExt(t *testing.T) {
	if got := ReplaceExt("/out/audio_block_001_12MB.raw", ".wav"); got != "/out/audio_block_001_12MB.wav" {
		t.Errorf("Unexpected result: %s", got)
	}
}
