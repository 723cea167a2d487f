package dag

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSafeWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "object")

	if err := SafeWrite(path, []byte("first"), 0o644); err != nil {
		t.Fatalf("SafeWrite: %v", err)
	}
	if err := SafeWrite(path, []byte("second"), 0o644); err != nil {
		t.Fatalf("SafeWrite overwrite: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "second" {
		t.Fatalf("got %q, want %q", got, "second")
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Mode().Perm() != 0o644 {
		t.Fatalf("perm = %o, want 0644", info.Mode().Perm())
	}
}

func TestSafeWrite_FailureLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "object")
	if err := SafeWrite(path, []byte("original"), 0o644); err != nil {
		t.Fatalf("SafeWrite: %v", err)
	}

	if err := SafeWrite(filepath.Join(dir, "missing", "object"), []byte("x"), 0o644); err == nil {
		t.Fatal("expected error writing into a missing directory")
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if e.Name() != "object" {
			t.Fatalf("unexpected file left behind: %s", e.Name())
		}
	}
	got, _ := os.ReadFile(path)
	if string(got) != "original" {
		t.Fatalf("original changed: %q", got)
	}
}

func TestSafeAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal")

	for _, line := range []string{"init\n", "commit\n"} {
		if err := SafeAppend(path, []byte(line)); err != nil {
			t.Fatalf("SafeAppend: %v", err)
		}
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "init\ncommit\n" {
		t.Fatalf("got %q", got)
	}
}
