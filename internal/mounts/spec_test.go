package mounts

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"rcsup/internal/faults"
)

func writeList(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mounts.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSpecsMissingFileIsEmptyList(t *testing.T) {
	specs, err := LoadSpecs(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(specs) != 0 {
		t.Fatalf("expected empty list, got %v", specs)
	}
}

func TestLoadSpecsParsesEntries(t *testing.T) {
	path := writeList(t, `[
		{"fs": "remote:", "mountPoint": "/mnt/data", "vfsOpt": {"CacheMode": "full"}}
	]`)
	specs, err := LoadSpecs(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(specs) != 1 || specs[0].Fs != "remote:" || specs[0].MountPoint != "/mnt/data" {
		t.Fatalf("unexpected specs: %+v", specs)
	}
	if specs[0].VfsOpt["CacheMode"] != "full" {
		t.Fatalf("vfsOpt not preserved: %+v", specs[0].VfsOpt)
	}
}

func TestLoadSpecsMalformedJSONIsConfigError(t *testing.T) {
	path := writeList(t, `{"not": "an array"}`)
	_, err := LoadSpecs(path)
	if !errors.Is(err, faults.ErrConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestLoadSpecsMissingFieldsIsConfigError(t *testing.T) {
	path := writeList(t, `[{"fs": "remote:"}]`)
	_, err := LoadSpecs(path)
	if !errors.Is(err, faults.ErrConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
}
