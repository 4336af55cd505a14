package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// UpdateGoldenEnv rewrites golden files instead of comparing when set to 1.
const UpdateGoldenEnv = "UPDATE_GOLDEN"

func goldenPath(name string) string {
	return filepath.Join("testdata", name)
}

// GoldenFile reads testdata/<name>.
func GoldenFile(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(goldenPath(name))
	if err != nil {
		t.Fatalf("read golden file %s: %v", goldenPath(name), err)
	}
	return data
}

// UpdateGoldenFile writes data to testdata/<name>.
func UpdateGoldenFile(t *testing.T, name string, data []byte) {
	t.Helper()
	path := goldenPath(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create testdata dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden file %s: %v", path, err)
	}
	t.Logf("updated golden file: %s", path)
}

// AssertGolden compares got against testdata/<name>, or rewrites the file
// when UPDATE_GOLDEN=1.
func AssertGolden(t *testing.T, name string, got []byte) {
	t.Helper()
	if os.Getenv(UpdateGoldenEnv) == "1" {
		UpdateGoldenFile(t, name, got)
		return
	}
	if want := GoldenFile(t, name); !bytes.Equal(got, want) {
		t.Errorf("golden file mismatch for %s:\n--- want ---\n%s\n--- got ---\n%s", name, want, got)
	}
}
