package gateways

import (
	"os"
	"path/filepath"
	"testing"
)

// writeScript writes an executable /bin/sh script into dir and returns its path
func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	//nolint:gosec // G306: Test executable script needs 0700 permissions
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0700); err != nil {
		t.Fatalf("Failed to create script %s: %v", name, err)
	}
	return path
}
