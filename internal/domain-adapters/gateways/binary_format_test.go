package gateways

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinaryFormatSniffer_IsELF(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		want    bool
	}{
		{"elf header", []byte{0x7f, 'E', 'L', 'F', 2, 1, 1, 0}, true},
		{"exactly the magic", []byte("\x7fELF"), true},
		{"all zeros", []byte{0, 0, 0, 0, 0, 0}, false},
		{"windows PE", []byte{'M', 'Z', 0x90, 0x00, 0x03}, false},
		{"mach-o 64", []byte{0xcf, 0xfa, 0xed, 0xfe}, false},
		{"shell script", []byte("#!/bin/sh\necho hi\n"), false},
		{"short file", []byte{0x7f, 'E'}, false},
		{"empty file", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "zsided")
			require.NoError(t, os.WriteFile(path, tt.content, 0600))

			got, err := NewBinaryFormatSniffer().IsELF(path)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBinaryFormatSniffer_IsELF_MissingFile(t *testing.T) {
	_, err := NewBinaryFormatSniffer().IsELF("/nonexistent/binary")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open")
}
