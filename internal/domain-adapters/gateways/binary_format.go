package gateways

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// elfMagic is the 4-byte ELF identification prefix
var elfMagic = []byte{0x7f, 'E', 'L', 'F'}

// BinaryFormatSniffer classifies binaries by their leading magic bytes
type BinaryFormatSniffer struct{}

// NewBinaryFormatSniffer creates a new format sniffer
func NewBinaryFormatSniffer() *BinaryFormatSniffer {
	return &BinaryFormatSniffer{}
}

// IsELF reads the first 4 bytes of path and reports whether they are the ELF magic.
// Files shorter than 4 bytes are not ELF. Open and read failures are returned.
func (s *BinaryFormatSniffer) IsELF(path string) (bool, error) {
	//nolint:gosec // G304: path is the configured primary artifact
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("failed to open %s: %w", path, err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	header := make([]byte, len(elfMagic))
	if _, err := io.ReadFull(f, header); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	return bytes.Equal(header, elfMagic), nil
}
