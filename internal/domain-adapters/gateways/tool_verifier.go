package gateways

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/ochairo/stagerunner/internal/domain/entities"
	"github.com/ochairo/stagerunner/internal/external-adapters/gpg"
)

// toolVerifier composes checksum pinning and detached-signature checks for the
// external audit tools. The keyring is loaded on first use.
type toolVerifier struct {
	repoRoot    string
	keyringPath string
	checksums   *checksumVerifier
	signatures  *gpg.Verifier

	loadOnce sync.Once
	loadErr  error
}

// NewToolVerifier creates a verifier resolving tool paths against repoRoot
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewToolVerifier(repoRoot string, integrity entities.ToolIntegrity) *toolVerifier {
	keyring := ""
	if integrity.Keyring != "" {
		keyring = resolvePath(repoRoot, integrity.Keyring)
	}
	return &toolVerifier{
		repoRoot:    repoRoot,
		keyringPath: keyring,
		checksums:   NewChecksumVerifier(),
		signatures:  gpg.NewVerifier(),
	}
}

// VerifyTool checks every pin configured for the tool
func (v *toolVerifier) VerifyTool(_ context.Context, pin entities.ToolPin) error {
	toolPath := resolvePath(v.repoRoot, pin.Path)

	if pin.SHA256 != "" {
		if err := v.checksums.VerifyChecksum(toolPath, pin.SHA256); err != nil {
			return fmt.Errorf("%s: %w", pin.Path, err)
		}
	}

	if pin.Signature != "" {
		if err := v.loadKeyring(); err != nil {
			return err
		}
		sigPath := resolvePath(v.repoRoot, pin.Signature)
		if err := v.signatures.VerifySignatureFromFile(toolPath, sigPath); err != nil {
			return fmt.Errorf("%s: %w", pin.Path, err)
		}
	}

	return nil
}

func (v *toolVerifier) loadKeyring() error {
	v.loadOnce.Do(func() {
		if v.keyringPath == "" {
			v.loadErr = fmt.Errorf("no keyring configured")
			return
		}
		if err := v.signatures.ImportKeyFromFile(v.keyringPath); err != nil {
			v.loadErr = fmt.Errorf("failed to load keyring %s: %w", v.keyringPath, err)
		}
	})
	return v.loadErr
}

// resolvePath joins relative paths onto root
func resolvePath(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
