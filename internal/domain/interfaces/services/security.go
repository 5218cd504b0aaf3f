// Package services defines interfaces for domain service contracts.
package services

import "context"

// SecurityAuditService runs the binary security audit
type SecurityAuditService interface {
	// CheckSecurityHardening returns the audit verdict. A non-nil error means the
	// primary artifact could not be inspected at all.
	CheckSecurityHardening(ctx context.Context) (bool, error)
}

// DependsHygieneService checks the prebuilt dependency tree
type DependsHygieneService interface {
	EnsureNoSharedLibraries(ctx context.Context) (bool, error)
}

// ToolchainTestService runs test suites that need a prepared environment
type ToolchainTestService interface {
	RustTest(ctx context.Context) (bool, error)
	UtilTest(ctx context.Context) (bool, error)
}
