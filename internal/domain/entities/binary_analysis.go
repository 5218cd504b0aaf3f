package entities

// Toolchain identifies the compiler family that produced a binary
type Toolchain string

const (
	// ToolchainCXX marks artifacts built by the C++ toolchain
	ToolchainCXX Toolchain = "cxx"
	// ToolchainRust marks artifacts built by the Rust toolchain
	ToolchainRust Toolchain = "rust"
)

// Binary is a compiled artifact subject to hardening checks
type Binary struct {
	Path      string // relative to the repository root
	Toolchain Toolchain
}

// FortifyApplicable reports whether FORTIFY_SOURCE is a meaningful build-time
// property for this binary. It is not for Rust artifacts.
func (b Binary) FortifyApplicable() bool {
	return b.Toolchain == ToolchainCXX
}

// HardeningReport holds the per-binary hardening verdicts
type HardeningReport struct {
	Binary         Binary
	NoRPathRunPath bool
	FortifyChecked bool
	FortifySource  bool
}

// Passed reports whether every evaluated verdict is true
func (r HardeningReport) Passed() bool {
	if !r.NoRPathRunPath {
		return false
	}
	if r.FortifyChecked {
		return r.FortifySource
	}
	return true
}
