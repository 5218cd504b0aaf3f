// Package services implements domain business logic and use cases.
package services

import (
	"context"
	"regexp"

	"github.com/ochairo/stagerunner/internal/domain/entities"
	"github.com/ochairo/stagerunner/internal/domain/interfaces"
	"github.com/ochairo/stagerunner/internal/domain/interfaces/gateways"
)

// Patterns over checksec.sh output. They are unanchored and "." does not cross
// newlines, so the RPATH and RUNPATH columns must sit on the same table row.
var (
	rpathRunpathPattern     = regexp.MustCompile(`No RPATH.*No RUNPATH`)
	fortifyAvailablePattern = regexp.MustCompile(`FORTIFY_SOURCE support available.*Yes`)
	fortifyUsedPattern      = regexp.MustCompile(`Binary compiled with FORTIFY_SOURCE support.*Yes`)
)

// HasNoRPathRunPath reports whether analyzer output shows neither RPATH nor RUNPATH
func HasNoRPathRunPath(output string) bool {
	return rpathRunpathPattern.MatchString(output)
}

// HasFortifySource reports whether the two fortify lines both answer Yes
func HasFortifySource(availableLine, compiledLine string) bool {
	return fortifyAvailablePattern.MatchString(availableLine) &&
		fortifyUsedPattern.MatchString(compiledLine)
}

// HardeningVerifier applies the RPATH/RUNPATH and FORTIFY_SOURCE rules to
// checksec.sh output, one binary at a time
type HardeningVerifier struct {
	repoRoot string
	analyzer gateways.SecurityAnalyzer
	reporter interfaces.Reporter
	logger   interfaces.Logger
}

// NewHardeningVerifier creates a verifier resolving binary paths against repoRoot
func NewHardeningVerifier(
	repoRoot string,
	analyzer gateways.SecurityAnalyzer,
	reporter interfaces.Reporter,
	logger interfaces.Logger,
) *HardeningVerifier {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &HardeningVerifier{
		repoRoot: repoRoot,
		analyzer: analyzer,
		reporter: reporter,
		logger:   logger,
	}
}

// CheckRPathRunPath passes when the binary has no RPATH and no RUNPATH.
// On failure the full analyzer output is echoed for diagnosis.
func (v *HardeningVerifier) CheckRPathRunPath(ctx context.Context, bin entities.Binary) bool {
	output, err := v.analyzer.RPathRunPathReport(ctx, v.resolve(bin.Path))
	if err != nil {
		v.logger.Error("rpath/runpath analysis failed",
			interfaces.F("binary", bin.Path),
			interfaces.F("error", err))
	}

	if err == nil && HasNoRPathRunPath(output) {
		v.reporter.Pass("%s has no RPATH or RUNPATH.", bin.Path)
		return true
	}

	v.reporter.Fail("%s has an RPATH or a RUNPATH.", bin.Path)
	v.reporter.Raw(output)
	return false
}

// CheckFortifySource passes when FORTIFY_SOURCE is available and was used.
// Unlike CheckRPathRunPath, failures do not echo the analyzer output.
func (v *HardeningVerifier) CheckFortifySource(ctx context.Context, bin entities.Binary) bool {
	lines, err := v.analyzer.FortifyReport(ctx, v.resolve(bin.Path))
	if err != nil {
		v.logger.Error("fortify analysis failed",
			interfaces.F("binary", bin.Path),
			interfaces.F("error", err))
	}

	if err == nil && HasFortifySource(lines[0], lines[1]) {
		v.reporter.Pass("%s has FORTIFY_SOURCE.", bin.Path)
		return true
	}

	v.reporter.Fail("%s is missing FORTIFY_SOURCE.", bin.Path)
	return false
}

// VerifyBinary runs every check applicable to the binary's toolchain
func (v *HardeningVerifier) VerifyBinary(ctx context.Context, bin entities.Binary) entities.HardeningReport {
	report := entities.HardeningReport{
		Binary:         bin,
		NoRPathRunPath: v.CheckRPathRunPath(ctx, bin),
	}
	if bin.FortifyApplicable() {
		report.FortifyChecked = true
		report.FortifySource = v.CheckFortifySource(ctx, bin)
	}
	return report
}

func (v *HardeningVerifier) resolve(path string) string {
	return resolvePath(v.repoRoot, path)
}
