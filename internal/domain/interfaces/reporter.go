package interfaces

// Reporter renders the human-readable run report.
// Implementations write banners and verdict lines; they never decide outcomes.
type Reporter interface {
	// StageStarted prints the opening banner for a stage
	StageStarted(stage string)

	// StageFinished prints the closing banner for a stage
	StageFinished(stage string)

	// StageFailed prints the failure notice for a stage
	StageFailed(stage string)

	// RunFailed prints the summary failure notice
	RunFailed()

	// Pass prints a "PASS: ..." verdict line
	Pass(format string, args ...interface{})

	// Fail prints a "FAIL: ..." verdict line
	Fail(format string, args ...interface{})

	// Printf prints a plain line
	Printf(format string, args ...interface{})

	// Raw prints captured tool output verbatim
	Raw(output string)
}
