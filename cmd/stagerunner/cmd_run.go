package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ochairo/stagerunner/internal/domain-adapters/gateways"
	orchestrators "github.com/ochairo/stagerunner/internal/domain-orchestrators"
	"github.com/ochairo/stagerunner/internal/domain/entities"
	"github.com/ochairo/stagerunner/internal/domain/interfaces"
	gatewayports "github.com/ochairo/stagerunner/internal/domain/interfaces/gateways"
	"github.com/ochairo/stagerunner/internal/domain/services"
	"github.com/ochairo/stagerunner/internal/external-adapters/console"
	"github.com/ochairo/stagerunner/internal/external-adapters/flock"
	"github.com/ochairo/stagerunner/internal/external-adapters/yaml"
	zapadapter "github.com/ochairo/stagerunner/internal/external-adapters/zap"
)

const defaultConfigFile = "stagerunner.yaml"

type runOptions struct {
	listStages bool
	repoRoot   string
	configPath string
	logLevel   string
	noColor    bool
	noLock     bool
}

// run executes the CLI and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, errStagesFailed) {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return exitCode(err)
}

func newRootCommand() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "stagerunner [flags] [stage...]",
		Short: "Run the test stages of a source tree",
		Long:  longHelp(),
		// Errors are reported once by run
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.listStages {
				for _, name := range orchestrators.StageNames() {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			}
			return runStages(cmd.Context(), opts, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	flags := cmd.Flags()
	flags.BoolVar(&opts.listStages, "list-stages", false, "print the stage names and exit")
	flags.StringVar(&opts.repoRoot, "repo-root", "", "source tree to test (default: current directory)")
	flags.StringVar(&opts.configPath, "config", "", "configuration file (default: <repo-root>/"+defaultConfigFile+")")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (default: from configuration)")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	flags.BoolVar(&opts.noLock, "no-lock", false, "do not take the run lock")

	return cmd
}

func longHelp() string {
	var b strings.Builder
	b.WriteString("Runs the named test stages in the order given, or every stage in\n")
	b.WriteString("catalogue order when none are named. All stages run even after a failure.\n\n")
	b.WriteString("Stages:\n")
	for _, d := range orchestrators.StageDescriptions() {
		fmt.Fprintf(&b, "  %-10s %s\n", d[0], d[1])
	}
	b.WriteString("\nExit codes: 0 all passed, 1 a stage failed, 2 usage error, 3 fatal error.")
	return b.String()
}

// runStages is the composition root for a run
func runStages(ctx context.Context, opts *runOptions, stages []string, stdout, stderr io.Writer) error {
	if err := orchestrators.ValidateStageNames(stages); err != nil {
		return err
	}
	if opts.logLevel != "" {
		if _, err := zapadapter.ParseLevel(opts.logLevel); err != nil {
			return &usageError{err: err}
		}
	}

	repoRoot, err := resolveRepoRoot(opts.repoRoot)
	if err != nil {
		return err
	}

	configPath := opts.configPath
	if configPath == "" {
		configPath = filepath.Join(repoRoot, defaultConfigFile)
	} else if _, err := os.Stat(configPath); err != nil {
		// only the implicit default may be absent
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg, err := yaml.NewSuiteConfigRepository().LoadSuiteConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	level := cfg.LogLevel
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	logger, err := zapadapter.NewLogger(stderr, level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	reporter := console.NewReporter(stdout, opts.noColor)
	runner := gateways.NewCommandRunner(stdout, stderr, logger)

	registry, err := orchestrators.NewRegistry(
		orchestrators.NewDefaultCatalogue(repoRoot, cfg, newCatalogueServices(repoRoot, cfg, runner, reporter, stderr, logger))...,
	)
	if err != nil {
		return err
	}
	if err := registry.Validate(stages); err != nil {
		return err
	}

	if !opts.noLock {
		lock := flock.NewRunLock(resolve(repoRoot, cfg.LockFile))
		if err := lock.Acquire(); err != nil {
			return err
		}
		defer func() {
			if err := lock.Release(); err != nil {
				logger.Warn("failed to release run lock", interfaces.F("error", err))
			}
		}()
	}

	driver := orchestrators.NewStageOrchestrator(registry, runner, reporter, logger, orchestrators.StageOrchestratorConfig{
		WorkDir:      repoRoot,
		StageTimeout: cfg.StageTimeout,
	})
	result, err := driver.Run(ctx, stages)
	if err != nil {
		return err
	}
	if !result.AllPassed() {
		return errStagesFailed
	}
	return nil
}

func newCatalogueServices(
	repoRoot string,
	cfg *entities.SuiteConfig,
	runner gatewayports.CommandRunner,
	reporter interfaces.Reporter,
	stderr io.Writer,
	logger interfaces.Logger,
) orchestrators.CatalogueServices {
	locator := gateways.NewArtifactFinder()
	analyzer := gateways.NewChecksecAnalyzer(resolve(repoRoot, cfg.Analyzer), stderr, logger)

	var tools gatewayports.ToolVerifier
	if cfg.ToolIntegrity.Enabled() {
		tools = gateways.NewToolVerifier(repoRoot, cfg.ToolIntegrity)
	}

	return orchestrators.CatalogueServices{
		Audit: services.NewSecurityAuditService(services.SecurityAuditDeps{
			RepoRoot:  repoRoot,
			Config:    cfg,
			Runner:    runner,
			Inspector: gateways.NewBinaryFormatSniffer(),
			Verifier:  services.NewHardeningVerifier(repoRoot, analyzer, reporter, logger),
			Tools:     tools,
			Reporter:  reporter,
			Logger:    logger,
		}),
		Hygiene:   services.NewDependsHygieneService(repoRoot, cfg, locator, reporter, logger),
		Toolchain: services.NewToolchainTestService(repoRoot, cfg, locator, runner, reporter, logger),
	}
}

func resolveRepoRoot(flagValue string) (string, error) {
	root := flagValue
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to determine working directory: %w", err)
		}
		root = wd
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve repository root %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("repository root: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("repository root %s is not a directory", abs)
	}
	return abs, nil
}

func resolve(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
