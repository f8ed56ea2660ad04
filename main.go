package main

import (
	"errors"
	"io"
	"os"
	"runtime"

	"github.com/bitrise-io/go-utils/v2/env"
	"github.com/bitrise-io/go-utils/v2/fileutil"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/pathutil"
	"github.com/bitrise-steplib/apkutil/adb"
	"github.com/bitrise-steplib/apkutil/androidartifact"
	"github.com/bitrise-steplib/apkutil/apksigner"
	"github.com/bitrise-steplib/apkutil/apktool"
	"github.com/bitrise-steplib/apkutil/outcome"
	"github.com/bitrise-steplib/apkutil/runner"
	"github.com/bitrise-steplib/apkutil/sensitive"
	"github.com/bitrise-steplib/apkutil/toolpath"
	"github.com/bitrise-steplib/apkutil/zipalign"
	"github.com/kr/pretty"
	"github.com/spf13/pflag"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:], env.NewRepository(), log.NewLogger()))
}

func run(args []string, envRepo env.Repository, logger log.Logger) int {
	flags := pflag.NewFlagSet("apkutil", pflag.ContinueOnError)
	flags.SetInterspersed(false)
	flags.SetOutput(io.Discard)
	debug := flags.Bool("debug", false, "enable debug logging")

	if err := flags.Parse(args); err != nil {
		logger.Errorf("%s", err)
		printUsage(logger)
		return exitUsage
	}

	settings, err := ParseSettings(envRepo)
	if err != nil {
		logger.Errorf("Issue with environment: %s", err)
		return exitFailure
	}
	logger.EnableDebugLog(*debug || settings.Debug())
	logger.Debugf("Settings: %# v", pretty.Formatter(settings))

	if flags.NArg() == 0 {
		printUsage(logger)
		return exitUsage
	}

	cmd, ok := findCommand(flags.Arg(0))
	if !ok {
		logger.Errorf("Unknown command: %s", flags.Arg(0))
		printUsage(logger)
		return exitUsage
	}

	workDir, err := os.Getwd()
	if err != nil {
		logger.Errorf("Failed to get working directory: %s", err)
		return exitFailure
	}

	a := newApp(settings, runtime.GOOS, workDir, logger)
	if err := cmd.run(a, flags.Args()[1:]); err != nil {
		return report(logger, cmd, err)
	}

	return exitOK
}

type app struct {
	logger      log.Logger
	sdkRoot     string
	workDir     string
	runner      runner.Runner
	fileManager fileutil.FileManager
	pathChecker pathutil.PathChecker
	apktool     apktool.Apktool
	aligner     zipalign.Aligner
	signer      apksigner.Signer
	inspector   androidartifact.Inspector
	scanner     sensitive.Scanner
}

func newApp(settings Settings, goos, workDir string, logger log.Logger) app {
	sdkRoot := settings.SDKRoot(goos)
	pathChecker := pathutil.NewPathChecker()
	fileManager := fileutil.NewFileManager()
	processRunner := runner.NewRunner(logger)
	resolver := toolpath.NewResolver(sdkRoot, pathChecker, logger)

	return app{
		logger:      logger,
		sdkRoot:     sdkRoot,
		workDir:     workDir,
		runner:      processRunner,
		fileManager: fileManager,
		pathChecker: pathChecker,
		apktool:     apktool.New(resolver, processRunner, pathutil.NewPathModifier(), fileManager, logger),
		aligner:     zipalign.New(resolver, processRunner, fileManager, logger),
		signer:      apksigner.New(resolver, processRunner, fileManager, pathChecker, settings.HomeDir(), logger),
		inspector:   androidartifact.NewInspector(resolver, processRunner, logger),
		scanner:     sensitive.NewScanner(),
	}
}

func (a app) bridge() (adb.Bridge, error) {
	binPth, err := adb.Locate(a.sdkRoot, a.pathChecker)
	if err != nil {
		return adb.Bridge{}, err
	}
	return adb.NewBridge(binPth, a.workDir, a.runner, a.logger), nil
}

func report(logger log.Logger, cmd command, err error) int {
	var (
		usageErr  *usageError
		notFound  *toolpath.NotFoundError
		execErr   *outcome.ExecutionError
		configErr *apksigner.ConfigError
		noMatch   *adb.NoMatchError
	)

	switch {
	case errors.As(err, &usageErr):
		logger.Errorf("%s", usageErr)
		logger.Printf("Usage: apkutil %s %s", cmd.name, cmd.usage)
		return exitUsage
	case errors.As(err, &notFound):
		logger.Errorf("%s", notFound)
	case errors.As(err, &execErr):
		logger.Errorf("%s", err)
	case errors.As(err, &configErr):
		logger.Errorf("%s", configErr)
		logger.Printf("Create %s with keystore_path, ks-key-alias and ks-pass.", configErr.Path)
	case errors.As(err, &noMatch):
		logger.Errorf("%s", noMatch)
	default:
		logger.Errorf("%s", err)
	}

	return exitFailure
}

func printUsage(logger log.Logger) {
	logger.Printf("Usage: apkutil [--debug] <command> [flags] [args]")
	logger.Printf("")
	logger.Printf("Commands:")
	for _, cmd := range commands {
		logger.Printf("  %-14s %s", cmd.name, cmd.usage)
	}
}
