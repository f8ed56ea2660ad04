package runner

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/bitrise-io/go-utils/command"
	"github.com/bitrise-io/go-utils/errorutil"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/redactwriter"
)

// Invocation describes a single external tool call.
// Args[0] is the resolved executable, an empty Dir means the current working directory.
// Secrets are redacted from the logged command line.
type Invocation struct {
	Args    []string
	Dir     string
	Secrets []string
}

// Result holds the captured output of a finished process.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes an external tool synchronously to completion.
type Runner interface {
	Run(inv Invocation) (Result, error)
}

type processRunner struct {
	goos   string
	logger log.Logger
}

// NewRunner ...
func NewRunner(logger log.Logger) Runner {
	return processRunner{goos: runtime.GOOS, logger: logger}
}

// Run blocks until the process exits. There is no timeout.
// A non-zero exit status is reported through Result.ExitCode, an error is only
// returned when the process could not be started.
func (r processRunner) Run(inv Invocation) (Result, error) {
	if len(inv.Args) == 0 {
		return Result{}, errors.New("no executable to run")
	}

	args := CommandLine(r.goos, inv.Args)

	var stdout, stderr bytes.Buffer
	cmd := command.New(args[0], args[1:]...).SetStdout(&stdout).SetStderr(&stderr)
	if inv.Dir != "" {
		cmd.SetDir(inv.Dir)
	}

	r.logCommand(cmd.PrintableCommandArgs(), inv.Secrets)

	exitCode := 0
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return Result{}, fmt.Errorf("failed to run %s: %w", filepath.Base(inv.Args[0]), err)
		}
		if !errorutil.IsExitStatusError(err) {
			r.logger.Warnf("%s terminated: %s", filepath.Base(inv.Args[0]), err)
		}
		exitCode = exitErr.ExitCode()
	}

	return Result{
		Stdout:   decodeOutput(stdout.Bytes()),
		Stderr:   decodeOutput(stderr.Bytes()),
		ExitCode: exitCode,
	}, nil
}

// CommandLine returns the argument vector to execute on the given platform.
// Batch scripts are not directly executable on Windows and go through the command interpreter.
func CommandLine(goos string, args []string) []string {
	if goos == "windows" && len(args) > 0 && isBatchScript(args[0]) {
		return append([]string{"cmd", "/c"}, args...)
	}
	return args
}

func isBatchScript(pth string) bool {
	ext := strings.ToLower(filepath.Ext(pth))
	return ext == ".cmd" || ext == ".bat"
}

// decodeOutput drops invalid UTF-8 sequences instead of failing on them.
func decodeOutput(b []byte) string {
	return strings.ToValidUTF8(string(b), "")
}

func (r processRunner) logCommand(printable string, secrets []string) {
	var nonEmpty []string
	for _, secret := range secrets {
		if secret != "" {
			nonEmpty = append(nonEmpty, secret)
		}
	}
	if len(nonEmpty) == 0 {
		r.logger.Debugf("$ %s", printable)
		return
	}

	var buf bytes.Buffer
	w := redactwriter.New(nonEmpty, &buf, r.logger)
	if _, err := w.Write([]byte(printable + "\n")); err != nil {
		r.logger.Warnf("Failed to redact command line: %s", err)
		return
	}
	if err := w.Close(); err != nil {
		r.logger.Warnf("Failed to redact command line: %s", err)
		return
	}
	r.logger.Debugf("$ %s", strings.TrimSpace(buf.String()))
}
