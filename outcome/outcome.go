// Package outcome decides whether an external tool call succeeded.
//
// None of the wrapped tools report failure reliably through their exit status,
// so every rule here inspects the captured output text instead. The rules encode
// observed tool behaviour and are kept together so they can be reviewed as a set.
package outcome

import (
	"fmt"
	"strings"

	"github.com/bitrise-steplib/apkutil/runner"
)

const (
	// OverwriteWarning is printed by apktool on stderr when the output directory already exists.
	// It is not an error by itself.
	OverwriteWarning = "Use -f switch if you want to overwrite it."
	// BuiltAPKMarker is printed by apktool on stdout once the apk has been written.
	// apktool logs plenty of noise on stderr even for successful builds.
	BuiltAPKMarker = "I: Built apk..."
)

// ExecutionError is returned when a tool ran but its output signals failure.
// Message carries the tool's own diagnostic text.
type ExecutionError struct {
	Tool    string
	Message string
}

func (e *ExecutionError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s failed", e.Tool)
	}
	return fmt.Sprintf("%s failed: %s", e.Tool, e.Message)
}

// Classifier maps a finished invocation to nil (success) or an *ExecutionError.
type Classifier func(res runner.Result) error

var (
	// Decode fails on any stderr text other than the overwrite warning.
	Decode Classifier = classifyDecode
	// Build succeeds whenever the built marker is on stdout, regardless of stderr.
	Build Classifier = classifyBuild
	// Align fails on any zipalign stderr text.
	Align = stderrFails("zipalign")
	// Sign fails on any apksigner stderr text. The verbose signing report goes to stdout.
	Sign = stderrFails("apksigner")
	// Inspect fails on any aapt stderr text.
	Inspect = stderrFails("aapt")
	// DeviceBridge fails on any adb stderr text, adb reports "error: no devices/emulators found" there.
	DeviceBridge = stderrFails("adb")
)

func classifyDecode(res runner.Result) error {
	remaining := strings.TrimSpace(strings.ReplaceAll(res.Stderr, OverwriteWarning, ""))
	if remaining != "" {
		return &ExecutionError{Tool: "apktool", Message: remaining}
	}
	return nil
}

func classifyBuild(res runner.Result) error {
	if strings.Contains(res.Stdout, BuiltAPKMarker) {
		return nil
	}

	msg := strings.TrimSpace(res.Stderr)
	if msg == "" {
		msg = strings.TrimSpace(res.Stdout)
	}
	return &ExecutionError{Tool: "apktool", Message: msg}
}

func stderrFails(tool string) Classifier {
	return func(res runner.Result) error {
		if msg := strings.TrimSpace(res.Stderr); msg != "" {
			return &ExecutionError{Tool: tool, Message: msg}
		}
		return nil
	}
}
