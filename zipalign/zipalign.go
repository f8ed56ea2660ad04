package zipalign

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bitrise-io/go-utils/v2/fileutil"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-steplib/apkutil/outcome"
	"github.com/bitrise-steplib/apkutil/runner"
	"github.com/bitrise-steplib/apkutil/toolpath"
)

const (
	// ToolName ...
	ToolName = "zipalign"
	// TempFileName is the sibling file zipalign writes before it replaces the original apk.
	TempFileName = "apkutil_tmp.aligned.apk"
)

// Aligner ...
type Aligner struct {
	resolver    toolpath.Resolver
	runner      runner.Runner
	fileManager fileutil.FileManager
	logger      log.Logger
}

// New ...
func New(resolver toolpath.Resolver, runner runner.Runner, fileManager fileutil.FileManager, logger log.Logger) Aligner {
	return Aligner{
		resolver:    resolver,
		runner:      runner,
		fileManager: fileManager,
		logger:      logger,
	}
}

// Align 4-byte aligns the apk in place.
// On failure the original file is left untouched and the temporary output is removed.
func (a Aligner) Align(apkPath string) error {
	toolPth, err := a.resolver.Resolve(ToolName)
	if err != nil {
		return err
	}

	tmpPth := filepath.Join(filepath.Dir(apkPath), TempFileName)
	if filepath.Clean(apkPath) == tmpPth {
		return fmt.Errorf("%s clashes with the temporary output of zipalign, rename the apk first", apkPath)
	}

	adopted := false
	defer func() {
		if adopted {
			return
		}
		if err := a.fileManager.Remove(tmpPth); err != nil && !errors.Is(err, fs.ErrNotExist) {
			a.logger.Warnf("Failed to remove %s: %s", tmpPth, err)
		}
	}()

	res, err := a.runner.Run(runner.Invocation{Args: []string{toolPth, "-f", "-p", "4", apkPath, tmpPth}})
	if err != nil {
		return err
	}
	if err := outcome.Align(res); err != nil {
		return err
	}

	if err := os.Rename(tmpPth, apkPath); err != nil {
		return fmt.Errorf("failed to replace %s with the aligned apk: %w", apkPath, err)
	}
	adopted = true

	return nil
}
