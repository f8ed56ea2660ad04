package apksigner

import (
	"fmt"
	"strings"

	"github.com/bitrise-io/go-utils/v2/fileutil"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/pathutil"
	"github.com/bitrise-steplib/apkutil/outcome"
	"github.com/bitrise-steplib/apkutil/runner"
	"github.com/bitrise-steplib/apkutil/toolpath"
)

// ToolName ...
const ToolName = "apksigner"

// Signer signs apks with the credentials of the per-user config file.
type Signer struct {
	resolver    toolpath.Resolver
	runner      runner.Runner
	fileManager fileutil.FileManager
	pathChecker pathutil.PathChecker
	homeDir     string
	logger      log.Logger
}

// New ...
func New(resolver toolpath.Resolver, runner runner.Runner, fileManager fileutil.FileManager, pathChecker pathutil.PathChecker, homeDir string, logger log.Logger) Signer {
	return Signer{
		resolver:    resolver,
		runner:      runner,
		fileManager: fileManager,
		pathChecker: pathChecker,
		homeDir:     homeDir,
		logger:      logger,
	}
}

// Sign signs the apk in place with v2 signing enabled.
// The config is loaded before anything else, apksigner is never started without it.
func (s Signer) Sign(apkPath string) error {
	config, err := LoadConfig(s.fileManager, s.homeDir)
	if err != nil {
		return err
	}

	if exists, err := s.pathChecker.IsPathExists(apkPath); err != nil {
		return fmt.Errorf("failed to check if %s exists: %w", apkPath, err)
	} else if !exists {
		return fmt.Errorf("%s not found", apkPath)
	}

	toolPth, err := s.resolver.Resolve(ToolName)
	if err != nil {
		return err
	}

	res, err := s.runner.Run(runner.Invocation{
		Args:    signArgs(toolPth, config, apkPath),
		Secrets: []string{config.KeystorePass},
	})
	if err != nil {
		return err
	}
	if res.Stdout != "" {
		s.logger.Infof("%s", strings.TrimRight(res.Stdout, "\n"))
	}

	return outcome.Sign(res)
}

func signArgs(toolPth string, config Config, apkPath string) []string {
	return []string{
		toolPth, "sign",
		"-ks", config.KeystorePath,
		"--v2-signing-enabled", "true",
		"-v",
		"--ks-key-alias", config.KeyAlias,
		"--ks-pass", config.KeystorePass,
		apkPath,
	}
}
