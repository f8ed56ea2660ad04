package apktool

import (
	"path/filepath"
	"strings"

	"github.com/bitrise-io/go-utils/v2/fileutil"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/pathutil"
	"github.com/bitrise-steplib/apkutil/outcome"
	"github.com/bitrise-steplib/apkutil/runner"
	"github.com/bitrise-steplib/apkutil/toolpath"
)

// ToolName ...
const ToolName = "apktool"

// DecodeOptions ...
type DecodeOptions struct {
	NoResources bool
	NoSources   bool
}

// BuildOptions ...
type BuildOptions struct {
	UseAAPT2 bool
}

// Apktool decodes and rebuilds application packages with the apktool executable.
type Apktool struct {
	resolver     toolpath.Resolver
	runner       runner.Runner
	pathModifier pathutil.PathModifier
	fileManager  fileutil.FileManager
	logger       log.Logger
}

// New ...
func New(resolver toolpath.Resolver, runner runner.Runner, pathModifier pathutil.PathModifier, fileManager fileutil.FileManager, logger log.Logger) Apktool {
	return Apktool{
		resolver:     resolver,
		runner:       runner,
		pathModifier: pathModifier,
		fileManager:  fileManager,
		logger:       logger,
	}
}

// Decode unpacks apkPath next to itself, into a directory named after the apk without its extension,
// and returns that directory.
func (a Apktool) Decode(apkPath string, opts DecodeOptions) (string, error) {
	toolPth, err := a.resolver.Resolve(ToolName)
	if err != nil {
		return "", err
	}

	absApkPth, err := a.pathModifier.AbsPath(apkPath)
	if err != nil {
		return "", err
	}
	outDir := DecodeDir(absApkPth)

	args := []string{toolPth, "d", absApkPth, "-o", outDir}
	if opts.NoResources {
		args = append(args, "-r")
	}
	if opts.NoSources {
		args = append(args, "-s")
	}

	res, err := a.runner.Run(runner.Invocation{Args: args})
	if err != nil {
		return "", err
	}
	if res.Stdout != "" {
		a.logger.Printf("%s", strings.TrimRight(res.Stdout, "\n"))
	}
	if err := outcome.Decode(res); err != nil {
		return "", err
	}

	a.logMetadata(outDir)

	return outDir, nil
}

// Build packs the decoded tree at dir into the apk at apkPath.
func (a Apktool) Build(dir, apkPath string, opts BuildOptions) error {
	toolPth, err := a.resolver.Resolve(ToolName)
	if err != nil {
		return err
	}

	absDir, err := a.pathModifier.AbsPath(dir)
	if err != nil {
		return err
	}
	absApkPth, err := a.pathModifier.AbsPath(apkPath)
	if err != nil {
		return err
	}

	args := []string{toolPth, "b", absDir, "-o", absApkPth}
	if opts.UseAAPT2 {
		args = append(args, "--use-aapt2")
	}

	a.logMetadata(absDir)

	res, err := a.runner.Run(runner.Invocation{Args: args})
	if err != nil {
		return err
	}
	if err := outcome.Build(res); err != nil {
		return err
	}

	a.logger.Printf("%s", strings.TrimRight(res.Stdout, "\n"))

	return nil
}

// DecodeDir returns the directory apktool decodes the apk at absApkPth into.
func DecodeDir(absApkPth string) string {
	ext := filepath.Ext(absApkPth)
	if ext == filepath.Base(absApkPth) {
		return absApkPth
	}
	return strings.TrimSuffix(absApkPth, ext)
}

func (a Apktool) logMetadata(dir string) {
	metadata, err := ReadMetadata(a.fileManager, dir)
	if err != nil {
		a.logger.Debugf("No apktool metadata in %s: %s", dir, err)
		return
	}
	a.logger.Infof("%s", metadata)
}
