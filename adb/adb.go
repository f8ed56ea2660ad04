package adb

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/pathutil"
	"github.com/bitrise-steplib/apkutil/outcome"
	"github.com/bitrise-steplib/apkutil/runner"
	"github.com/bitrise-steplib/apkutil/toolpath"
	"github.com/docker/go-units"
)

const (
	// ToolName ...
	ToolName = "adb"

	deviceTmpDir         = "/data/local/tmp"
	screenshotTimeLayout = "2006-01-02-15-04-05"
	packagePrefix        = "package:"
)

// NoMatchError is returned when no installed package matches a keyword.
type NoMatchError struct {
	Keyword string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("No package found for: %s", e.Keyword)
}

// Locate returns the adb executable of the Android SDK at sdkRoot.
func Locate(sdkRoot string, pathChecker pathutil.PathChecker) (string, error) {
	return locate(runtime.GOOS, sdkRoot, pathChecker)
}

func locate(goos, sdkRoot string, pathChecker pathutil.PathChecker) (string, error) {
	name := ToolName
	if goos == "windows" {
		name += ".exe"
	}

	binPth := filepath.Join(sdkRoot, "platform-tools", name)
	if exist, err := pathChecker.IsPathExists(binPth); err != nil {
		return "", fmt.Errorf("failed to check if adb exist, error: %s", err)
	} else if !exist {
		return "", &toolpath.NotFoundError{Name: ToolName}
	}

	return binPth, nil
}

// Bridge runs adb commands against the connected device.
// Files pulled from the device land in workDir.
type Bridge struct {
	binPth  string
	workDir string
	runner  runner.Runner
	logger  log.Logger
	now     func() time.Time
}

// NewBridge ...
func NewBridge(binPth, workDir string, runner runner.Runner, logger log.Logger) Bridge {
	return Bridge{
		binPth:  binPth,
		workDir: workDir,
		runner:  runner,
		logger:  logger,
		now:     time.Now,
	}
}

func (b Bridge) run(args ...string) (runner.Result, error) {
	return b.runner.Run(runner.Invocation{
		Args: append([]string{b.binPth}, args...),
		Dir:  b.workDir,
	})
}

// Screenshot captures the device screen and returns the path of the local png.
// Failing device steps are reported as warnings.
func (b Bridge) Screenshot() (string, error) {
	name := fmt.Sprintf("screenshot-%s.png", b.now().Format(screenshotTimeLayout))
	devicePth := path.Join(deviceTmpDir, name)

	for _, args := range [][]string{
		{"shell", "screencap", "-p", devicePth},
		{"pull", devicePth},
		{"shell", "rm", devicePth},
	} {
		res, err := b.run(args...)
		if err != nil {
			return "", err
		}
		if err := outcome.DeviceBridge(res); err != nil {
			b.logger.Warnf("%s", err)
		}
	}

	localPth := filepath.Join(b.workDir, name)
	b.logSize(localPth)

	return localPth, nil
}

// ResolvePackage returns the first installed package whose `pm list packages` line contains keyword.
func (b Bridge) ResolvePackage(keyword string) (string, error) {
	res, err := b.run("shell", "pm", "list", "packages")
	if err != nil {
		return "", err
	}
	if err := outcome.DeviceBridge(res); err != nil {
		return "", err
	}

	name, ok := MatchPackage(res.Stdout, keyword)
	if !ok {
		return "", &NoMatchError{Keyword: keyword}
	}

	return name, nil
}

// PackagePaths returns the on-device paths of every apk installed for the package (base and splits).
func (b Bridge) PackagePaths(packageName string) ([]string, error) {
	res, err := b.run("shell", "pm", "path", packageName)
	if err != nil {
		return nil, err
	}
	if err := outcome.DeviceBridge(res); err != nil {
		return nil, err
	}

	var paths []string
	for _, line := range packageLines(res.Stdout) {
		paths = append(paths, strings.TrimPrefix(line, packagePrefix))
	}

	return paths, nil
}

// PullPackages pulls every apk of the package matching keyword into the working directory.
func (b Bridge) PullPackages(keyword string) ([]string, error) {
	packageName, err := b.ResolvePackage(keyword)
	if err != nil {
		return nil, err
	}
	b.logger.Printf("Package: %s", packageName)

	devicePaths, err := b.PackagePaths(packageName)
	if err != nil {
		return nil, err
	}

	var pulled []string
	for _, devicePth := range devicePaths {
		b.logger.Printf("Pulling %s...", devicePth)

		res, err := b.run("pull", devicePth)
		if err != nil {
			return pulled, err
		}
		if err := outcome.DeviceBridge(res); err != nil {
			return pulled, err
		}

		localPth := filepath.Join(b.workDir, path.Base(devicePth))
		b.logSize(localPth)
		pulled = append(pulled, localPth)
	}

	return pulled, nil
}

// MatchPackage picks the first `package:<name>` line containing keyword, in reported order.
func MatchPackage(packageList, keyword string) (string, bool) {
	for _, line := range packageLines(packageList) {
		if strings.Contains(line, keyword) {
			return strings.TrimPrefix(line, packagePrefix), true
		}
	}
	return "", false
}

func packageLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, packagePrefix) {
			lines = append(lines, line)
		}
	}
	return lines
}

func (b Bridge) logSize(pth string) {
	info, err := os.Stat(pth)
	if err != nil {
		b.logger.Debugf("Failed to stat %s: %s", pth, err)
		return
	}
	b.logger.Donef("%s (%s)", pth, units.HumanSize(float64(info.Size())))
}
