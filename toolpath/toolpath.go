package toolpath

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/bitrise-io/go-android/sdk"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/pathutil"
)

// scriptExtensions are probed in this order on Windows when the resolved path has no extension.
var scriptExtensions = []string{".cmd", ".bat"}

// NotFoundError is returned when the executable of an external tool cannot be located.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found. Please install and make sure it's in PATH.", e.Name)
}

// Resolver locates the executable of an external tool by its logical name.
type Resolver interface {
	Resolve(name string) (string, error)
}

// LookPathFunc ...
type LookPathFunc func(file string) (string, error)

type resolver struct {
	goos        string
	lookPath    LookPathFunc
	pathChecker pathutil.PathChecker
	sdkRoot     string
	logger      log.Logger
}

// NewResolver returns a Resolver that searches PATH first and falls back to the
// latest build-tools of the Android SDK found at sdkRoot (zipalign, apksigner and aapt live there).
// An empty sdkRoot disables the fallback.
func NewResolver(sdkRoot string, pathChecker pathutil.PathChecker, logger log.Logger) Resolver {
	return newResolver(runtime.GOOS, exec.LookPath, sdkRoot, pathChecker, logger)
}

func newResolver(goos string, lookPath LookPathFunc, sdkRoot string, pathChecker pathutil.PathChecker, logger log.Logger) resolver {
	return resolver{
		goos:        goos,
		lookPath:    lookPath,
		pathChecker: pathChecker,
		sdkRoot:     sdkRoot,
		logger:      logger,
	}
}

func (r resolver) Resolve(name string) (string, error) {
	pth, err := r.lookPath(name)
	if err == nil {
		return r.withScriptExtension(pth)
	}
	r.logger.Debugf("%s is not on PATH: %s", name, err)

	if pth, ok := r.fromBuildTools(name); ok {
		return pth, nil
	}

	return "", &NotFoundError{Name: name}
}

func (r resolver) withScriptExtension(pth string) (string, error) {
	if r.goos != "windows" || filepath.Ext(pth) != "" {
		return pth, nil
	}

	for _, ext := range scriptExtensions {
		candidate := pth + ext
		exists, err := r.pathChecker.IsPathExists(candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check if %s exists: %w", candidate, err)
		}
		if exists {
			return candidate, nil
		}
	}

	return pth, nil
}

func (r resolver) fromBuildTools(name string) (string, bool) {
	if r.sdkRoot == "" {
		return "", false
	}

	sdkModel, err := sdk.New(r.sdkRoot)
	if err != nil {
		r.logger.Debugf("Android SDK not usable at %s: %s", r.sdkRoot, err)
		return "", false
	}

	names := []string{name}
	if r.goos == "windows" {
		names = append(names, name+".exe", name+".bat")
	}

	for _, n := range names {
		pth, err := sdkModel.LatestBuildToolPath(n)
		if err != nil {
			continue
		}
		r.logger.Debugf("Using %s from the Android SDK build-tools", pth)
		return pth, true
	}

	return "", false
}
