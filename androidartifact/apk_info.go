package androidartifact

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-steplib/apkutil/outcome"
	"github.com/bitrise-steplib/apkutil/runner"
	"github.com/bitrise-steplib/apkutil/toolpath"
)

// AAPTToolName ...
const AAPTToolName = "aapt"

// packageLineMarker identifies the manifest's package attribute in `aapt l -a` output.
const packageLineMarker = "A: package"

// PackageInfo ...
type PackageInfo struct {
	PackageName string
	RawLines    []string
}

// Inspector reads package details out of an apk.
type Inspector struct {
	resolver toolpath.Resolver
	runner   runner.Runner
	logger   log.Logger
}

// NewInspector ...
func NewInspector(resolver toolpath.Resolver, runner runner.Runner, logger log.Logger) Inspector {
	return Inspector{
		resolver: resolver,
		runner:   runner,
		logger:   logger,
	}
}

func packageField(data, key string) string {
	pattern := fmt.Sprintf(`%s=['"](.*?)['"]`, key)

	re := regexp.MustCompile(pattern)
	if matches := re.FindStringSubmatch(data); len(matches) == 2 {
		return matches[1]
	}

	return ""
}

// FilterPackageLines returns the lines of an `aapt l -a` dump that carry the package attribute.
func FilterPackageLines(aaptOut string) []string {
	var lines []string
	for _, line := range strings.Split(aaptOut, "\n") {
		if strings.Contains(line, packageLineMarker) {
			lines = append(lines, strings.TrimRight(line, "\r"))
		}
	}
	return lines
}

// PackageName ...
func (i Inspector) PackageName(apkPth string) (PackageInfo, error) {
	aaptPth, err := i.resolver.Resolve(AAPTToolName)
	if err != nil {
		return PackageInfo{}, err
	}

	res, err := i.runner.Run(runner.Invocation{Args: []string{aaptPth, "l", "-a", apkPth}})
	if err != nil {
		return PackageInfo{}, err
	}
	if err := outcome.Inspect(res); err != nil {
		return PackageInfo{}, err
	}

	lines := FilterPackageLines(res.Stdout)
	if len(lines) == 0 {
		return PackageInfo{}, &outcome.ExecutionError{Tool: AAPTToolName, Message: fmt.Sprintf("no package attribute in the manifest of %s", apkPth)}
	}

	return PackageInfo{
		PackageName: packageField(lines[0], "package"),
		RawLines:    lines,
	}, nil
}
