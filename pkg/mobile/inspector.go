/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: inspector.go
Description: PackageInspector. Extracts package name, on-device package directory and the
launchable component from an APK using `aapt dump badging` from the SDK build-tools.
*/

package mobile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/kleascm/orka/pkg/errs"
)

var (
	packageNameRe = regexp.MustCompile(`package: name='([^'\s]+)'`)
	activityRe    = regexp.MustCompile(`launchable-activity: name='([^'\s]+)'`)
)

// PackageInspector reads APK metadata through aapt.
type PackageInspector struct {
	SDKRoot string
	Runner  Runner
}

func NewPackageInspector(sdkRoot string, runner Runner) *PackageInspector {
	return &PackageInspector{SDKRoot: sdkRoot, Runner: runner}
}

// Inspect returns the package information of the APK at appPath.
func (i *PackageInspector) Inspect(ctx context.Context, appPath string) (*PackageInfo, error) {
	if strings.TrimSpace(appPath) == "" {
		return nil, fmt.Errorf("%w: app path must be a non-empty file path", errs.ErrInvalidArgument)
	}
	st, err := os.Stat(appPath)
	if err != nil || !st.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: cannot find specified app - %s", errs.ErrNotFound, appPath)
	}

	aapt, err := i.AAPTPath()
	if err != nil {
		return nil, err
	}

	packageName, err := i.badgingField(ctx, aapt, appPath, packageNameRe, "package name")
	if err != nil {
		return nil, err
	}
	activity, err := i.badgingField(ctx, aapt, appPath, activityRe, "launchable activity")
	if err != nil {
		return nil, err
	}

	return &PackageInfo{
		PackageName:   packageName,
		PackageDir:    PackageDir(packageName),
		ActivityName:  activity,
		ComponentName: packageName + "/" + activity,
	}, nil
}

// AAPTPath locates aapt in the first build-tools installation of the SDK.
func (i *PackageInspector) AAPTPath() (string, error) {
	buildTools, err := filepath.Glob(filepath.Join(i.SDKRoot, "build-tools", "*"))
	if err != nil {
		return "", fmt.Errorf("failed to list build-tools: %w", err)
	}
	if len(buildTools) == 0 {
		return "", fmt.Errorf("%w: no version of build-tools found in SDK folder %s", errs.ErrEnvironment, i.SDKRoot)
	}
	return filepath.Join(buildTools[0], "aapt"), nil
}

// badgingField runs one badging dump and extracts the first match of re.
func (i *PackageInspector) badgingField(ctx context.Context, aapt, appPath string, re *regexp.Regexp, what string) (string, error) {
	res, err := i.Runner.Run(ctx, aapt, "dump", "badging", appPath)
	if err != nil {
		return "", fmt.Errorf("aapt failed: %w", err)
	}
	if err := res.Check(); err != nil {
		return "", err
	}
	m := re.FindSubmatch(res.Stdout)
	if m == nil {
		return "", fmt.Errorf("%w: no %s in badging dump of %s", errs.ErrParse, what, appPath)
	}
	return string(m[1]), nil
}

// PackageDir derives the package directory expected by the instrumentation scripts: every
// separator but the last becomes a slash, the last stays a dot (com.example.app -> com/example.app).
func PackageDir(packageName string) string {
	last := strings.LastIndexByte(packageName, '.')
	if last < 0 {
		return packageName
	}
	return strings.ReplaceAll(packageName[:last], ".", "/") + packageName[last:]
}
