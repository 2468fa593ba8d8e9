/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: mobile_test.go
Description: Tests for the mobile package: package inspection through a fake aapt, package
directory derivation, instrumentation and simulation argv handling, adb output parsing and
logcat crash scanning.
*/

package mobile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kleascm/orka/pkg/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner records every invocation and replies with canned results.
type fakeRunner struct {
	calls   [][]string
	results map[string]*Result // keyed by program path
	onRun   func(name string, args []string)
	err     error
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (*Result, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.onRun != nil {
		f.onRun(name, args)
	}
	if f.err != nil {
		return nil, f.err
	}
	if res, ok := f.results[name]; ok {
		out := *res
		out.Command = append([]string{name}, args...)
		return &out, nil
	}
	return &Result{Command: append([]string{name}, args...)}, nil
}

const badging = `package: name='com.example.app' versionCode='1' versionName='1.0' platformBuildVersionName=''
sdkVersion:'21'
targetSdkVersion:'28'
uses-permission: name='android.permission.INTERNET'
application-label:'Example'
launchable-activity: name='com.example.app.MainActivity'  label='Example' icon=''
`

// newSDK creates an SDK root with a single build-tools installation.
func newSDK(t *testing.T, versions ...string) string {
	t.Helper()
	sdk := t.TempDir()
	for _, v := range versions {
		require.NoError(t, os.MkdirAll(filepath.Join(sdk, "build-tools", v), 0755))
	}
	return sdk
}

func newAPK(t *testing.T) string {
	t.Helper()
	apk := filepath.Join(t.TempDir(), "app.apk")
	require.NoError(t, os.WriteFile(apk, []byte("PK"), 0644))
	return apk
}

func TestPackageDir(t *testing.T) {
	assert.Equal(t, "com/example.app", PackageDir("com.example.app"))
	assert.Equal(t, "org/foo/bar.baz", PackageDir("org.foo.bar.baz"))
	assert.Equal(t, "com.app", PackageDir("com.app"))
	assert.Equal(t, "app", PackageDir("app"))
}

func TestInspect(t *testing.T) {
	sdk := newSDK(t, "28.0.3", "30.0.2")
	aapt := filepath.Join(sdk, "build-tools", "28.0.3", "aapt")
	runner := &fakeRunner{results: map[string]*Result{aapt: {Stdout: []byte(badging)}}}
	inspector := NewPackageInspector(sdk, runner)
	apk := newAPK(t)

	info, err := inspector.Inspect(context.Background(), apk)
	require.NoError(t, err)

	assert.Equal(t, "com.example.app", info.PackageName)
	assert.Equal(t, "com/example.app", info.PackageDir)
	assert.Equal(t, "com.example.app.MainActivity", info.ActivityName)
	assert.Equal(t, "com.example.app/com.example.app.MainActivity", info.ComponentName)

	// One badging dump for the package name, one for the activity.
	require.Len(t, runner.calls, 2)
	for _, c := range runner.calls {
		assert.Equal(t, []string{aapt, "dump", "badging", apk}, c)
	}
}

func TestInspectPreconditions(t *testing.T) {
	t.Run("empty_path", func(t *testing.T) {
		runner := &fakeRunner{}
		_, err := NewPackageInspector(newSDK(t, "30.0.2"), runner).Inspect(context.Background(), "  ")
		assert.ErrorIs(t, err, errs.ErrInvalidArgument)
		assert.Empty(t, runner.calls)
	})
	t.Run("missing_file", func(t *testing.T) {
		runner := &fakeRunner{}
		_, err := NewPackageInspector(newSDK(t, "30.0.2"), runner).Inspect(context.Background(), "/nonexistent/app.apk")
		assert.ErrorIs(t, err, errs.ErrNotFound)
		assert.Empty(t, runner.calls)
	})
	t.Run("directory", func(t *testing.T) {
		runner := &fakeRunner{}
		_, err := NewPackageInspector(newSDK(t, "30.0.2"), runner).Inspect(context.Background(), t.TempDir())
		assert.ErrorIs(t, err, errs.ErrNotFound)
		assert.Empty(t, runner.calls)
	})
	t.Run("no_build_tools", func(t *testing.T) {
		runner := &fakeRunner{}
		_, err := NewPackageInspector(newSDK(t), runner).Inspect(context.Background(), newAPK(t))
		assert.ErrorIs(t, err, errs.ErrEnvironment)
		assert.Empty(t, runner.calls)
	})
}

func TestInspectToolFailures(t *testing.T) {
	sdk := newSDK(t, "30.0.2")
	aapt := filepath.Join(sdk, "build-tools", "30.0.2", "aapt")

	t.Run("non_zero_exit", func(t *testing.T) {
		runner := &fakeRunner{results: map[string]*Result{aapt: {ExitCode: 1, Stderr: []byte("ERROR: dump failed")}}}
		_, err := NewPackageInspector(sdk, runner).Inspect(context.Background(), newAPK(t))
		assert.ErrorIs(t, err, errs.ErrCommandFailed)
		assert.Contains(t, err.Error(), "dump failed")
	})
	t.Run("no_activity", func(t *testing.T) {
		runner := &fakeRunner{results: map[string]*Result{aapt: {Stdout: []byte("package: name='com.example.lib'\n")}}}
		_, err := NewPackageInspector(sdk, runner).Inspect(context.Background(), newAPK(t))
		assert.ErrorIs(t, err, errs.ErrParse)
		assert.Len(t, runner.calls, 2)
	})
}

func TestInstrument(t *testing.T) {
	dir := t.TempDir()
	sentinel := filepath.Join(dir, "working", "apifound")
	script := "/orka/src/instrument.sh"

	t.Run("sentinel_written", func(t *testing.T) {
		runner := &fakeRunner{onRun: func(name string, args []string) {
			require.NoError(t, os.MkdirAll(filepath.Dir(sentinel), 0755))
			require.NoError(t, os.WriteFile(sentinel, nil, 0644))
		}}
		res, err := NewInstrumenter(script, sentinel, runner).Instrument(context.Background(), "/apks/my app.apk", "com.example.app", "com/example.app")
		require.NoError(t, err)

		assert.Equal(t, [][]string{{script, "/apks/my app.apk", "com.example.app", "com/example.app"}}, runner.calls)
		assert.True(t, res.SentinelPresent)
		assert.True(t, res.SentinelFresh)
		assert.True(t, res.Succeeded(false))
		assert.True(t, res.Succeeded(true))
		require.NoError(t, os.Remove(sentinel))
	})

	t.Run("no_sentinel", func(t *testing.T) {
		runner := &fakeRunner{}
		res, err := NewInstrumenter(script, sentinel, runner).Instrument(context.Background(), "a.apk", "p", "d")
		require.NoError(t, err)
		assert.False(t, res.SentinelPresent)
		assert.False(t, res.Succeeded(false))
	})

	t.Run("stale_sentinel_with_failed_script", func(t *testing.T) {
		require.NoError(t, os.MkdirAll(filepath.Dir(sentinel), 0755))
		require.NoError(t, os.WriteFile(sentinel, nil, 0644))
		old := time.Now().Add(-time.Hour)
		require.NoError(t, os.Chtimes(sentinel, old, old))

		runner := &fakeRunner{results: map[string]*Result{script: {ExitCode: 2}}}
		res, err := NewInstrumenter(script, sentinel, runner).Instrument(context.Background(), "a.apk", "p", "d")
		require.NoError(t, err)

		assert.Equal(t, 2, res.ExitCode)
		assert.True(t, res.SentinelPresent)
		assert.False(t, res.SentinelFresh)
		// Lenient predicate reports success, strict does not.
		assert.True(t, res.Succeeded(false))
		assert.False(t, res.Succeeded(true))
	})

	t.Run("cannot_start", func(t *testing.T) {
		runner := &fakeRunner{err: os.ErrPermission}
		_, err := NewInstrumenter(script, sentinel, runner).Instrument(context.Background(), "a.apk", "p", "d")
		assert.ErrorIs(t, err, os.ErrPermission)
	})
}

func TestSimulate(t *testing.T) {
	script := "/orka/src/simulationMaster.sh"
	req := SimulationRequest{
		APK:               "/orka/working/com.example.app/dist/orka.apk",
		PackageName:       "com.example.app",
		ComponentName:     "com.example.app/com.example.app.MainActivity",
		EmulatorID:        "emulator-5554",
		InteractionScript: "monkey script.py",
		InteractionInput:  "input file.txt",
		Repetitions:       3,
	}

	runner := &fakeRunner{}
	require.NoError(t, NewSimulator(script, runner).Simulate(context.Background(), req))
	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{
		script,
		"/orka/working/com.example.app/dist/orka.apk",
		"com.example.app",
		"com.example.app/com.example.app.MainActivity",
		"emulator-5554",
		"monkey script.py",
		"input file.txt",
		"3",
	}, runner.calls[0])

	failing := &fakeRunner{results: map[string]*Result{script: {ExitCode: 1, Stderr: []byte("emulator offline")}}}
	err := NewSimulator(script, failing).Simulate(context.Background(), req)
	assert.ErrorIs(t, err, errs.ErrCommandFailed)
	assert.Contains(t, err.Error(), "emulator offline")
}

func TestExecRunner(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh")
	}
	r := NewExecRunner(nil)

	res, err := r.Run(context.Background(), "/bin/sh", "-c", `printf '%s' "$1"; exit 3`, "sh", "two words")
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "two words", string(res.Stdout))
	assert.ErrorIs(t, res.Check(), errs.ErrCommandFailed)

	_, err = r.Run(context.Background(), "/nonexistent/tool")
	assert.Error(t, err)
}

func TestParseDevices(t *testing.T) {
	out := `* daemon started successfully
List of devices attached
emulator-5554          device product:sdk_gphone64_x86_64 model:sdk_gphone64_x86_64 transport_id:1
0123456789ABCDEF       unauthorized usb:1-1 transport_id:2

`
	devices := parseDevices([]byte(out))
	require.Len(t, devices, 2)
	assert.Equal(t, "emulator-5554", devices[0].Serial)
	assert.Equal(t, "device", devices[0].State)
	assert.Equal(t, "sdk_gphone64_x86_64", devices[0].Attributes["model"])
	assert.True(t, devices[0].Emulator())
	assert.Equal(t, "unauthorized", devices[1].State)
	assert.False(t, devices[1].Emulator())
}

func TestDeviceController(t *testing.T) {
	runner := &fakeRunner{results: map[string]*Result{
		"/sdk/platform-tools/adb": {Stdout: []byte("[ro.product.model]: [Pixel 6]\n[ro.build.version.sdk]: [33]\nnot a prop\n")},
	}}
	c := NewDeviceController("/sdk/platform-tools/adb", "emulator-5554", runner)

	info, err := c.DeviceInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Pixel 6", info["ro.product.model"])
	assert.Equal(t, "33", info["ro.build.version.sdk"])
	assert.Len(t, info, 2)

	require.NoError(t, c.WaitForDevice(context.Background()))
	assert.Equal(t, []string{"/sdk/platform-tools/adb", "-s", "emulator-5554", "shell", "getprop"}, runner.calls[0])
	assert.Equal(t, []string{"/sdk/platform-tools/adb", "-s", "emulator-5554", "wait-for-device"}, runner.calls[1])
}

const crashLog = `01-02 10:00:00.000  1234  1234 I Orka    : onCreate android.net.wifi.WifiManager.startScan()Z
01-02 10:00:01.000  1234  1234 E AndroidRuntime: FATAL EXCEPTION: main
01-02 10:00:01.000  1234  1234 E AndroidRuntime: Process: com.example.app, PID: 1234
01-02 10:00:01.000  1234  1234 E AndroidRuntime: java.lang.NullPointerException: boom
01-02 10:00:01.000  1234  1234 E AndroidRuntime: 	at com.example.app.MainActivity.onCreate(MainActivity.java:10)
01-02 10:00:02.000   500   520 I ActivityManager: Process com.example.app (pid 1234) has died
01-02 10:00:03.000  1300  1300 D Other   : unrelated
01-02 10:00:04.000  2222  2222 E AndroidRuntime: FATAL EXCEPTION: main
01-02 10:00:04.000  2222  2222 E AndroidRuntime: Process: com.other.app, PID: 2222
01-02 10:00:04.000  2222  2222 E AndroidRuntime: java.lang.IllegalStateException
01-02 10:00:05.000   500   520 E ActivityManager: ANR in com.example.app (com.example.app/.MainActivity)
01-02 10:00:05.000   500   520 E ActivityManager: Reason: Input dispatching timed out
`

func TestScanCrashes(t *testing.T) {
	crashes, err := ScanCrashes(strings.NewReader(crashLog), "com.example.app")
	require.NoError(t, err)
	require.Len(t, crashes, 2)

	assert.Equal(t, "crash", crashes[0].Type)
	assert.Contains(t, crashes[0].Message, "Process: com.example.app")
	assert.Contains(t, crashes[0].StackTrace, "java.lang.NullPointerException: boom")
	assert.Contains(t, crashes[0].StackTrace, "at com.example.app.MainActivity.onCreate")
	assert.Equal(t, time.January, crashes[0].Timestamp.Month())

	assert.Equal(t, "anr", crashes[1].Type)
	assert.Contains(t, crashes[1].StackTrace, "Input dispatching timed out")
}

func TestScanCrashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logcat.txt")
	require.NoError(t, os.WriteFile(path, []byte(crashLog), 0644))

	crashes, err := ScanCrashFile(path, "com.other.app")
	require.NoError(t, err)
	require.Len(t, crashes, 1)
	assert.Equal(t, path, crashes[0].Source)

	_, err = ScanCrashFile(filepath.Join(t.TempDir(), "missing.txt"), "x")
	assert.Error(t, err)
}
