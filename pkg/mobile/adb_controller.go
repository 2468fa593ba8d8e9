/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: adb_controller.go
Description: DeviceController using the SDK's adb. Lists attached devices and emulators, waits
for a target to come online and reads its system properties. Used for environment checks ahead
of a profiling session.
*/

package mobile

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"
)

// DeviceController drives one device or emulator through adb.
type DeviceController struct {
	ADB    string // path to the adb binary
	Serial string // target serial, empty for the single attached device
	Runner Runner
}

func NewDeviceController(adb, serial string, runner Runner) *DeviceController {
	return &DeviceController{ADB: adb, Serial: serial, Runner: runner}
}

// args prefixes the serial selector when a target is set.
func (c *DeviceController) args(rest ...string) []string {
	if c.Serial == "" {
		return rest
	}
	return append([]string{"-s", c.Serial}, rest...)
}

// Devices lists every device known to the adb server.
func (c *DeviceController) Devices(ctx context.Context) ([]Device, error) {
	res, err := c.Runner.Run(ctx, c.ADB, "devices", "-l")
	if err != nil {
		return nil, fmt.Errorf("adb devices failed: %w", err)
	}
	if err := res.Check(); err != nil {
		return nil, err
	}
	return parseDevices(res.Stdout), nil
}

// WaitForDevice blocks until the target is online.
func (c *DeviceController) WaitForDevice(ctx context.Context) error {
	res, err := c.Runner.Run(ctx, c.ADB, c.args("wait-for-device")...)
	if err != nil {
		return fmt.Errorf("adb wait-for-device failed: %w", err)
	}
	return res.Check()
}

// DeviceInfo returns the target's getprop properties.
func (c *DeviceController) DeviceInfo(ctx context.Context) (map[string]string, error) {
	res, err := c.Runner.Run(ctx, c.ADB, c.args("shell", "getprop")...)
	if err != nil {
		return nil, fmt.Errorf("adb getprop failed: %w", err)
	}
	if err := res.Check(); err != nil {
		return nil, err
	}
	return parseGetprop(res.Stdout), nil
}

// parseDevices reads `adb devices -l` output:
//
//	emulator-5554          device product:sdk_gphone64 model:sdk_gphone64 transport_id:1
func parseDevices(output []byte) []Device {
	var devices []Device
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "List of devices") || strings.HasPrefix(line, "*") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		d := Device{Serial: fields[0], State: fields[1]}
		for _, f := range fields[2:] {
			if k, v, ok := strings.Cut(f, ":"); ok {
				if d.Attributes == nil {
					d.Attributes = make(map[string]string)
				}
				d.Attributes[k] = v
			}
		}
		devices = append(devices, d)
	}
	return devices
}

// parseGetprop reads `[key]: [value]` lines.
func parseGetprop(output []byte) map[string]string {
	info := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "[") {
			continue
		}
		key, val, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}
		info[strings.Trim(key, "[]")] = strings.Trim(val, "[]")
	}
	return info
}
