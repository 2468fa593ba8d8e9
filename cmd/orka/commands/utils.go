/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Shared utilities for the Orka commands. Provides configuration loading, logging
setup and the signal-aware context used by every long-running command.
*/

package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/kleascm/orka/pkg/config"
	"github.com/kleascm/orka/pkg/logging"
	"github.com/kleascm/orka/pkg/mobile"
	"github.com/spf13/viper"
)

// LoadConfig enables ORKA_* environment overrides for every flag and resolves the
// installation layout.
func LoadConfig() (*config.Paths, error) {
	viper.SetEnvPrefix("ORKA")
	viper.AutomaticEnv()
	return config.LoadPaths(viper.GetViper())
}

// SetupLogging builds the session logger from the logging flags.
func SetupLogging() (*logging.Logger, error) {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.LogLevel(viper.GetString("log_level"))
	cfg.Format = logging.LogFormat(viper.GetString("log_format"))
	cfg.OutputDir = viper.GetString("log_dir")
	if n := viper.GetInt("log_max_files"); n > 0 {
		cfg.MaxFiles = n
	}
	return logging.NewLogger(cfg)
}

// configPath is the run configuration file, conf.ini under ORKA_HOME unless overridden.
func configPath(paths *config.Paths) string {
	if p := viper.GetString("config"); p != "" {
		return p
	}
	return paths.ConfigFile
}

// newRunner returns a runner executing from the installation root, so scripts that write
// relative results land under ORKA_HOME.
func newRunner(paths *config.Paths, logger *logging.Logger) *mobile.ExecRunner {
	runner := mobile.NewExecRunner(logger.GetLogger())
	runner.Dir = paths.Home
	runner.Stream = true
	return runner
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
