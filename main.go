package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"orb-trader/internal/cli"
	"orb-trader/internal/config"
	"orb-trader/internal/logging"
)

func main() {
	// The config directory flag has to be read before cobra parses
	// anything, because loading config is a prerequisite for building
	// the command tree.
	configDir := ""
	fs := pflag.NewFlagSet("bootstrap", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.StringVar(&configDir, "config", "", "")
	fs.Usage = func() {}
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logCfg := logging.DefaultLogConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Console = cfg.Logging.ConsoleOutput
	if cfg.Logging.LogFile != "" {
		logCfg.FilePath = cfg.Logging.LogFile
	}
	logger := logging.NewLoggerWithConfig(logCfg)

	rootCmd := cli.NewRootCmd(cfg, logger)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
