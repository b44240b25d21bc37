package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Veraticus/presenced/pkg/config"
	"github.com/Veraticus/presenced/pkg/logging"
	flag "github.com/spf13/pflag"
)

func main() {
	var (
		configPath   string
		logLevel     string
		quiet        bool
		notifyStdout bool
		help         bool
	)

	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	flag.BoolVar(&quiet, "quiet", false, "Disable event forwarding")
	flag.BoolVar(&notifyStdout, "notify-stdout", false, "Print forwarded events on stderr instead of sending them to ntfy")
	flag.BoolVar(&help, "help", false, "Show help message")
	flag.Parse()

	if help {
		printUsage()
		os.Exit(0)
	}

	// Flags win over the environment and are applied before loading so that
	// validation sees the final values.
	if quiet {
		setenv("PRESENCED_QUIET", "true")
	}
	if notifyStdout {
		setenv("PRESENCED_NOTIFY", "stdout")
	}
	if logLevel != "" {
		setenv("PRESENCED_LOG_LEVEL", logLevel)
	}

	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	logCfg, err := logging.FromSettings(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logging: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(logCfg, os.Stderr)

	deps, err := NewDependencies(cfg, log, os.Stdout, os.Stderr)
	if err != nil {
		log.Error().Err(err).Msg("failed to create dependencies")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = NewApplication(deps).Run(ctx)
	stop()
	deps.Close()

	if err != nil {
		log.Error().Err(err).Msg("presenced exited with error")
		os.Exit(1)
	}
}

func setenv(key, value string) {
	if err := os.Setenv(key, value); err != nil {
		fmt.Fprintf(os.Stderr, "Error setting %s: %v\n", key, err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("presenced - user presence daemon")
	fmt.Println()
	fmt.Println("Usage: presenced [OPTIONS]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Events are written to stdout as JSON lines; logs go to stderr.")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  PRESENCED_POLL_INTERVAL       Idle poll interval (default: 1s)")
	fmt.Println("  PRESENCED_SUSTAIN_INTERVAL    Still-idle heartbeat interval (default: 60x poll)")
	fmt.Println("  PRESENCED_IDLE_THRESHOLD      Inactivity before the user counts as idle (default: 1m)")
	fmt.Println("  PRESENCED_LOG_LEVEL           Log level (default: info)")
	fmt.Println("  PRESENCED_LOG_FORMAT          console or json (default: console)")
	fmt.Println("  PRESENCED_NTFY_TOPIC          Ntfy topic for forwarded events")
	fmt.Println("  PRESENCED_NTFY_SERVER         Ntfy server URL (default: https://ntfy.sh)")
	fmt.Println("  PRESENCED_FORWARD             Event types to forward (comma-separated)")
	fmt.Println("  PRESENCED_FORWARD_HEARTBEATS  Forward still-idle heartbeats (true/false)")
	fmt.Println("  PRESENCED_NOTIFY              Notification backend: ntfy or stdout (default: ntfy)")
	fmt.Println("  PRESENCED_QUIET               Disable forwarding (true/false)")
	fmt.Println("  PRESENCED_CONFIG              Path to config file")
	fmt.Println()
	fmt.Println("Configuration file: ~/.config/presenced/config.yaml")
}
