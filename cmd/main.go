// Package main is the entry point for the prompt capture service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/compresr/prompt-capture/internal/capture"
	"github.com/compresr/prompt-capture/internal/config"
	"github.com/compresr/prompt-capture/internal/events"
	"github.com/compresr/prompt-capture/internal/listener"
	"github.com/compresr/prompt-capture/internal/monitoring"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// loadEnvFiles loads .env from standard locations
func loadEnvFiles() {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		_ = godotenv.Load()
		return
	}

	// Try loading from ~/.config/prompt-capture/.env first
	configEnv := filepath.Join(homeDir, ".config", "prompt-capture", ".env")
	if _, err := os.Stat(configEnv); err == nil {
		_ = godotenv.Load(configEnv)
	}

	// Also load local .env (can override)
	_ = godotenv.Load()
}

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "serve", "start":
			runServe(os.Args[2:])
			return
		case "version", "-v", "--version":
			fmt.Printf("prompt-capture %s\n", Version)
			return
		case "help", "-h", "--help":
			printHelp()
			return
		}
	}

	runServe(os.Args[1:])
}

func printHelp() {
	fmt.Print(`prompt-capture - persists agent prompts to disk for inspection

Usage:
  prompt-capture [serve] [flags]   Start the hook listener (default)
  prompt-capture version           Print version
  prompt-capture help              Show this help

Flags for serve:
  -config string   Path to config YAML (default: ~/.config/prompt-capture/config.yaml)
  -port int        Override listener port
  -dir string      Override capture output directory
`)
}

// resolveConfig loads configuration with the usual precedence:
// explicit flag, then the user config file, then built-in defaults.
func resolveConfig(userConfig string) (*config.Config, string) {
	if userConfig != "" {
		cfg, err := config.Load(userConfig)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		return cfg, userConfig
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(homeDir, ".config", "prompt-capture", "config.yaml")
		if _, err := os.Stat(path); err == nil {
			cfg, err := config.Load(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
				os.Exit(1)
			}
			return cfg, path
		}
	}

	return config.Default(), "defaults"
}

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config YAML")
	port := fs.Int("port", 0, "override listener port")
	dir := fs.String("dir", "", "override capture output directory")
	_ = fs.Parse(args)

	loadEnvFiles()

	cfg, source := resolveConfig(*configPath)
	if *port != 0 {
		cfg.Listener.Port = *port
	}
	if *dir != "" {
		cfg.Capture.CacheDir = *dir
	}

	monitoring.Global(cfg.Monitoring)

	bus := events.NewBus()
	handler := capture.NewHandler(cfg.Capture)
	handler.Register(bus)

	log.Info().
		Str("version", Version).
		Str("config", source).
		Str("capture_dir", handler.Dir()).
		Str("strategy", cfg.Capture.Strategy).
		Bool("enabled", cfg.Capture.IsEnabled()).
		Msg("prompt capture starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := listener.New(cfg.Listener, bus).Start(ctx); err != nil {
		log.Error().Err(err).Msg("listener failed")
		os.Exit(1)
	}
}
