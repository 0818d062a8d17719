package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chaz8081/godictate/internal/app"
	"github.com/chaz8081/godictate/internal/audio"
	"github.com/chaz8081/godictate/internal/config"
	"github.com/chaz8081/godictate/internal/hotkey"
	"github.com/chaz8081/godictate/internal/paste"
	"github.com/chaz8081/godictate/internal/reformat"
	"github.com/chaz8081/godictate/internal/status"
	"github.com/chaz8081/godictate/internal/transcribe"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: ~/.config/godictate/config.yaml)")
	writeConfig := flag.Bool("write-config", false, "write a default config file and exit")
	flag.Parse()

	if *writeConfig {
		path, err := config.WriteDefault()
		if err != nil {
			fmt.Fprintf(os.Stderr, "writing default config: %v\n", err)
			os.Exit(1)
		}
		if path == "" {
			fmt.Println("Config already exists at", config.DefaultConfigPath())
		} else {
			fmt.Println("Default config written to", path)
		}
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config validation: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: config.ParseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	printBanner(cfg)

	reporter, err := status.NewFileReporter(cfg.StatusFile, logger)
	if err != nil {
		logger.Error("status reporter unavailable, indicators disabled", "error", err)
	}
	var rep status.Reporter = status.NopReporter{}
	if reporter != nil {
		rep = reporter
		logger.Info("status file ready", "path", reporter.Path())
	}

	paster := paste.New(paste.SystemClipboard{}, paste.SystemKeys{}, logger,
		paste.WithRestoreDelay(cfg.Paste.RestoreDelay()))

	// A transcriber that fails to construct disables transcription for
	// this run; recording itself stays usable.
	var transcriber transcribe.Transcriber
	if cfg.Transcribe.Enabled {
		transcriber, err = transcribe.New(cfg.Transcribe, rep)
		if err != nil {
			logger.Error("transcription disabled", "error", err)
		} else {
			logger.Info("transcriber ready", "backend", cfg.Transcribe.Backend, "model", cfg.Transcribe.Model)
		}
	}

	recorder := audio.NewRecorder(cfg.Audio, cfg.Output.Path(), audio.Options{
		Transcriber: transcriber,
		Paster:      paster,
		Reporter:    rep,
		Logger:      logger,
		AutoPaste:   cfg.Paste.Auto,
	})

	monitor := hotkey.NewMonitor(cfg.Hotkey.Keys, logger)

	if cfg.Reformat.Enabled {
		reformatter, err := reformat.New(cfg.Reformat)
		if err != nil {
			logger.Error("reformatter disabled", "error", err)
		} else {
			rc := reformat.NewController(reformatter, paster, rep, cfg.Reformat.HoldDuration(), logger)
			monitor.TapKey(cfg.Reformat.HoldKey, rc.KeyDown, rc.KeyUp)
			logger.Info("reformatter ready",
				"key", cfg.Reformat.HoldKey,
				"hold", cfg.Reformat.HoldDuration(),
				"backend", cfg.Reformat.Backend)
		}
	}

	controller := app.New(monitor, recorder, logger)
	controller.Start()

	logger.Info("ready", "hotkey", strings.Join(cfg.Hotkey.Keys, "+"))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	logger.Info("shutting down", "signal", sig.String())
	controller.Stop()
	if reporter != nil {
		if err := reporter.Close(); err != nil {
			logger.Warn("removing status file", "error", err)
		}
	}

	// Exit directly to avoid gohook's C cleanup crash.
	// The OS reclaims the event hook on process exit.
	os.Exit(0)
}

// loadConfig loads the config from the specified path, or falls back to
// the default config path, or uses built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	defaultPath := config.DefaultConfigPath()
	if _, err := os.Stat(defaultPath); err == nil {
		cfg, err := config.Load(defaultPath)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", defaultPath, err)
		}
		return cfg, nil
	}

	return config.Default(), nil
}

// printBanner displays the startup configuration summary.
func printBanner(cfg *config.Config) {
	fmt.Println("=== godictate ===")
	fmt.Printf("  Hotkey:     %s\n", strings.Join(cfg.Hotkey.Keys, "+"))
	fmt.Printf("  Audio:      %dHz, %dch, %d-sample chunks\n", cfg.Audio.SampleRate, cfg.Audio.Channels, cfg.Audio.ChunkSize)
	fmt.Printf("  Output:     %s\n", cfg.Output.Path())
	fmt.Printf("  Transcribe: enabled=%t backend=%s model=%s\n", cfg.Transcribe.Enabled, cfg.Transcribe.Backend, cfg.Transcribe.Model)
	fmt.Printf("  Reformat:   enabled=%t key=%s hold=%.1fs\n", cfg.Reformat.Enabled, cfg.Reformat.HoldKey, cfg.Reformat.HoldDurationSec)
	fmt.Printf("  Log:        %s\n", cfg.LogLevel)
	fmt.Println("=================")
}
