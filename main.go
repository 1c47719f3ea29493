// tickerchat - A terminal chat interface for AI stock analysis.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/jeranaias/tickerchat/internal/config"
	"github.com/jeranaias/tickerchat/internal/gateway"
	"github.com/jeranaias/tickerchat/internal/logging"
	"github.com/jeranaias/tickerchat/internal/session"
	"github.com/jeranaias/tickerchat/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	var (
		tickerFlag  = flag.String("ticker", "", "ticker symbol to open on start")
		configFlag  = flag.String("config", "", "path to config file")
		debugFlag   = flag.Bool("debug", false, "enable debug logging")
		versionFlag = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *versionFlag {
		fmt.Printf("tickerchat %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "tickerchat needs an interactive terminal")
		os.Exit(1)
	}

	if err := run(*tickerFlag, *configFlag, *debugFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ticker, configPath string, debug bool) error {
	// Load configuration. A missing file means defaults.
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFromPath(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	config.SetGlobal(cfg)

	cfgDir, err := config.Dir()
	if err != nil {
		return fmt.Errorf("config dir: %w", err)
	}

	// File logging only. The TUI owns stdout.
	logDir := cfg.Log.Dir
	if logDir == "" {
		logDir = filepath.Join(cfgDir, "logs")
	}
	if err := logging.Init(logDir, debug || cfg.Log.Debug); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer logging.Sync()

	logging.L().Info("starting tickerchat",
		zap.String("version", Version),
		zap.String("gateway", cfg.Gateway.BaseURL))

	// Stable session identity across runs.
	if err := config.EnsureDir(); err != nil {
		return fmt.Errorf("config dir: %w", err)
	}
	sessionID, err := session.LoadOrCreateID(cfgDir)
	if err != nil {
		return fmt.Errorf("session identity: %w", err)
	}

	store := session.NewStore(sessionID, cfg.Chat.HistoryLimit)
	if ticker == "" {
		ticker = cfg.Chat.DefaultTicker
	}
	if ticker != "" {
		if _, err := store.Open(ticker); err != nil {
			return fmt.Errorf("open ticker %q: %w", ticker, err)
		}
	}

	// Hot-reload the config file while the TUI runs. The running gateway
	// client is built once per TUI session, so gateway settings from a
	// reload apply on the next restart rather than mid-stream.
	stopWatch, err := config.Watch(func(next *config.Config) {
		logging.L().Info("config reloaded, gateway settings apply on restart",
			zap.String("gateway", next.Gateway.BaseURL))
	})
	if err != nil {
		logging.L().Warn("config watch unavailable", zap.Error(err))
	} else {
		defer stopWatch()
	}

	for {
		client := newGatewayClient(config.Global())
		runner := chat.NewStreamRunner(client)
		boundary := chat.NewBoundary(func() tea.Model {
			return chat.New(store, client, runner)
		})

		p := tea.NewProgram(boundary,
			tea.WithAltScreen(),
			tea.WithMouseCellMotion(),
		)
		runner.AttachSender(p)

		final, err := p.Run()
		if err != nil {
			return fmt.Errorf("run TUI: %w", err)
		}

		fb, ok := final.(chat.Boundary)
		if !ok || !fb.ReloadRequested() {
			return nil
		}

		// Crash-screen restart. Rebuild the session from scratch.
		logging.L().Info("restarting after crash")
		store = session.NewStore(sessionID, cfg.Chat.HistoryLimit)
		if ticker != "" {
			if _, err := store.Open(ticker); err != nil {
				return fmt.Errorf("open ticker %q: %w", ticker, err)
			}
		}
	}
}

// newGatewayClient builds a gateway client from the current config snapshot.
func newGatewayClient(cfg *config.Config) *gateway.Client {
	return gateway.NewClientWithConfig(&gateway.ClientConfig{
		BaseURL:           cfg.Gateway.BaseURL,
		Timeout:           time.Duration(cfg.Gateway.TimeoutSecs) * time.Second,
		StreamTimeout:     time.Duration(cfg.Gateway.StreamTimeoutSecs) * time.Second,
		MaxRetries:        cfg.Gateway.MaxRetries,
		RequestsPerSecond: cfg.Gateway.RequestsPerSecond,
	})
}
