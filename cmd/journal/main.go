package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	clientcmd "github.com/rzbill/journal/internal/cmd/client"
	serverrun "github.com/rzbill/journal/internal/cmd/server"
	cfgpkg "github.com/rzbill/journal/internal/config"
	logpkg "github.com/rzbill/journal/pkg/log"
	"github.com/spf13/cobra"
)

func main() {
	// Respect JOURNAL_LOG_LEVEL for CLI output as well as server start.
	level := os.Getenv("JOURNAL_LOG_LEVEL")
	parsed, err := logpkg.ParseLevel(level)
	if err != nil || level == "" {
		parsed = logpkg.InfoLevel
	}
	logger := logpkg.NewLogger(
		logpkg.WithLevel(parsed),
		logpkg.WithFormatter(&logpkg.TextFormatter{}),
		logpkg.WithOutput(logpkg.NewConsoleOutput()),
	)

	// Redirect standard library logs (used by Pebble) to our logger.
	logpkg.RedirectStdLog(logger)

	rootCmd := &cobra.Command{
		Use:   "journal",
		Short: "Journal log store CLI",
		Long:  "Journal is a cursor-addressable log store. This CLI manages the server and reads or writes entries.",
	}

	// server start
	serverCmd := &cobra.Command{Use: "server", Short: "Server commands"}
	serverStartCmd := &cobra.Command{
		Use:     "start",
		Short:   "Start the journal server (store and HTTP gateway)",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			dataDir, _ := cmd.Flags().GetString("data-dir")
			httpAddr, _ := cmd.Flags().GetString("http")
			fsyncMode, _ := cmd.Flags().GetString("fsync")
			logLevel, _ := cmd.Flags().GetString("log-level")
			logFormat, _ := cmd.Flags().GetString("log-format")
			maxAge, _ := cmd.Flags().GetString("retention-max-age")
			maxBytes, _ := cmd.Flags().GetInt64("retention-max-bytes")

			cfg, err := cfgpkg.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfgpkg.FromEnv(&cfg)
			if fsyncMode != "" {
				cfg.Fsync = fsyncMode
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			if logFormat != "" {
				cfg.Log.Format = logFormat
			}
			if maxAge != "" {
				cfg.Retention.MaxAge = maxAge
			}
			if maxBytes > 0 {
				cfg.Retention.MaxBytes = maxBytes
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if err := serverrun.Run(ctx, serverrun.Options{
				Config:   cfg,
				DataDir:  dataDir,
				HTTPAddr: httpAddr,
			}); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			// brief delay to allow logs flush
			time.Sleep(100 * time.Millisecond)
			return nil
		},
	}
	serverStartCmd.Flags().String("config", "", "Path to a JSON config file")
	serverStartCmd.Flags().String("data-dir", "", "Data directory (default: OS-specific application data directory)")
	serverStartCmd.Flags().String("http", "", "HTTP listen address (default :8282)")
	serverStartCmd.Flags().String("fsync", "", "Fsync mode: always|interval|never")
	serverStartCmd.Flags().String("log-level", os.Getenv("JOURNAL_LOG_LEVEL"), "Log level: debug|info|warn|error")
	serverStartCmd.Flags().String("log-format", os.Getenv("JOURNAL_LOG_FORMAT"), "Log format: text|json (default text)")
	serverStartCmd.Flags().String("retention-max-age", "", "Discard entries older than this, e.g. 720h")
	serverStartCmd.Flags().Int64("retention-max-bytes", 0, "Cap the store size; oldest entries go first")
	serverCmd.AddCommand(serverStartCmd)
	rootCmd.AddCommand(serverCmd)

	// read/write commands against a running server
	rootCmd.AddCommand(
		clientcmd.NewCatCommand(apiURL),
		clientcmd.NewTailCommand(apiURL),
		clientcmd.NewSendCommand(apiURL),
		clientcmd.NewStatusCommand(apiURL),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func apiURL() string {
	if v := os.Getenv("JOURNAL_HTTP"); v != "" {
		return v
	}
	return "http://127.0.0.1:8282"
}
