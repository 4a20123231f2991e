package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/novelforge/novelforge/internal/config"
	"github.com/novelforge/novelforge/internal/home"
	"github.com/novelforge/novelforge/version"
)

var (
	cfgFile string
	homeDir string
)

var rootCmd = &cobra.Command{
	Use:   "novelforge",
	Short: "Web novel scrape-to-PDF pipeline with Telegram delivery",
	Long: `Novelforge turns web novel chapters into PDF documents on request.

Users pick a novel and a chapter range in a Telegram chat; a scraper
process fetches the chapters, renders them into batched PDFs, and a
delivery watcher uploads the finished documents back to the chat.

The pipeline includes:
  - Inline-keyboard chat flow for novel and range selection
  - Crash-isolated scrape jobs with per-chapter progress records
  - Batched PDF rendering with local backup copies
  - At-least-once document delivery with upload retries`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.novelforge/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "novelforge home directory (default: ~/.novelforge)",
	)

	rootCmd.AddCommand(versionCmd)
}

// newLogger builds the process logger shared by all commands.
func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// setupHome resolves and materializes the home directory.
func setupHome() (*home.Dir, error) {
	h, err := home.New(homeDir)
	if err != nil {
		return nil, err
	}
	if err := h.EnsureExists(); err != nil {
		return nil, err
	}
	return h, nil
}

// loadConfig loads configuration, preferring the --config flag and falling
// back to the home directory's config file when one exists.
func loadConfig(h *home.Dir) (*config.Manager, error) {
	path := cfgFile
	if path == "" && h.ConfigExists() {
		path = h.ConfigPath()
	}
	return config.NewManager(path)
}
