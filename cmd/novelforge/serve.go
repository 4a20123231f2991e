package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/novelforge/novelforge/internal/bot"
	"github.com/novelforge/novelforge/internal/jobstore"
	"github.com/novelforge/novelforge/internal/novel"
	"github.com/novelforge/novelforge/internal/telegram"
)

var serveNoWatcher bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chat bot and the delivery watcher",
	Long: `Start the Telegram chat bot.

The bot long-polls for chat updates, walks users through novel and
chapter-range selection, and spawns one scraper process per accepted
job. A delivery watcher is started alongside as a child process; it
uploads finished PDFs from the outputs directory back to the
requesting chat.

Examples:
  novelforge serve                 # bot plus delivery watcher
  novelforge serve --no-watcher    # bot only (run 'novelforge watch' separately)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := newLogger()

		h, err := setupHome()
		if err != nil {
			return err
		}
		cm, err := loadConfig(h)
		if err != nil {
			return err
		}
		cfg := cm.Get()

		token := cfg.BotToken()
		if token == "" {
			return fmt.Errorf("no bot token configured; set NOVELFORGE_BOT_TOKEN or telegram.bot_token")
		}

		client := telegram.NewClient(telegram.Config{
			Token:   token,
			APIBase: cfg.Telegram.APIBase,
		})

		registry := novel.NewRegistry(cfg.Source.BaseSite, cfg.CustomNovels(), &http.Client{
			Timeout: cfg.Source.FetchTimeout(),
		})

		launcher, err := bot.NewProcessLauncher(h.LogsPath(), logger)
		if err != nil {
			return err
		}

		if !serveNoWatcher {
			if err := spawnWatcher(ctx, h.LogsPath()); err != nil {
				return err
			}
			logger.Info("delivery watcher started")
		}

		b := bot.New(bot.Config{
			Client:   client,
			Catalog:  registry,
			Store:    jobstore.NewStore(h.JobsPath()),
			Launcher: launcher,
			Logger:   logger,
		})

		// Blocks until the context is cancelled; the watcher child is
		// stopped with us.
		return b.Run(ctx)
	},
}

// spawnWatcher starts `novelforge watch` as a child process so a watcher
// failure cannot take the bot down. The child is killed when ctx ends.
func spawnWatcher(ctx context.Context, logsDir string) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to resolve executable: %w", err)
	}

	args := []string{"watch"}
	if homeDir != "" {
		args = append(args, "--home", homeDir)
	}
	if cfgFile != "" {
		args = append(args, "--config", cfgFile)
	}

	logFile, err := os.OpenFile(filepath.Join(logsDir, "watcher.log"),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open watcher log: %w", err)
	}

	watch := exec.CommandContext(ctx, exe, args...)
	watch.Stdout = logFile
	watch.Stderr = logFile
	if err := watch.Start(); err != nil {
		logFile.Close()
		return fmt.Errorf("failed to spawn watcher: %w", err)
	}

	go func() {
		_ = watch.Wait()
		logFile.Close()
	}()
	return nil
}

func init() {
	serveCmd.Flags().BoolVar(&serveNoWatcher, "no-watcher", false, "Do not start the delivery watcher")

	rootCmd.AddCommand(serveCmd)
}
