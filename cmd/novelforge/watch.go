package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/novelforge/novelforge/internal/delivery"
	"github.com/novelforge/novelforge/internal/telegram"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the delivery watcher",
	Long: `Watch the outputs directory and upload finished PDFs to their
requesting chats.

The watcher polls for documents named <chatID>__<title>_<start>_to_<end>.pdf,
claims each one by renaming it, and deletes it only after Telegram confirms
the upload. Normally started by 'serve'; run it directly when the bot runs
with --no-watcher or on a separate host sharing the outputs directory.`,
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
			Token:          token,
			APIBase:        cfg.Telegram.APIBase,
			ConnectTimeout: time.Duration(cfg.Delivery.ConnectTimeoutSeconds) * time.Second,
			ReadTimeout:    time.Duration(cfg.Delivery.ReadTimeoutSeconds) * time.Second,
		})

		w := delivery.New(delivery.Config{
			Dir:          h.OutputsPath(),
			Uploader:     client,
			PollInterval: cfg.Delivery.PollInterval(),
			Attempts:     cfg.Delivery.UploadAttempts,
			RetryDelay:   cfg.Delivery.RetryDelay(),
			Logger:       logger,
		})
		return w.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
