package main

import (
	"github.com/spf13/cobra"

	"github.com/novelforge/novelforge/internal/jobstore"
	"github.com/novelforge/novelforge/internal/pdf"
	"github.com/novelforge/novelforge/internal/runner"
	"github.com/novelforge/novelforge/internal/scrape"
)

var scrapeCmd = &cobra.Command{
	Use:    "scrape",
	Hidden: true,
	Short:  "Run a single scrape job (spawned by serve)",
	Long: `Run one scrape job to completion.

Job parameters are read from the environment (JOB_ID, CHAT_ID,
NOVEL_TITLE, BASE_URL, START_CHAPTER, END_CHAPTER). The bot spawns this
command once per accepted job; it fetches the requested chapters,
renders batched PDFs into the outputs directory, and keeps the job
record current as it goes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := newLogger()

		params, err := runner.ParamsFromEnv()
		if err != nil {
			return err
		}

		h, err := setupHome()
		if err != nil {
			return err
		}
		cm, err := loadConfig(h)
		if err != nil {
			return err
		}
		cfg := cm.Get()

		fetcher := scrape.NewFetcher(scrape.FetcherConfig{
			BaseURL:    params.BaseURL,
			UserAgent:  cfg.Source.UserAgent,
			Referer:    cfg.Source.Referer,
			Timeout:    cfg.Source.FetchTimeout(),
			MaxRetries: cfg.Source.MaxRetries,
			Logger:     logger,
		})
		builder := pdf.NewBuilder(h.OutputsPath(), h.BackupsPath(), logger)

		r := runner.New(runner.Config{
			Params:           params,
			Store:            jobstore.NewStore(h.JobsPath()),
			Fetcher:          fetcher,
			Builder:          builder,
			ChaptersPerBatch: cfg.Jobs.ChaptersPerBatch,
			ChapterDelay:     cfg.Source.ChapterDelay(),
			Logger:           logger,
		})
		return r.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
}
