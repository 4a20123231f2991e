package config

import (
	"time"

	"github.com/novelforge/novelforge/internal/novel"
)

// Config holds novelforge configuration.
// Stored at: {home}/config.yaml
type Config struct {
	Telegram TelegramCfg `mapstructure:"telegram" yaml:"telegram"`
	Source   SourceCfg   `mapstructure:"source" yaml:"source"`
	Jobs     JobsCfg     `mapstructure:"jobs" yaml:"jobs"`
	Delivery DeliveryCfg `mapstructure:"delivery" yaml:"delivery"`
	Novels   []NovelCfg  `mapstructure:"novels" yaml:"novels"`
}

// TelegramCfg configures the Telegram Bot API surface.
type TelegramCfg struct {
	BotToken string `mapstructure:"bot_token" yaml:"bot_token"` // Bot token (supports ${ENV_VAR} syntax)
	APIBase  string `mapstructure:"api_base" yaml:"api_base"`   // API base URL, overridable for tests
}

// SourceCfg configures chapter fetching from the novel site.
type SourceCfg struct {
	BaseSite            string `mapstructure:"base_site" yaml:"base_site"`                           // Site root for the popular-novels listing
	UserAgent           string `mapstructure:"user_agent" yaml:"user_agent"`                         // Sent with every chapter request
	Referer             string `mapstructure:"referer" yaml:"referer"`                               // Sent with every chapter request
	FetchTimeoutSeconds int    `mapstructure:"fetch_timeout_seconds" yaml:"fetch_timeout_seconds"`   // Per-request HTTP timeout
	MaxRetries          int    `mapstructure:"max_retries" yaml:"max_retries"`                       // Retries after the first attempt
	ChapterDelaySeconds int    `mapstructure:"chapter_delay_seconds" yaml:"chapter_delay_seconds"`   // Pause between chapters (rate control)
}

// JobsCfg configures scrape job behavior.
type JobsCfg struct {
	ChaptersPerBatch int `mapstructure:"chapters_per_batch" yaml:"chapters_per_batch"` // Chapters per output document
}

// DeliveryCfg configures the output watcher and document uploads.
type DeliveryCfg struct {
	PollIntervalSeconds   int `mapstructure:"poll_interval_seconds" yaml:"poll_interval_seconds"`     // Output directory poll interval
	UploadAttempts        int `mapstructure:"upload_attempts" yaml:"upload_attempts"`                 // Upload tries per poll cycle
	RetryDelaySeconds     int `mapstructure:"retry_delay_seconds" yaml:"retry_delay_seconds"`         // Pause between upload tries
	ConnectTimeoutSeconds int `mapstructure:"connect_timeout_seconds" yaml:"connect_timeout_seconds"` // Upload connection timeout
	ReadTimeoutSeconds    int `mapstructure:"read_timeout_seconds" yaml:"read_timeout_seconds"`       // Upload response timeout
}

// NovelCfg configures a custom novel offered in addition to the popular listing.
type NovelCfg struct {
	Title         string `mapstructure:"title" yaml:"title"`
	ChapterURL    string `mapstructure:"chapter_url" yaml:"chapter_url"`       // Chapter URL prefix; chapter number is appended
	TotalChapters int    `mapstructure:"total_chapters" yaml:"total_chapters"` // 0 means unknown
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Telegram: TelegramCfg{
			BotToken: "${NOVELFORGE_BOT_TOKEN}",
			APIBase:  "https://api.telegram.org",
		},
		Source: SourceCfg{
			BaseSite:            "https://freewebnovel.com",
			UserAgent:           "Mozilla/5.0 (X11; Linux x86_64) Chrome/120 Safari/537.36",
			Referer:             "https://www.freewebnovel.com/",
			FetchTimeoutSeconds: 45,
			MaxRetries:          2,
			ChapterDelaySeconds: 2,
		},
		Jobs: JobsCfg{
			ChaptersPerBatch: 50,
		},
		Delivery: DeliveryCfg{
			PollIntervalSeconds:   5,
			UploadAttempts:        3,
			RetryDelaySeconds:     8,
			ConnectTimeoutSeconds: 10,
			ReadTimeoutSeconds:    180,
		},
		Novels: []NovelCfg{
			{
				Title:      "My Werewolf System",
				ChapterURL: "https://freewebnovel.com/novel/my-werewolf-system-novel/chapter-",
			},
		},
	}
}

// FetchTimeout returns the chapter fetch timeout as a duration.
func (c *SourceCfg) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// ChapterDelay returns the inter-chapter pause as a duration.
func (c *SourceCfg) ChapterDelay() time.Duration {
	return time.Duration(c.ChapterDelaySeconds) * time.Second
}

// PollInterval returns the watcher poll interval as a duration.
func (c *DeliveryCfg) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// RetryDelay returns the pause between upload tries as a duration.
func (c *DeliveryCfg) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySeconds) * time.Second
}

// CustomNovels converts the configured novel entries to catalog novels.
func (c *Config) CustomNovels() []novel.Novel {
	novels := make([]novel.Novel, 0, len(c.Novels))
	for _, n := range c.Novels {
		entry := novel.Novel{
			Title:      n.Title,
			ChapterURL: n.ChapterURL,
		}
		if n.TotalChapters > 0 {
			total := n.TotalChapters
			entry.TotalChapters = &total
		}
		novels = append(novels, entry)
	}
	return novels
}
