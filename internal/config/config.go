package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Core
	BotToken      string `env:"BOT_TOKEN,required"`
	DatabaseURL   string `env:"DATABASE_URL,required"`
	OpenRouterKey string `env:"OPENROUTER_API_KEY,required"`

	// Summarization
	Model          string `env:"SUMMARY_MODEL" envDefault:"google/gemini-2.0-flash-001"`
	MediaBudget    int    `env:"MEDIA_BUDGET" envDefault:"15"`
	ArchiveDir     string `env:"ARCHIVE_DIR" envDefault:"/var/lib/chatdigest/archives"`
	MaxArchiveMB   int64  `env:"MAX_ARCHIVE_MB" envDefault:"50"`

	// External media tools
	FFmpegPath  string `env:"FFMPEG_PATH" envDefault:"ffmpeg"`
	FFprobePath string `env:"FFPROBE_PATH" envDefault:"ffprobe"`

	// Admin
	AdminIDs []int64 `env:"ADMIN_IDS" envSeparator:","`

	// Bot behavior
	DropPendingUpdates bool `env:"BOT_DROP_PENDING_UPDATES" envDefault:"false"`

	// Telegram ops logging
	LogTelegramChatID int64 `env:"LOG_TELEGRAM_CHAT_ID"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (c *Config) IsAdmin(telegramID int64) bool {
	for _, id := range c.AdminIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}

func (c *Config) MaxArchiveBytes() int64 {
	return c.MaxArchiveMB * 1024 * 1024
}
