package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Storage backend names accepted by STORE_BACKEND.
const (
	BackendFile     = "file"
	BackendGist     = "gist"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// App holds runtime configuration for the bot process.
type App struct {
	Name        string `env:"APP_NAME" envDefault:"exambot"`
	Env         string `env:"APP_ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	MetricsAddr string `env:"METRICS_ADDR"`

	Telegram Telegram
	Storage  Storage
	Extract  Extract
	Quiz     Quiz
}

// Telegram configures the bot API connection and the admin identity.
type Telegram struct {
	Token       string `env:"BOT_TOKEN,notEmpty"`
	AdminID     int64  `env:"ADMIN_ID" envDefault:"0"`
	Debug       bool   `env:"TELEGRAM_DEBUG" envDefault:"false"`
	PollTimeout int    `env:"TELEGRAM_POLL_TIMEOUT" envDefault:"60"`
}

// Storage selects and configures the durable backend for users, answers and questions.
type Storage struct {
	Backend string `env:"STORE_BACKEND" envDefault:"file"`
	Dir     string `env:"STORE_DIR" envDefault:"data"`

	RedisAddr   string `env:"REDIS_ADDR"`
	RedisDB     int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix string `env:"REDIS_PREFIX" envDefault:"exambot:"`

	PostgresURL string `env:"DATABASE_URL"`

	GistID      string `env:"GITHUB_GIST_ID"`
	GithubToken string `env:"GITHUB_TOKEN"`
}

// Extract configures file download and text extraction.
type Extract struct {
	TesseractPath   string        `env:"TESSERACT_PATH" envDefault:"tesseract"`
	OCRLanguage     string        `env:"OCR_LANGUAGE" envDefault:"eng"`
	DownloadTimeout time.Duration `env:"FILE_DOWNLOAD_TIMEOUT" envDefault:"30s"`
}

// Quiz groups gameplay knobs.
type Quiz struct {
	Shuffle         bool `env:"QUIZ_SHUFFLE" envDefault:"false"`
	AnswersPreview  int  `env:"ANSWERS_PREVIEW" envDefault:"20"`
	NotifyQueueSize int  `env:"NOTIFY_QUEUE_SIZE" envDefault:"64"`
}

// Load parses environment variables into App config.
func Load() (*App, error) {
	cfg := &App{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(cfg.Storage.Backend))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that depend on each other.
func (c *App) Validate() error {
	switch c.Storage.Backend {
	case BackendFile:
		if c.Storage.Dir == "" {
			return fmt.Errorf("STORE_DIR must be set for the file backend")
		}
	case BackendGist:
		if c.Storage.GistID == "" || c.Storage.GithubToken == "" {
			return fmt.Errorf("GITHUB_GIST_ID and GITHUB_TOKEN must be set for the gist backend")
		}
	case BackendRedis:
		if c.Storage.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR must be set for the redis backend")
		}
	case BackendPostgres:
		if c.Storage.PostgresURL == "" {
			return fmt.Errorf("DATABASE_URL must be set for the postgres backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Storage.Backend)
	}
	if c.Quiz.AnswersPreview <= 0 {
		return fmt.Errorf("ANSWERS_PREVIEW must be positive, got %d", c.Quiz.AnswersPreview)
	}
	if c.Quiz.NotifyQueueSize <= 0 {
		return fmt.Errorf("NOTIFY_QUEUE_SIZE must be positive, got %d", c.Quiz.NotifyQueueSize)
	}
	return nil
}
