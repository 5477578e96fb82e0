package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds a structured logger: console output in development, JSON otherwise.
func New(appName, env, level string) zerolog.Logger {
	var out io.Writer = os.Stdout
	if env != "production" {
		out = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(out).Level(lvl).With().
		Timestamp().
		Str("app", appName).
		Str("env", env).
		Logger()
}

// BotLogger adapts zerolog to the Println/Printf logger the Telegram client expects.
type BotLogger struct {
	logger zerolog.Logger
}

func NewBotLogger(logger zerolog.Logger) *BotLogger {
	return &BotLogger{logger: logger.With().Str("component", "telegram_api").Logger()}
}

func (l *BotLogger) Println(v ...interface{}) {
	l.logger.Debug().Msg(fmt.Sprint(v...))
}

func (l *BotLogger) Printf(format string, v ...interface{}) {
	l.logger.Debug().Msgf(format, v...)
}
