package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

type Config struct {
	Level   string
	Format  string
	Service string
}

// New 建立 logger，extra 會與標準輸出一起寫入 (例如 KafkaWriter)
func New(cfg Config, out io.Writer, extra ...io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stdout
	}
	if strings.EqualFold(cfg.Format, FormatConsole) {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	writers := append([]io.Writer{out}, extra...)
	var w io.Writer = out
	if len(writers) > 1 {
		w = zerolog.MultiLevelWriter(writers...)
	}

	l := zerolog.New(w).Level(ParseLevel(cfg.Level)).With().Timestamp()
	if cfg.Service != "" {
		l = l.Str("service", cfg.Service)
	}
	return l.Logger()
}

// Setup 設定全域 logger，之後 log.Info() 等都會使用這個設定
func Setup(cfg Config, extra ...io.Writer) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))
	log.Logger = New(cfg, os.Stdout, extra...)
}

// ParseLevel 無法解析時使用 info
func ParseLevel(level string) zerolog.Level {
	if level == "" {
		return zerolog.InfoLevel
	}
	l, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.InfoLevel
	}
	return l
}
