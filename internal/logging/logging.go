package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"chat-casino/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	sinkMu sync.RWMutex
	sink   io.Writer = os.Stdout
)

// Init configures the global zerolog logger and the shared sink used by the
// HTTP access log.
func Init(cfg config.LogConfig) {
	level := zerolog.InfoLevel
	if v := strings.TrimSpace(cfg.Level); v != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = parsed
		}
	}

	var out io.Writer = os.Stdout
	if cfg.File != "" {
		fw, err := newSizeLimitedWriter(cfg.File, cfg.MaxMB)
		if err == nil {
			out = io.MultiWriter(os.Stdout, fw)
		} else {
			log.Error().Err(err).Str("path", cfg.File).Msg("open log file failed; logging to stdout only")
		}
	}

	sinkMu.Lock()
	sink = out
	sinkMu.Unlock()

	var console io.Writer = out
	if cfg.Pretty {
		console = zerolog.ConsoleWriter{Out: out}
	}

	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(console).With().Timestamp().Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger
}

// Writer returns the raw sink for secondary loggers.
func Writer() io.Writer {
	sinkMu.RLock()
	defer sinkMu.RUnlock()
	return sink
}
