package main

import (
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/hyperifyio/textextract/internal/app"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// setupLogging points the global logger at stderr (console or JSON) and, when
// a log file is configured, at a size-rotated file as well. The returned
// closer flushes the file writer.
func setupLogging(cfg app.Config, stderr io.Writer) io.Closer {
	level := zerolog.InfoLevel
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	console := stderr
	if !cfg.LogJSON {
		console = zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.RFC3339}
	}
	writers := []io.Writer{console}

	var closer io.Closer = nopCloser{}
	if cfg.LogFile != "" {
		rotated := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		}
		writers = append(writers, rotated)
		closer = rotated
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()
	return closer
}
