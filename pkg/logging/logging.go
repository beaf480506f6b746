// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	FormatAuto    = "auto"
	FormatConsole = "console"
	FormatJSON    = "json"
)

type Settings struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	WithCaller bool   `yaml:"with-caller"`
	// Discard drops everything unless File is set. The TUI uses it so log
	// lines never land on the alternate screen.
	Discard bool `yaml:"-"`
}

// Init replaces log.Logger according to s and sets the global level.
func Init(s Settings) error {
	level := zerolog.InfoLevel
	if strings.TrimSpace(s.Level) != "" {
		l, err := zerolog.ParseLevel(strings.ToLower(s.Level))
		if err != nil {
			return errors.Wrapf(err, "invalid log level %q", s.Level)
		}
		level = l
	}
	zerolog.SetGlobalLevel(level)

	w, err := writerFor(s, os.Stderr)
	if err != nil {
		return err
	}
	ctx := zerolog.New(w).With().Timestamp()
	if s.WithCaller {
		ctx = ctx.Caller()
	}
	log.Logger = ctx.Logger()
	return nil
}

func writerFor(s Settings, stderr *os.File) (io.Writer, error) {
	if s.File != "" {
		return &lumberjack.Logger{
			Filename:   s.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}, nil
	}
	if s.Discard {
		return io.Discard, nil
	}
	switch strings.ToLower(s.Format) {
	case "", FormatAuto:
		if isatty.IsTerminal(stderr.Fd()) || isatty.IsCygwinTerminal(stderr.Fd()) {
			return consoleWriter(stderr), nil
		}
		return stderr, nil
	case FormatConsole:
		return consoleWriter(stderr), nil
	case FormatJSON:
		return stderr, nil
	default:
		return nil, errors.Errorf("invalid log format %q", s.Format)
	}
}

func consoleWriter(out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
}
