// Package logging configures the process wide logrus logger.
package logging

import (
	"io"
	"os"
	"path/filepath"

	nested "github.com/antonfisher/nested-logrus-formatter"
	log "github.com/sirupsen/logrus"
)

// Options controls logger setup
type Options struct {
	Level   string // logrus level name, info when empty or invalid
	File    string // optional log file, appended to
	NoColor bool
}

// Setup installs the nested formatter, the level and the optional log file.
// The returned closer releases the log file and is never nil.
func Setup(opts Options) (io.Closer, error) {
	log.SetFormatter(&nested.Formatter{
		HideKeys:        true,
		FieldsOrder:     []string{"module", "function"},
		TimestampFormat: "2006-01-02 15:04:05",
		NoColors:        opts.NoColor || opts.File != "",
	})

	level, err := log.ParseLevel(opts.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if opts.File == "" {
		log.SetOutput(os.Stderr)
		return nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
		log.SetOutput(os.Stderr)
		return nopCloser{}, err
	}
	f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.SetOutput(os.Stderr)
		return nopCloser{}, err
	}
	log.SetOutput(io.MultiWriter(os.Stderr, f))
	return f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
