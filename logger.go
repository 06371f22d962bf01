package scavenger

import (
	"io"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// NewLogger returns a logger writing to standard output and to the file
// prefix.log. The returned closer closes the log file.
func NewLogger(prefix, level string) (*log.Logger, io.Closer, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Create(prefix + ".log")
	if err != nil {
		return nil, nil, errors.Wrapf(err, "cannot create log file")
	}
	logger := log.New()
	logger.Out = io.MultiWriter(os.Stdout, f)
	logger.Formatter = &log.TextFormatter{FullTimestamp: true, DisableColors: true}
	logger.Level = lvl
	return logger, f, nil
}
