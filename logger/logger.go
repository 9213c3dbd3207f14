// Package logger builds the logrus logger shared by the machine layers.
package logger

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a logger at level writing to stdout, or appending to the
// file at path when path is not empty.
func New(path, level string) (*logrus.Logger, error) {
	l := logrus.New()
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	l.SetLevel(lvl)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if len(path) == 0 {
		l.SetOutput(os.Stdout)
		return l, nil
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0666)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	l.SetOutput(f)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	l.WithField("path", path).Info("logging to file")
	return l, nil
}
