package main

import (
	"os"

	logger "github.com/sirupsen/logrus"
)

// UTCFormatter prints every entry with a UTC timestamp
type UTCFormatter struct {
	logger.Formatter
}

func (u UTCFormatter) Format(e *logger.Entry) ([]byte, error) {
	e.Time = e.Time.UTC()
	return u.Formatter.Format(e)
}

// builds the run logger at the given level, e.g. "INFO"
func newLogger(level, timeFormat string) (*logger.Logger, error) {
	lvl, err := logger.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	l := logger.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(lvl)
	customFormatter := new(logger.TextFormatter)
	customFormatter.TimestampFormat = timeFormat
	customFormatter.FullTimestamp = true
	l.SetFormatter(UTCFormatter{customFormatter})
	return l, nil
}
