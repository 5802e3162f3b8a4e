package driver

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger returns the structured logger threaded through the driver, CLI,
// and REPL. The core packages (symbol through grammar/ll) never log; every
// field they'd want to report instead travels home in an *error.SpecError.
func NewLogger(verbose bool) *logrus.Logger {
	log := logrus.New()
	log.Out = os.Stderr
	log.Formatter = &logrus.TextFormatter{
		FullTimestamp: true,
	}
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
	return log
}
