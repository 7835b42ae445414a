package logger

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// Init configures the global logrus logger. Level comes from LOG_LEVEL
// and defaults to info; calling Init again overwrites earlier settings.
func Init() {
	log.SetOutput(os.Stdout)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	lvl, err := log.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

// L returns the global logger for convenience.
func L() *log.Logger { return log.StandardLogger() }
