// Package initenv sets logging defaults before any other package initializes.
// Import it with a blank identifier as the first import so that messages logged
// before configuration loads go to stderr at info level, or debug level when
// EMAILREADER_DEBUG_MODE is set the same way the config layer reads it.
package initenv

import (
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const debugModeEnv = "EMAILREADER_DEBUG_MODE"

func init() {
	zerolog.SetGlobalLevel(level(os.Getenv(debugModeEnv)))
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

func level(debugMode string) zerolog.Level {
	if debug, err := strconv.ParseBool(debugMode); err == nil && debug {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}
