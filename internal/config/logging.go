package config

import (
	"strings"

	"github.com/rs/zerolog"
)

// GetLogLevel parses LOG_LEVEL into a zerolog level, defaulting to info
func GetLogLevel() zerolog.Level {
	switch strings.ToUpper(GetEnvOrDefault("LOG_LEVEL", "INFO")) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
