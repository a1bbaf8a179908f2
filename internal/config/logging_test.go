package config

import (
	"os"
	"testing"

	"github.com/rs/zerolog"
)

func TestGetLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		envLevel string
		want     zerolog.Level
	}{
		{"Debug level", "DEBUG", zerolog.DebugLevel},
		{"Info level", "INFO", zerolog.InfoLevel},
		{"Warn level", "WARN", zerolog.WarnLevel},
		{"Error level", "ERROR", zerolog.ErrorLevel},
		{"Trace level", "TRACE", zerolog.TraceLevel},
		{"Empty defaults to Info", "", zerolog.InfoLevel},
		{"Invalid defaults to Info", "INVALID", zerolog.InfoLevel},
		{"Case insensitive", "debug", zerolog.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Setenv("LOG_LEVEL", tt.envLevel)
			defer os.Unsetenv("LOG_LEVEL")

			if got := GetLogLevel(); got != tt.want {
				t.Errorf("GetLogLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSetBackendBaseURL(t *testing.T) {
	original := GetBackendBaseURL()

	restore := SetBackendBaseURL("http://example.test/api/v1")
	if got := GetBackendBaseURL(); got != "http://example.test/api/v1" {
		t.Errorf("GetBackendBaseURL() = %q after override", got)
	}

	restore()
	if got := GetBackendBaseURL(); got != original {
		t.Errorf("GetBackendBaseURL() = %q, want restored %q", got, original)
	}
}
