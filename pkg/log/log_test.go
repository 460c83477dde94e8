package log

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestToLogLevel(t *testing.T) {
	cases := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"bogus", zerolog.InfoLevel},
	}

	for _, c := range cases {
		if got := ToLogLevel(c.in); got != c.want {
			t.Errorf("ToLogLevel(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestGetLoggerWithName(t *testing.T) {
	logger := GetLoggerWithName("test")
	if logger == nil {
		t.Fatal("GetLoggerWithName returned nil")
	}

	// With must return a usable child logger.
	child := logger.With(ModelNameKey, "Lasso", FeaturesKey, 10)
	if child == nil {
		t.Fatal("With returned nil")
	}
	child.Debug("child logger works", IterationKey, 1)
}

func TestLogErrorNilSafe(t *testing.T) {
	// Must not panic.
	LogError(nil, "nothing happened")
}
