package config_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/bonniernews/sentry-sync/pkg/cli/config"
	"github.com/m-mizutani/gt"
)

func TestLogger_Configure_InvalidLevel(t *testing.T) {
	for _, level := range []string{"", "trace", "verbose", "warning"} {
		t.Run("level "+level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := &config.Logger{Level: level, Writer: &buf}

			result, err := logger.Configure()
			gt.Error(t, err)
			gt.String(t, err.Error()).Contains("invalid log level")
			gt.Value(t, result).Nil()
			gt.Number(t, buf.Len()).Equal(0)
		})
	}
}

func TestLogger_Configure_LevelFilter(t *testing.T) {
	tests := []struct {
		level string
		want  []string
	}{
		{level: "debug", want: []string{"DEBUG", "INFO", "WARN", "ERROR"}},
		{level: "INFO", want: []string{"INFO", "WARN", "ERROR"}},
		{level: "Warn", want: []string{"WARN", "ERROR"}},
		{level: "error", want: []string{"ERROR"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := &config.Logger{Level: tt.level, JSON: true, Writer: &buf}

			result, err := logger.Configure()
			gt.NoError(t, err)

			result.Debug("debug message")
			result.Info("info message")
			result.Warn("warn message")
			result.Error("error message")

			var levels []string
			for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
				var record map[string]any
				gt.NoError(t, json.Unmarshal([]byte(line), &record))
				levels = append(levels, record["level"].(string))
			}
			gt.Value(t, levels).Equal(tt.want)
		})
	}
}

func TestLogger_Configure_ConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := &config.Logger{Level: "info", Writer: &buf}

	result, err := logger.Configure()
	gt.NoError(t, err)

	result.Info("uploading artifacts", "count", 3)

	output := buf.String()
	gt.String(t, output).Contains("uploading artifacts")
	gt.String(t, output).Contains("count")
	gt.False(t, json.Valid([]byte(strings.TrimSpace(output))))
	// not a terminal, so no ANSI escapes
	gt.False(t, strings.Contains(output, "\x1b["))
}

func TestLogger_Configure_Redaction(t *testing.T) {
	type request struct {
		Organization string
		Token        string
		DSN          string `masq:"secret"`
	}
	req := request{
		Organization: "acme",
		Token:        "token-by-field-name",
		DSN:          "dsn-by-secret-tag",
	}

	for _, jsonFormat := range []bool{true, false} {
		var buf bytes.Buffer
		logger := &config.Logger{Level: "info", JSON: jsonFormat, Writer: &buf}

		result, err := logger.Configure()
		gt.NoError(t, err)

		result.Info("release request", "request", req)

		output := buf.String()
		gt.String(t, output).Contains("acme")
		gt.False(t, strings.Contains(output, "token-by-field-name"))
		gt.False(t, strings.Contains(output, "dsn-by-secret-tag"))
	}
}

func TestLogger_Flags(t *testing.T) {
	logger := &config.Logger{}

	var names []string
	for _, flag := range logger.Flags() {
		names = append(names, flag.Names()[0])
	}
	gt.Value(t, names).Equal([]string{"log-level", "log-json"})
}
