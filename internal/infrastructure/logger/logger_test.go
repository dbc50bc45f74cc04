package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"WARN", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"unknown", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Fatalf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewLoggerFormatsOutput(t *testing.T) {
	tests := []struct {
		name       string
		format     string
		assertions func(t *testing.T, output string)
	}{
		{
			name:   "json format is one object per line",
			format: "json",
			assertions: func(t *testing.T, output string) {
				var entry map[string]any
				if err := json.Unmarshal([]byte(output), &entry); err != nil {
					t.Fatalf("expected JSON output, got %q", output)
				}
				if entry["message"] != "hello" || entry["account_id"] != "1001" {
					t.Fatalf("unexpected fields: %v", entry)
				}
			},
		},
		{
			name:   "console format is human readable",
			format: "console",
			assertions: func(t *testing.T, output string) {
				if !strings.Contains(output, "hello") || !strings.Contains(output, "account_id=1001") {
					t.Fatalf("expected console output, got %q", output)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := New(Config{Level: "info", Format: tt.format, Output: &buf})
			l.Info().Str("account_id", "1001").Msg("hello")
			tt.assertions(t, strings.TrimSpace(buf.String()))
		})
	}
}

func TestNewLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "warn", Format: "json", Output: &buf})

	l.Info().Msg("quiet")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered, got %q", buf.String())
	}

	l.Warn().Msg("loud")
	if !strings.Contains(buf.String(), "loud") {
		t.Fatalf("expected warn output, got %q", buf.String())
	}
}

func TestWithFieldsAndFromContext(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: "info", Format: "json", Output: &buf})

	if got := FromContext(context.Background(), base); got.GetLevel() != base.GetLevel() {
		t.Fatalf("expected fallback logger")
	}

	ctx := WithFields(context.Background(), base, map[string]string{"request_id": "req-1", "empty": ""})
	l := FromContext(ctx, zerolog.Nop())
	l.Info().Msg("scoped")

	out := buf.String()
	if !strings.Contains(out, `"request_id":"req-1"`) {
		t.Fatalf("expected request_id field, got %q", out)
	}
	if strings.Contains(out, `"empty"`) {
		t.Fatalf("empty fields must be skipped, got %q", out)
	}
}
