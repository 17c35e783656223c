package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"ERROR", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"nonsense", zerolog.InfoLevel},
	}

	for _, tc := range cases {
		if got := ParseLevel(tc.in); got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestSetup_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Config{Level: "debug", Output: &buf})

	logger.Info().Str("provider", "marketstack").Msg("request complete")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["provider"] != "marketstack" {
		t.Errorf("provider field = %v", entry["provider"])
	}
	if entry["message"] != "request complete" {
		t.Errorf("message field = %v", entry["message"])
	}
	if _, ok := entry["time"]; !ok {
		t.Error("Timestamp field missing")
	}
}

func TestSetup_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Config{Level: "warn", Output: &buf})

	logger.Info().Msg("filtered")
	logger.Warn().Msg("kept")

	out := buf.String()
	if strings.Contains(out, "filtered") {
		t.Error("Info entry should be filtered at warn level")
	}
	if !strings.Contains(out, "kept") {
		t.Error("Warn entry should pass at warn level")
	}
}

func TestNewLogger_ComponentField(t *testing.T) {
	var buf bytes.Buffer
	Setup(Config{Level: "debug", Output: &buf})

	logger := NewLogger("cache")
	logger.Info().Msg("hit")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Output is not JSON: %v", err)
	}
	if entry["component"] != "cache" {
		t.Errorf("component field = %v", entry["component"])
	}
}
