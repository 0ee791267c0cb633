package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "info", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	logger.Info("tape deleted", "barcode", "VTL001")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if entry["msg"] != "tape deleted" || entry["barcode"] != "VTL001" {
		t.Errorf("unexpected log entry: %v", entry)
	}
}

func TestNewTextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "warn", Format: "text", Writer: &buf})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	logger.Info("suppressed")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "suppressed") {
		t.Error("info line should be below the warn threshold")
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("warn line missing from output: %q", out)
	}
}

func TestNewDefaultsToTextAndInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Writer: &buf})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("unexpected default-level output: %q", out)
	}
}

func TestNewRejectsInvalidSettings(t *testing.T) {
	if _, err := New(Config{Level: "loud"}); err == nil {
		t.Error("expected error for invalid level")
	}
	if _, err := New(Config{Format: "xml"}); err == nil {
		t.Error("expected error for invalid format")
	}
}
