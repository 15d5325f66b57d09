package logger

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestLevelByEnv(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter("prod", &buf).Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug must be off outside dev: %s", buf.String())
	}

	NewWithWriter("dev", &buf).Debug("shown", "prefix", "CI")
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected json line: %v", err)
	}
	if entry["msg"] != "shown" || entry["prefix"] != "CI" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}
