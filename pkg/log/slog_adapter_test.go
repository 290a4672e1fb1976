package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
)

func logJSON(t *testing.T, level slog.Level, event Event) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: level})
	NewSlogAdapter(slog.New(handler)).Log(event)

	if buf.Len() == 0 {
		return nil
	}
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	return entry
}

func TestSlogAdapterLogsFieldEvent(t *testing.T) {
	entry := logJSON(t, slog.LevelDebug, Event{
		Kind:     KindFieldAdded,
		Layer:    "chip_regs",
		Block:    "gpioa",
		Register: "odr",
		Field:    "gpioa_odr",
	})
	if entry == nil {
		t.Fatal("no output produced")
	}

	want := map[string]string{
		"level":    "DEBUG",
		"msg":      "regtokens",
		"kind":     "FIELD_ADDED",
		"layer":    "chip_regs",
		"block":    "gpioa",
		"register": "odr",
		"field":    "gpioa_odr",
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("%s: got %v, want %q", k, entry[k], v)
		}
	}
	if _, ok := entry["file"]; ok {
		t.Error("empty file should be omitted")
	}
}

func TestSlogAdapterLogsStructCount(t *testing.T) {
	entry := logJSON(t, slog.LevelDebug, Event{Kind: KindStructEmitted, Layer: "chip_regs", Count: 3})
	if entry == nil {
		t.Fatal("no output produced")
	}
	// JSON numbers decode as float64
	if entry["fields"] != float64(3) {
		t.Errorf("fields: got %v, want 3", entry["fields"])
	}
}

func TestSlogAdapterFileWrittenAtInfo(t *testing.T) {
	entry := logJSON(t, slog.LevelInfo, Event{Kind: KindFileWritten, File: "gen/gpioa/gpioa_gen.go", Count: 120})
	if entry == nil {
		t.Fatal("file writes should be logged at info level")
	}
	if entry["bytes"] != float64(120) {
		t.Errorf("bytes: got %v, want 120", entry["bytes"])
	}

	if got := logJSON(t, slog.LevelInfo, Event{Kind: KindFieldAdded}); got != nil {
		t.Errorf("field events should be debug only, got %v", got)
	}
}

func TestSlogAdapterRunFailedAtError(t *testing.T) {
	entry := logJSON(t, slog.LevelError, Event{Kind: KindRunFailed, Err: errors.New("boom")})
	if entry == nil {
		t.Fatal("failed runs should be logged at error level")
	}
	if entry["error"] != "boom" {
		t.Errorf("error: got %v, want boom", entry["error"])
	}
}

func TestSlogAdapterFileRemovedAtInfo(t *testing.T) {
	entry := logJSON(t, slog.LevelInfo, Event{Kind: KindFileRemoved, File: "gen/uart/uart_gen.go"})
	if entry == nil {
		t.Fatal("file removals should be logged at info level")
	}
	if entry["kind"] != "FILE_REMOVED" {
		t.Errorf("kind: got %v, want FILE_REMOVED", entry["kind"])
	}
}
