package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func decode(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("bad log line %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"default config", DefaultConfig(), false},
		{"empty config", Config{}, false},
		{"json", Config{Level: "debug", Format: "json"}, false},
		{"upper case", Config{Level: "INFO", Format: "TEXT"}, false},
		{"bad level", Config{Level: "loud"}, true},
		{"bad format", Config{Format: "xml"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && l == nil {
				t.Fatal("New() returned nil logger")
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"Error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		if err != nil || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", tt.input, got, err, tt.want)
		}
	}
	if _, err := ParseLevel("trace"); err == nil {
		t.Error("ParseLevel(trace) expected error")
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "warn", Format: "json", Output: &buf})
	if err != nil {
		t.Fatal(err)
	}

	l.Debug("d")
	l.Info("i")
	l.Warn("w")
	l.Error("e")

	entries := decode(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2: %s", len(entries), buf.String())
	}
	if entries[0]["msg"] != "w" || entries[1]["level"] != "ERROR" {
		t.Errorf("entries = %v", entries)
	}
}

func TestLogger_LevelsAreIndependent(t *testing.T) {
	var quiet, loud bytes.Buffer
	q, _ := New(Config{Level: "error", Format: "json", Output: &quiet})
	l, _ := New(Config{Level: "debug", Format: "json", Output: &loud})

	q.Info("hidden")
	l.Debug("shown")

	if quiet.Len() != 0 {
		t.Errorf("quiet logger wrote %q", quiet.String())
	}
	if !strings.Contains(loud.String(), "shown") {
		t.Error("debug logger lost its level after a second New()")
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	l, _ := New(Config{Level: "info", Format: "json", Output: &buf})

	l.With("source", "Mykefile").Info("loaded", "tasks", 3)

	entry := decode(t, &buf)[0]
	if entry["source"] != "Mykefile" {
		t.Errorf("source = %v, want Mykefile", entry["source"])
	}
	if entry["tasks"] != float64(3) {
		t.Errorf("tasks = %v, want 3", entry["tasks"])
	}
}

func TestLogger_ContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	l, _ := New(Config{Level: "info", Format: "json", Output: &buf})

	ctx := WithTask(WithRunID(context.Background(), "01RUN"), "docker build")
	l.WithContext(ctx).With("step", 1).Info("running")

	entry := decode(t, &buf)[0]
	if entry["run_id"] != "01RUN" || entry["task"] != "docker build" {
		t.Errorf("entry = %v, want run_id and task", entry)
	}
	if entry["step"] != float64(1) {
		t.Errorf("step = %v", entry["step"])
	}
}

func TestLogger_Redacts(t *testing.T) {
	var buf bytes.Buffer
	l, _ := New(Config{Level: "info", Format: "text", Output: &buf})

	l.Info("fetching module", "token", "abc123")

	out := buf.String()
	if strings.Contains(out, "abc123") {
		t.Errorf("token leaked: %s", out)
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Error("nothing")
	l.With("k", "v").WithContext(context.Background()).Warn("still nothing")
}

func TestDefault(t *testing.T) {
	orig := Default()
	t.Cleanup(func() { SetDefault(orig) })

	var buf bytes.Buffer
	l, _ := New(Config{Level: "info", Output: &buf})
	SetDefault(l)
	SetDefault(nil)

	FromContext(context.Background()).Info("via default")
	if !strings.Contains(buf.String(), "via default") {
		t.Errorf("default logger not used: %q", buf.String())
	}
}
