package buildinfo

import (
	"runtime"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	info := Get()

	if info.Version == "" {
		t.Error("Version should not be empty")
	}
	if info.Commit == "" {
		t.Error("Commit should not be empty")
	}
	if info.BuildTime == "" {
		t.Error("BuildTime should not be empty")
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q, want %q", info.GoVersion, runtime.Version())
	}
}

func TestString(t *testing.T) {
	info := Get()
	s := String()

	expected := info.Version + " (" + info.Commit + ") built at " + info.BuildTime
	if s != expected {
		t.Errorf("String() = %q, want %q", s, expected)
	}
	if !strings.Contains(s, "built at") {
		t.Errorf("String() = %q, missing 'built at'", s)
	}
}
