package repl

import (
	"reflect"
	"testing"
)

func TestNewCompleter(t *testing.T) {
	c := NewCompleter("docker/build", "docker/push", "test", "test")
	want := []string{"docker build", "docker push", "exit", "help", "quit", "test"}
	if !reflect.DeepEqual(c.commands, want) {
		t.Errorf("commands = %v, want %v", c.commands, want)
	}
}

func TestCompleter_Complete(t *testing.T) {
	c := NewCompleter("docker/build", "docker/push", "deploy", "test")

	tests := []struct {
		prefix string
		want   []string
	}{
		{"docker", []string{"docker build", "docker push"}},
		{"docker p", []string{"docker push"}},
		{"de", []string{"deploy"}},
		{"ex", []string{"exit"}},
		{"nonexistent", nil},
	}
	for _, tt := range tests {
		got := c.Complete(tt.prefix)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Complete(%q) = %v, want %v", tt.prefix, got, tt.want)
		}
	}

	if got := c.Complete(""); len(got) != len(c.commands) {
		t.Errorf("Complete(\"\") returned %d items, want %d", len(got), len(c.commands))
	}
}

func TestCompleter_Suggest(t *testing.T) {
	c := NewCompleter("build", "build-image", "deploy", "docker/build", "test")

	tests := []struct {
		name string
		n    int
		want []string
	}{
		{"biuld", 3, []string{"build"}},
		{"buil", 3, []string{"build", "build-image"}},
		{"tset", 3, []string{"test"}},
		{"docker/biuld", 3, []string{"docker build"}},
		{"buil", 1, []string{"build"}},
		{"xyzzy", 3, []string{}},
		{"", 3, nil},
		{"exti", 3, []string{}},
	}
	for _, tt := range tests {
		got := c.Suggest(tt.name, tt.n)
		if len(got) == 0 && len(tt.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Suggest(%q, %d) = %v, want %v", tt.name, tt.n, got, tt.want)
		}
	}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"build", "biuld", 2},
		{"deploy", "deplyo", 2},
	}
	for _, tt := range tests {
		if got := distance(tt.a, tt.b); got != tt.want {
			t.Errorf("distance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
