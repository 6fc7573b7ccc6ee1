package service

import (
	"errors"
	"reflect"
	"testing"

	"github.com/yndnr/myke/internal/core/domain"
)

func TestMatch(t *testing.T) {
	task := &domain.Task{Name: "push", Parents: []string{"docker", "image"}}

	tests := []struct {
		patterns []string
		want     bool
	}{
		{nil, true},
		{[]string{"push"}, true},
		{[]string{"p*"}, true},
		{[]string{"docker"}, true},
		{[]string{"docker/*"}, true},
		{[]string{"docker image push"}, true},
		{[]string{"docker/*/push"}, true},
		{[]string{"build", "lint"}, false},
		{[]string{"image"}, false},
		{[]string{""}, false},
	}

	for _, tt := range tests {
		if got := Match(task, tt.patterns); got != tt.want {
			t.Errorf("Match(%q) = %v, want %v", tt.patterns, got, tt.want)
		}
	}
}

func TestRegistry_Filter(t *testing.T) {
	reg, _ := newTestRegistry()
	_, _ = reg.Add("build", noop)
	_, _ = reg.Add("lint", noop)
	_, _ = reg.Add("up", noop, WithParents("docker"))
	_, _ = reg.Add("main", noop, AsRoot())

	filtered, err := reg.Filter([]string{"docker", "b*"})
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	if want := []string{"build", "docker/up"}; !reflect.DeepEqual(filtered.Keys(), want) {
		t.Errorf("Keys() = %v, want %v", filtered.Keys(), want)
	}
	if filtered.Root() == nil {
		t.Error("Filter() should keep the root task")
	}
	if reg.Len() != 4 {
		t.Errorf("original registry changed: Len() = %d", reg.Len())
	}

	if _, err := reg.Filter([]string{"[bad"}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("Filter(bad pattern) error = %v, want ErrInvalidArgument", err)
	}
}
