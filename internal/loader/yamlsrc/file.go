package yamlsrc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yndnr/myke/internal/core/domain"
)

// File is a parsed YAML Mykefile.
type File struct {
	Imports StringList `yaml:"imports"`
	Modules StringList `yaml:"modules"`
	Tasks   []TaskSpec `yaml:"tasks"`
}

// TaskSpec declares one task.
type TaskSpec struct {
	Name          string            `yaml:"name"`
	Description   string            `yaml:"description"`
	Help          string            `yaml:"help"`
	Parents       StringList        `yaml:"parents"`
	Root          bool              `yaml:"root"`
	Params        []domain.Param    `yaml:"params"`
	Shell         string            `yaml:"shell"`
	Cmd           StringList        `yaml:"cmd"`
	Cwd           string            `yaml:"cwd"`
	Env           map[string]string `yaml:"env"`
	EnvUpdate     map[string]string `yaml:"env_update"`
	EnvUnset      StringList        `yaml:"env_unset"`
	Timeout       string            `yaml:"timeout"`
	Check         *bool             `yaml:"check"`
	Echo          *bool             `yaml:"echo"`
	CaptureOutput *bool             `yaml:"capture_output"`
	Executable    string            `yaml:"executable"`
}

// StringList decodes from a scalar or a sequence of scalars.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Value == "" {
			*l = nil
			return nil
		}
		*l = StringList{node.Value}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	return fmt.Errorf("line %d: expected a string or list of strings", node.Line)
}

// Parse decodes a YAML Mykefile. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	f, err := decode(data)
	if err != nil {
		return nil, domain.ErrLoadFailed.WithCause(err)
	}
	return f, nil
}

// ParseFile reads and decodes path.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := decode(data)
	if err != nil {
		return nil, domain.ErrLoadFailed.WithDetails(path).WithCause(err)
	}
	return f, nil
}

func decode(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &f, nil
}

// ShellOptions builds the run options for the task.
func (s *TaskSpec) ShellOptions() (domain.ShellOptions, error) {
	opts := domain.DefaultShellOptions()
	if s.Check != nil {
		opts.Check = *s.Check
	}
	if s.Echo != nil {
		opts.Echo = *s.Echo
	}
	if s.CaptureOutput != nil {
		opts.CaptureOutput = *s.CaptureOutput
	}
	opts.Cwd = s.Cwd
	opts.Env = s.Env
	opts.EnvUpdate = s.EnvUpdate
	opts.EnvUnset = s.EnvUnset
	opts.Executable = s.Executable

	if t := strings.TrimSpace(s.Timeout); t != "" {
		d, err := parseTimeout(t)
		if err != nil {
			return opts, domain.ErrInvalidTask.WithDetailsf("task %q timeout %q", s.Name, s.Timeout)
		}
		opts.Timeout = d
	}
	return opts, nil
}

// parseTimeout accepts a Go duration or a number of seconds.
func parseTimeout(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return time.Duration(secs * float64(time.Second)), nil
}
