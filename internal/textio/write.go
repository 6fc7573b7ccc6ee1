package textio

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/sjson"

	"github.com/yndnr/myke/internal/core/domain"
)

// WriteOptions controls what happens when the target already exists.
type WriteOptions struct {
	Append    bool
	Overwrite bool
}

// WriteText writes content to path. An existing file is only touched
// when Append or Overwrite is set; otherwise domain.ErrFileExists is
// returned.
func WriteText(path, content string, opts WriteOptions) error {
	_, err := os.Stat(path)
	exists := err == nil
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if exists && !opts.Append && !opts.Overwrite {
		return domain.ErrFileExists.WithDetails(path)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	flag := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if opts.Append {
		flag = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteLines writes lines joined by newlines.
func WriteLines(path string, lines []string, opts WriteOptions) error {
	return WriteText(path, strings.Join(lines, "\n"), opts)
}

// SetJSON sets the value at an sjson path inside the JSON file at path.
// A missing file starts from an empty object.
func SetJSON(path, key string, value any) error {
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		data = []byte("{}")
	case err != nil:
		return err
	}
	out, err := sjson.SetBytesOptions(data, key, value, &sjson.Options{Optimistic: true})
	if err != nil {
		return domain.ErrInvalidDocument.WithCause(err)
	}
	return WriteText(path, string(out), WriteOptions{Overwrite: true})
}

// DeleteJSON removes the value at an sjson path inside the JSON file at path.
func DeleteJSON(path, key string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out, err := sjson.DeleteBytes(data, key)
	if err != nil {
		return domain.ErrInvalidDocument.WithCause(err)
	}
	return WriteText(path, string(out), WriteOptions{Overwrite: true})
}

// MykefileTemplate is the scaffold written by WriteMykefile.
const MykefileTemplate = `#!/usr/bin/env myke
-- Mykefile: tasks for this project.
-- Run "myke" to list them, "myke <task> --help" for parameters.

local myke = require("myke")

myke.task{
  name = "hello",
  help = "Print a greeting.",
  params = {
    { name = "name", default = "world", usage = "who to greet" },
  },
  run = function(args)
    myke.echo.text("Hello, " .. args.name .. "!")
  end,
}

myke.shell{
  name = "status",
  help = "Show the working tree status.",
  script = "git status --short",
}
`

// WriteMykefile writes the Mykefile scaffold to path and marks it
// executable. A directory path gets "Mykefile" appended.
func WriteMykefile(path string, opts WriteOptions) (string, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, "Mykefile")
	}
	if err := WriteText(path, MykefileTemplate, opts); err != nil {
		return "", err
	}
	if err := MakeExecutable(path); err != nil {
		return "", err
	}
	return path, nil
}

// MakeExecutable adds the execute bits matching the file's read bits.
func MakeExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	mode := info.Mode().Perm()
	mode |= (mode & 0o444) >> 2
	return os.Chmod(path, mode)
}
