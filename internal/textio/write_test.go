package textio

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yndnr/myke/internal/core/domain"
)

func TestWriteText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "notes.txt")

	if err := WriteText(path, "one", WriteOptions{}); err != nil {
		t.Fatalf("WriteText(new) error = %v", err)
	}
	if err := WriteText(path, "two", WriteOptions{}); !errors.Is(err, domain.ErrFileExists) {
		t.Errorf("WriteText(existing) error = %v, want ErrFileExists", err)
	}
	if err := WriteText(path, "\nthree", WriteOptions{Append: true}); err != nil {
		t.Fatalf("WriteText(append) error = %v", err)
	}
	if got, _ := os.ReadFile(path); string(got) != "one\nthree" {
		t.Errorf("after append = %q", got)
	}
	if err := WriteText(path, "four", WriteOptions{Overwrite: true}); err != nil {
		t.Fatalf("WriteText(overwrite) error = %v", err)
	}
	if got, _ := os.ReadFile(path); string(got) != "four" {
		t.Errorf("after overwrite = %q", got)
	}
}

func TestWriteLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list")
	if err := WriteLines(path, []string{"a", "b", "c"}, WriteOptions{}); err != nil {
		t.Fatalf("WriteLines() error = %v", err)
	}
	lines, err := ReadLines(path)
	if err != nil || strings.Join(lines, ",") != "a,b,c" {
		t.Errorf("ReadLines() = %v, %v", lines, err)
	}
}

func TestSetJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "package.json")

	if err := SetJSON(path, "version", "1.0.0"); err != nil {
		t.Fatalf("SetJSON(new file) error = %v", err)
	}
	if err := SetJSON(path, "scripts.test", "go test ./..."); err != nil {
		t.Fatalf("SetJSON(nested) error = %v", err)
	}

	got, err := QueryJSON(path, "scripts.test")
	if err != nil || got != "go test ./..." {
		t.Errorf("scripts.test = %v, %v", got, err)
	}
	if got, _ := QueryJSON(path, "version"); got != "1.0.0" {
		t.Errorf("version = %v", got)
	}

	if err := DeleteJSON(path, "version"); err != nil {
		t.Fatalf("DeleteJSON() error = %v", err)
	}
	if got, _ := QueryJSON(path, "version"); got != nil {
		t.Errorf("version after delete = %v", got)
	}
}

func TestWriteMykefile(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteMykefile(dir, WriteOptions{})
	if err != nil {
		t.Fatalf("WriteMykefile() error = %v", err)
	}
	if path != filepath.Join(dir, "Mykefile") {
		t.Errorf("path = %q", path)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0o100 == 0 {
		t.Errorf("mode = %v, want owner executable", info.Mode())
	}

	text, _ := ReadText(path)
	if !strings.Contains(text, "myke.task") || !strings.HasPrefix(text, "#!") {
		t.Errorf("unexpected scaffold:\n%s", text)
	}

	if _, err := WriteMykefile(dir, WriteOptions{}); !errors.Is(err, domain.ErrFileExists) {
		t.Errorf("second WriteMykefile() error = %v, want ErrFileExists", err)
	}
}

func TestMakeExecutable(t *testing.T) {
	path := writeFile(t, "run.sh", "#!/bin/sh\n")
	if err := os.Chmod(path, 0o640); err != nil {
		t.Fatal(err)
	}
	if err := MakeExecutable(path); err != nil {
		t.Fatalf("MakeExecutable() error = %v", err)
	}
	info, _ := os.Stat(path)
	if got := info.Mode().Perm(); got != 0o750 {
		t.Errorf("mode = %o, want 750", got)
	}
}
