package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format Format
		wide   bool
	}{
		{FormatJSON, false},
		{FormatYAML, false},
		{FormatTable, false},
		{FormatTable, true},
		{"unknown", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			f := NewFormatter(tt.format, tt.wide)
			switch tt.format {
			case FormatJSON:
				if _, ok := f.(*JSONFormatter); !ok {
					t.Error("expected JSONFormatter")
				}
			case FormatYAML:
				if _, ok := f.(*YAMLFormatter); !ok {
					t.Error("expected YAMLFormatter")
				}
			default:
				tf, ok := f.(*TableFormatter)
				if !ok {
					t.Fatal("expected TableFormatter")
				}
				if tf.Wide != tt.wide {
					t.Errorf("Wide = %v, want %v", tf.Wide, tt.wide)
				}
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTable, false},
		{"TABLE", FormatTable, false},
		{"json", FormatJSON, false},
		{" yaml ", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestJSONFormatter_Format(t *testing.T) {
	f := &JSONFormatter{}

	var buf bytes.Buffer
	if err := f.Format(&buf, map[string]int{"key": 123}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"key": 123`) {
		t.Errorf("Format() = %q", buf.String())
	}

	buf.Reset()
	if err := f.Format(&buf, nil); err != nil {
		t.Fatalf("Format(nil) error = %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "null" {
		t.Errorf("Format(nil) = %q, want null", got)
	}

	buf.Reset()
	if err := f.Format(&buf, TaskRow{Task: "ci", Description: "lint && test <fast>"}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"lint && test <fast>"`) {
		t.Errorf("Format() escaped HTML: %q", buf.String())
	}
}

func TestYAMLFormatter_Format(t *testing.T) {
	f := &YAMLFormatter{}
	data := []map[string]any{{"task": "build", "params": []string{"tag"}}}

	var buf bytes.Buffer
	if err := f.Format(&buf, data); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	got := buf.String()
	for _, want := range []string{"- params:", "- tag", "task: build"} {
		if !strings.Contains(got, want) {
			t.Errorf("Format() = %q, missing %q", got, want)
		}
	}
}

func TestPrettyFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	data := map[string]any{"tags": []any{"a", "b"}, "name": "demo && co"}
	if err := (&PrettyFormatter{}).Format(&buf, data); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `"tags": ["a", "b"]`) {
		t.Errorf("Format() = %q, want the short array on one line", out)
	}
	if !strings.Contains(out, "demo && co") {
		t.Errorf("Format() = %q, want unescaped text", out)
	}
	if strings.Index(out, `"name"`) > strings.Index(out, `"tags"`) {
		t.Errorf("Format() = %q, want sorted keys", out)
	}

	buf.Reset()
	if err := (&PrettyFormatter{}).Format(&buf, "Hello World."); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(buf.String()); got != `"Hello World."` {
		t.Errorf("Format(string) = %q", got)
	}
}
