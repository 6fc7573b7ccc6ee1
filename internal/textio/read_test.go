package textio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/yndnr/myke/internal/core/domain"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadText(t *testing.T) {
	path := writeFile(t, "VERSION", "\n  1.2.3 \n\n")
	got, err := ReadText(path)
	if err != nil {
		t.Fatalf("ReadText() error = %v", err)
	}
	if got != "1.2.3" {
		t.Errorf("ReadText() = %q, want %q", got, "1.2.3")
	}

	if _, err := ReadText(filepath.Join(t.TempDir(), "missing")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadText(missing) error = %v", err)
	}
}

func TestReadLines(t *testing.T) {
	path := writeFile(t, "hosts", "alpha\n\n  beta  \n\t\ngamma\n")
	got, err := ReadLines(path)
	if err != nil {
		t.Fatalf("ReadLines() error = %v", err)
	}
	want := []string{"alpha", "beta", "gamma"}
	if len(got) != len(want) {
		t.Fatalf("ReadLines() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestReadJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"object", `{"name": "myke", "tags": ["a", "b"]}`, nil},
		{"array", `[1, 2, 3]`, domain.ErrInvalidDocument},
		{"broken", `{"name":`, domain.ErrInvalidDocument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ReadJSON(writeFile(t, "doc.json", tt.content))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ReadJSON() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadJSON() error = %v", err)
			}
			if m["name"] != "myke" {
				t.Errorf("name = %v", m["name"])
			}
		})
	}
}

func TestQueryJSON(t *testing.T) {
	path := writeFile(t, "package.json", `{"name":"web","version":"0.4.1","scripts":{"build":"vite build"},"deps":["a","b"]}`)

	tests := []struct {
		query string
		want  any
	}{
		{"version", "0.4.1"},
		{"scripts.build", "vite build"},
		{"deps.#", float64(2)},
		{"missing", nil},
	}
	for _, tt := range tests {
		got, err := QueryJSON(path, tt.query)
		if err != nil {
			t.Fatalf("QueryJSON(%q) error = %v", tt.query, err)
		}
		if got != tt.want {
			t.Errorf("QueryJSON(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}

	bad := writeFile(t, "bad.json", "{nope")
	if _, err := QueryJSON(bad, "a"); !errors.Is(err, domain.ErrInvalidDocument) {
		t.Errorf("QueryJSON(invalid) error = %v", err)
	}
}

func TestReadYAML(t *testing.T) {
	m, err := ReadYAML(writeFile(t, "c.yaml", "image: app\nports:\n  - 80\n  - 443\n"))
	if err != nil {
		t.Fatalf("ReadYAML() error = %v", err)
	}
	if m["image"] != "app" {
		t.Errorf("image = %v", m["image"])
	}
	ports, ok := m["ports"].([]any)
	if !ok || len(ports) != 2 {
		t.Errorf("ports = %#v", m["ports"])
	}

	if _, err := ReadYAML(writeFile(t, "l.yaml", "- a\n- b\n")); !errors.Is(err, domain.ErrInvalidDocument) {
		t.Errorf("ReadYAML(list) error = %v", err)
	}
}

func TestReadYAMLAll(t *testing.T) {
	docs, err := ReadYAMLAll(writeFile(t, "k8s.yaml", "kind: Service\n---\nkind: Deployment\n"))
	if err != nil {
		t.Fatalf("ReadYAMLAll() error = %v", err)
	}
	if len(docs) != 2 || docs[0]["kind"] != "Service" || docs[1]["kind"] != "Deployment" {
		t.Errorf("ReadYAMLAll() = %v", docs)
	}

	if _, err := ReadYAMLAll(writeFile(t, "mixed.yaml", "a: 1\n---\n- x\n")); !errors.Is(err, domain.ErrInvalidDocument) {
		t.Errorf("ReadYAMLAll(mixed) error = %v", err)
	}
}

func TestReadTOML(t *testing.T) {
	m, err := ReadTOML(writeFile(t, "pyproject.toml", "[project]\nname = \"demo\"\nversion = \"1.0\"\n"))
	if err != nil {
		t.Fatalf("ReadTOML() error = %v", err)
	}
	project, ok := m["project"].(map[string]any)
	if !ok || project["name"] != "demo" {
		t.Errorf("ReadTOML() = %v", m)
	}

	if _, err := ReadTOML(writeFile(t, "bad.toml", "name = ")); !errors.Is(err, domain.ErrInvalidDocument) {
		t.Errorf("ReadTOML(invalid) error = %v", err)
	}
}

func TestReadINI(t *testing.T) {
	m, err := ReadINI(writeFile(t, "setup.cfg", "user = ci\n\n[server]\nPort = 8080\n\n[client]\nuser = me\n"))
	if err != nil {
		t.Fatalf("ReadINI() error = %v", err)
	}
	if len(m) != 2 {
		t.Errorf("ReadINI() sections = %v, want server and client", m)
	}
	if m["server"]["port"] != "8080" || m["server"]["user"] != "ci" {
		t.Errorf("ReadINI()[server] = %v", m["server"])
	}
	if m["client"]["user"] != "me" {
		t.Errorf("ReadINI()[client] = %v", m["client"])
	}

	if _, err := ReadINI(writeFile(t, "bad.ini", "[server\nport = 1\n")); !errors.Is(err, domain.ErrInvalidDocument) {
		t.Errorf("ReadINI(invalid) error = %v", err)
	}
	if _, err := ReadINI(filepath.Join(t.TempDir(), "absent.ini")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadINI(absent) error = %v", err)
	}
}

func TestReadEnvFile(t *testing.T) {
	env, err := ReadEnvFile(writeFile(t, ".env", "# comment\nREGION=eu-west-1\nexport TAG=\"v1\"\n"))
	if err != nil {
		t.Fatalf("ReadEnvFile() error = %v", err)
	}
	if env["REGION"] != "eu-west-1" || env["TAG"] != "v1" {
		t.Errorf("ReadEnvFile() = %v", env)
	}
}

func TestLoadEnvFile(t *testing.T) {
	t.Setenv("MYKE_TEXTIO_TEST", "old")
	if err := LoadEnvFile(writeFile(t, ".env", "MYKE_TEXTIO_TEST=new\n")); err != nil {
		t.Fatalf("LoadEnvFile() error = %v", err)
	}
	if got := os.Getenv("MYKE_TEXTIO_TEST"); got != "new" {
		t.Errorf("env = %q, want new", got)
	}
}

type staticFetcher map[string]string

func (f staticFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	body, ok := f[url]
	if !ok {
		return nil, domain.ErrFetchFailed.WithDetails(url)
	}
	return []byte(body), nil
}

func TestReadURL(t *testing.T) {
	f := staticFetcher{
		"https://example.test/v":    "2.0.0\n",
		"https://example.test/json": `{"ok":true}`,
	}
	ctx := context.Background()

	text, err := ReadURL(ctx, f, "https://example.test/v")
	if err != nil || text != "2.0.0\n" {
		t.Errorf("ReadURL() = %q, %v", text, err)
	}

	m, err := ReadURLJSON(ctx, f, "https://example.test/json")
	if err != nil || m["ok"] != true {
		t.Errorf("ReadURLJSON() = %v, %v", m, err)
	}

	if _, err := ReadURL(ctx, f, "https://example.test/404"); !errors.Is(err, domain.ErrFetchFailed) {
		t.Errorf("ReadURL(404) error = %v", err)
	}
}
