package summary

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

const jsonEnvelope = `{
  "files": [
    {
      "path": "src/index.ts",
      "imports": [{"source": "./App", "specifiers": ["App"]}],
      "exports": ["main"],
      "functions": [{"name": "main", "body": "if (ready) { boot(); }"}]
    },
    {
      "path": "src/App.tsx",
      "exports": ["App"],
      "functions": [{"name": "App", "complexity": 3}]
    }
  ]
}`

const jsonBareArray = `[
  {"path": "src/utils/format.ts", "exports": ["format"]}
]`

const yamlEnvelope = `files:
  - path: src/services/api.ts
    imports:
      - source: ./http
    functions:
      - name: fetchUser
        body: "return id ? get(id) : null;"
`

func TestLoadFileJSONEnvelope(t *testing.T) {
	dir := t.TempDir()
	p := writeFixture(t, dir, "summaries.json", jsonEnvelope)

	got, err := LoadFile(p)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d summaries, want 2", len(got))
	}
	if got[0].Path != "src/index.ts" || got[1].Path != "src/App.tsx" {
		t.Errorf("order not preserved: %q, %q", got[0].Path, got[1].Path)
	}
	// Body-only complexity is backfilled on load.
	if got[0].Functions[0].Complexity != 2 {
		t.Errorf("backfilled complexity = %d, want 2", got[0].Functions[0].Complexity)
	}
	// Extractor-provided scores are kept as-is.
	if got[1].Functions[0].Complexity != 3 {
		t.Errorf("provided complexity = %d, want 3", got[1].Functions[0].Complexity)
	}
}

func TestLoadFileBareArray(t *testing.T) {
	dir := t.TempDir()
	p := writeFixture(t, dir, "bare.json", jsonBareArray)

	got, err := LoadFile(p)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(got) != 1 || got[0].Path != "src/utils/format.ts" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestLoadFileYAML(t *testing.T) {
	dir := t.TempDir()
	p := writeFixture(t, dir, "summaries.yaml", yamlEnvelope)

	got, err := LoadFile(p)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d summaries, want 1", len(got))
	}
	if got[0].Imports[0].Source != "./http" {
		t.Errorf("import source = %q, want ./http", got[0].Imports[0].Source)
	}
	if got[0].Functions[0].Complexity != 2 {
		t.Errorf("backfilled complexity = %d, want 2", got[0].Functions[0].Complexity)
	}
}

func TestLoadFileUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	p := writeFixture(t, dir, "summaries.txt", "nope")

	if _, err := LoadFile(p); err == nil {
		t.Fatal("expected an error for .txt input")
	}
}

func TestLoadDirLexicalOrder(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "b.json", `[{"path": "second.ts"}]`)
	writeFixture(t, dir, "a.json", `[{"path": "first.ts"}]`)
	writeFixture(t, dir, "notes.md", "ignored")

	got, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d summaries, want 2", len(got))
	}
	if got[0].Path != "first.ts" || got[1].Path != "second.ts" {
		t.Errorf("files not merged in lexical order: %q, %q", got[0].Path, got[1].Path)
	}
}

func TestLoadDispatch(t *testing.T) {
	dir := t.TempDir()
	p := writeFixture(t, dir, "one.json", `[{"path": "x.ts"}]`)

	fromFile, err := Load(p)
	if err != nil {
		t.Fatalf("Load(file): %v", err)
	}
	fromDir, err := Load(dir)
	if err != nil {
		t.Fatalf("Load(dir): %v", err)
	}
	if len(fromFile) != 1 || len(fromDir) != 1 {
		t.Errorf("dispatch mismatch: file=%d dir=%d", len(fromFile), len(fromDir))
	}

	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatal("expected an error for a missing path")
	}
}
