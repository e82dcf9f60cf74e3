package main

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/vtree/internal/config"
	vterrors "github.com/vango-dev/vtree/internal/errors"
)

const listABC = `
root:
  type: ul
  children:
    - {type: li, children: a}
    - {type: li, children: b}
    - {type: li, children: c}
`

const listAX = `
root:
  type: ul
  children:
    - {type: li, children: a}
    - {type: li, children: x}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// run executes the CLI with args against the project directory dir.
func run(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--dir", dir, "--no-color"}, args...))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRender(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "list.yaml", listABC)

	out, _, err := run(t, dir, "render", file)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if want := "<ul><li>a</li><li>b</li><li>c</li></ul>\n"; out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestRenderPrettyWithStats(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "list.yaml", listAX)

	out, errOut, err := run(t, dir, "render", "--pretty", "--stats", file)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "<ul>\n  <li>a</li>\n  <li>x</li>\n</ul>\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
	if !strings.Contains(errOut, "3 elements and 2 texts created") {
		t.Errorf("stats = %q", errOut)
	}
}

func TestRenderAnnotate(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "list.yaml", listAX)

	out, _, err := run(t, dir, "render", "--annotate", file)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, `<ul data-vt-id="`) {
		t.Errorf("output = %q, want id annotations", out)
	}
}

func TestRenderErrors(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.yaml", "root: {type: \"my widget\"}\n")
	noRoot := writeFile(t, dir, "empty.yaml", "components: {}\n")

	tests := []struct {
		name string
		args []string
		code string
	}{
		{"invalid tag", []string{"render", bad}, vterrors.CodeInvalidTag},
		{"missing root", []string{"render", noRoot}, vterrors.CodeDocumentNode},
		{"bad log level", []string{"--log-level", "loud", "render", bad}, vterrors.CodeConfigInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, dir, tt.args...)
			if !stderrors.Is(err, vterrors.New(tt.code)) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestRenderRequiresFile(t *testing.T) {
	if _, _, err := run(t, t.TempDir(), "render"); err == nil {
		t.Error("render without a file should fail")
	}
}

func TestDiff(t *testing.T) {
	dir := t.TempDir()
	oldFile := writeFile(t, dir, "old.yaml", listABC)
	newFile := writeFile(t, dir, "new.yaml", listAX)

	out, _, err := run(t, dir, "diff", oldFile, newFile)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	for _, want := range []string{
		"2 mutations",
		"remove #",
		"replace #",
		"    <li>a</li>",
		"-   <li>b</li>",
		"-   <li>c</li>",
		"+   <li>x</li>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "createText") {
		t.Errorf("creation should be hidden without --all:\n%s", out)
	}
}

func TestDiffAll(t *testing.T) {
	dir := t.TempDir()
	oldFile := writeFile(t, dir, "old.yaml", listABC)
	newFile := writeFile(t, dir, "new.yaml", listAX)

	out, _, err := run(t, dir, "diff", "--all", "--no-html", oldFile, newFile)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if !strings.Contains(out, "3 mutations") || !strings.Contains(out, `createText`) {
		t.Errorf("output = %s", out)
	}
	if strings.Contains(out, "<li>") {
		t.Errorf("--no-html should skip the HTML diff:\n%s", out)
	}
}

func TestDiffUnchanged(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "list.yaml", listABC)

	out, _, err := run(t, dir, "diff", "--stats", file, file)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	for _, want := range []string{"No mutations", "0 mutations:", "HTML unchanged"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDiffComponentRedefined(t *testing.T) {
	dir := t.TempDir()
	oldFile := writeFile(t, dir, "old.yaml", `
components:
  Badge: {type: span, children: [$label]}
root: {type: Badge, props: {label: new}}
`)
	newFile := writeFile(t, dir, "new.yaml", `
components:
  Badge: {type: strong, children: [$label]}
root: {type: Badge, props: {label: new}}
`)

	out, _, err := run(t, dir, "diff", "--no-html", oldFile, newFile)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	// Equal props on a custom node leave the expansion alone.
	if !strings.Contains(out, "No mutations") {
		t.Errorf("output = %s", out)
	}
}

func TestWriteLineDiff(t *testing.T) {
	var buf bytes.Buffer
	if writeLineDiff(&buf, "a\nb\n", "a\nb\n") {
		t.Error("equal inputs should report no change")
	}
	if buf.Len() != 0 {
		t.Errorf("equal inputs wrote %q", buf.String())
	}

	if !writeLineDiff(&buf, "a\nb\n", "a\nc\n") {
		t.Error("different inputs should report a change")
	}
	want := "  a\n- b\n+ c\n"
	if buf.String() != want {
		t.Errorf("diff = %q, want %q", buf.String(), want)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, config.ConfigFileName, "snapshot:\n  dir: snaps\n")
	file := writeFile(t, dir, "list.yaml", listAX)

	out, _, err := run(t, dir, "snapshot", "save", "--name", "two items", file)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	fields := strings.Fields(out)
	if len(fields) == 0 {
		t.Fatalf("save output = %q", out)
	}
	id := fields[len(fields)-1]
	if _, err := os.Stat(filepath.Join(dir, "snaps", id+".json")); err != nil {
		t.Errorf("snapshot file: %v", err)
	}

	out, _, err = run(t, dir, "snapshot", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, id) || !strings.Contains(out, "two items") {
		t.Errorf("list = %q", out)
	}

	out, _, err = run(t, dir, "snapshot", "show", "--mutations", id)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	for _, want := range []string{"Name:    two items", "  <li>x</li>", "append #"} {
		if !strings.Contains(out, want) {
			t.Errorf("show missing %q:\n%s", want, out)
		}
	}

	_, _, err = run(t, dir, "snapshot", "show", "0000")
	if !stderrors.Is(err, vterrors.New(vterrors.CodeSnapshotNotFound)) {
		t.Errorf("show unknown = %v, want %s", err, vterrors.CodeSnapshotNotFound)
	}
}

func TestSnapshotListEmpty(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, config.ConfigFileName, "snapshot:\n  dir: snaps\n")

	out, _, err := run(t, dir, "snapshot", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "No snapshots") {
		t.Errorf("list = %q", out)
	}
}

func get(t *testing.T, h http.Handler, path string) string {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET %s = %d", path, rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	return string(body)
}

func TestNewPreviewDemo(t *testing.T) {
	srv, err := newPreview(context.Background(), config.New(), prometheus.NewRegistry(), "", []string{"milk", "eggs"})
	if err != nil {
		t.Fatalf("newPreview: %v", err)
	}
	defer srv.Close()

	surface := get(t, srv, "/surface")
	for _, want := range []string{"milk", "eggs", "2 items"} {
		if !strings.Contains(surface, want) {
			t.Errorf("surface missing %q:\n%s", want, surface)
		}
	}
	if metrics := get(t, srv, "/metrics"); !strings.Contains(metrics, "vtree_passes_total") {
		t.Errorf("metrics missing vtree_passes_total:\n%s", metrics)
	}
}

func TestNewPreviewFile(t *testing.T) {
	file := writeFile(t, t.TempDir(), "list.yaml", listAX)

	srv, err := newPreview(context.Background(), config.New(), prometheus.NewRegistry(), file, nil)
	if err != nil {
		t.Fatalf("newPreview: %v", err)
	}
	defer srv.Close()

	if surface := get(t, srv, "/surface"); !strings.Contains(surface, "<li") {
		t.Errorf("surface = %q", surface)
	}

	_, err = newPreview(context.Background(), config.New(), prometheus.NewRegistry(), file, []string{"milk"})
	if !stderrors.Is(err, vterrors.New(vterrors.CodeCommandArguments)) {
		t.Errorf("items with a file = %v, want %s", err, vterrors.CodeCommandArguments)
	}
}

func TestVersionShort(t *testing.T) {
	out, _, err := run(t, t.TempDir(), "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if out != version+"\n" {
		t.Errorf("version = %q, want %q", out, version+"\n")
	}
}
