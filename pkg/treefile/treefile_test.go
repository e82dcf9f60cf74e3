package treefile

import (
	"bytes"
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	vterrors "github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/reconcile"
	"github.com/vango-dev/vtree/pkg/surface/memdom"
	"github.com/vango-dev/vtree/pkg/vdom"
)

const cardDoc = `
components:
  Card:
    type: section
    props:
      className: card
      title: $title
    children:
      - type: h2
        children: [$title]
      - $children
root:
  type: div
  props:
    id: app
    tabindex: 0
    hidden: false
  children:
    - hello
    - 42
    - type: Card
      props: {title: Welcome}
      children:
        - type: p
          children: body
`

func render(t *testing.T, src string) string {
	t.Helper()
	doc, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	reg := vdom.NewRegistry()
	root, err := doc.Build(reg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	n, err := reconcile.New(memdom.NewDocument(), reconcile.WithRegistry(reg)).Materialize(root)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	return memdom.OuterHTML(n.(memdom.Node))
}

func TestBuildWithTemplates(t *testing.T) {
	got := render(t, cardDoc)
	want := `<div id="app" tabindex="0">hello42<section class="card" title="Welcome"><h2>Welcome</h2><p>body</p></section></div>`
	if got != want {
		t.Errorf("html =\n%s\nwant\n%s", got, want)
	}
}

func TestScalarRoot(t *testing.T) {
	if got := render(t, "root: just text\n"); got != "just text" {
		t.Errorf("html = %q", got)
	}
}

func TestMissingTemplateProp(t *testing.T) {
	src := `
components:
  Tag:
    type: em
    children: [$label]
root:
  type: Tag
`
	if got := render(t, src); got != "<em></em>" {
		t.Errorf("html = %q, want empty em", got)
	}
}

func TestTemplateRegistered(t *testing.T) {
	doc, err := Parse([]byte(cardDoc))
	if err != nil {
		t.Fatal(err)
	}
	reg := vdom.NewRegistry()
	if err := doc.Register(reg); err != nil {
		t.Fatal(err)
	}
	if names := doc.ComponentNames(); len(names) != 1 || names[0] != "Card" {
		t.Errorf("ComponentNames() = %v", names)
	}
	if !reg.IsCustom("Card") {
		t.Error("Card should be registered")
	}
}

func TestTemplateExpansionFailureLogged(t *testing.T) {
	doc, err := Parse([]byte(cardDoc))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	doc.Logger = slog.New(slog.NewTextHandler(&buf, nil))
	reg := vdom.NewRegistry()
	if err := doc.Register(reg); err != nil {
		t.Fatal(err)
	}
	// The template is edited after validation and no longer builds.
	doc.Components["Card"].(map[string]any)["style"] = "loud"

	_, err = reconcile.New(memdom.NewDocument(), reconcile.WithRegistry(reg)).
		Materialize(reg.H("Card", vdom.Props{"title": "x"}))
	if !stderrors.Is(err, vterrors.New(vterrors.CodeNilNode)) {
		t.Errorf("Materialize error = %v, want nil node", err)
	}
	out := buf.String()
	for _, want := range []string{"template expansion failed", "template=Card", "components.Card.style"} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q missing %q", out, want)
		}
	}
}

func TestDocumentErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code string
	}{
		{"syntax", "root: [unclosed\n", vterrors.CodeDocumentParse},
		{"unknown top-level key", "root: x\nextra: 1\n", vterrors.CodeDocumentParse},
		{"missing root", "components: {}\n", vterrors.CodeDocumentNode},
		{"missing type", "root: {props: {a: b}}\n", vterrors.CodeDocumentNode},
		{"unknown node key", "root: {type: p, kids: []}\n", vterrors.CodeDocumentNode},
		{"props not mapping", "root: {type: p, props: [a]}\n", vterrors.CodeDocumentNode},
		{"list root", "root: [a, b]\n", vterrors.CodeDocumentNode},
		{"bad template", "components: {X: text}\nroot: x\n", vterrors.CodeDocumentNode},
		{"invalid template node", "components: {X: {children: []}}\nroot: x\n", vterrors.CodeDocumentNode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.src))
			if err == nil {
				_, err = doc.Build(vdom.NewRegistry())
			}
			if !stderrors.Is(err, vterrors.New(tt.code)) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestNestedListBecomesInvalidTag(t *testing.T) {
	doc, err := Parse([]byte("root: {type: ul, children: [a, [b, [c]]]}\n"))
	if err != nil {
		t.Fatal(err)
	}
	root, err := doc.Build(vdom.NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	_, err = reconcile.New(memdom.NewDocument()).Materialize(root)
	if !stderrors.Is(err, vterrors.New(vterrors.CodeInvalidTag)) {
		t.Errorf("error = %v, want invalid tag", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.yaml")
	if err := os.WriteFile(path, []byte(cardDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(doc.Components) != 1 {
		t.Errorf("components = %v", doc.Components)
	}

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !stderrors.Is(err, vterrors.New(vterrors.CodeDocumentParse)) {
		t.Errorf("missing file error = %v", err)
	}
}
