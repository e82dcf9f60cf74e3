// Package treefile reads virtual trees from YAML documents.
//
// A document has a root node and optional component templates:
//
//	components:
//	  Card:
//	    type: section
//	    props: {className: card}
//	    children:
//	      - {type: h2, children: [$title]}
//	      - $children
//	root:
//	  type: div
//	  props: {id: app}
//	  children:
//	    - hello
//	    - type: Card
//	      props: {title: Welcome}
//	      children: [body text]
//
// A node is either a scalar, which becomes a text node, or a mapping with
// type, props and children. Inside a template, a string "$name" is
// replaced by the prop name of the node being expanded and "$children" by
// its children.
package treefile

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	vterrors "github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/component"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// Document is a parsed tree file.
type Document struct {
	Components map[string]any `yaml:"components"`
	Root       any            `yaml:"root"`

	// Logger receives template expansion failures. Nil means
	// slog.Default().
	Logger *slog.Logger `yaml:"-"`
}

// Parse decodes a tree document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.UnmarshalWithOptions(data, &doc, yaml.DisallowUnknownField()); err != nil {
		return nil, vterrors.New(vterrors.CodeDocumentParse).Wrap(err)
	}
	if doc.Root == nil {
		return nil, vterrors.New(vterrors.CodeDocumentNode).WithSubject("root").
			WithSuggestion("Add a top-level 'root' node")
	}
	return &doc, nil
}

// Load reads and parses the tree document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, vterrors.New(vterrors.CodeDocumentParse).WithSubject(path).Wrap(err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, vterrors.FromError(err, vterrors.CodeDocumentParse).WithSubject(path)
	}
	return doc, nil
}

// ComponentNames returns the template names in sorted order.
func (d *Document) ComponentNames() []string {
	names := make([]string, 0, len(d.Components))
	for name := range d.Components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register validates every template and registers it in reg as a
// custom type.
func (d *Document) Register(reg *vdom.Registry) error {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "treefile")
	for _, name := range d.ComponentNames() {
		tmpl, ok := d.Components[name].(map[string]any)
		if !ok {
			return vterrors.New(vterrors.CodeDocumentNode).
				WithSubjectf("components.%s", name).
				WithDetail("A component template must be a mapping with a type.")
		}
		path := "components." + name
		check := &builder{reg: vdom.NewRegistry()}
		if _, err := check.element(tmpl, path); err != nil {
			return err
		}
		component.Define(reg, component.Definition{
			Name: name,
			Render: func(c *component.Ctx) *vdom.VNode {
				b := &builder{reg: reg, ctx: c}
				n, err := b.element(tmpl, path)
				if err != nil {
					// A nil expansion fails the pass; the log keeps the node path.
					logger.Error("template expansion failed",
						"template", c.Type(), "path", path, "error", err)
					return nil
				}
				return n
			},
		})
	}
	return nil
}

// Build registers the document's templates in reg and builds the root.
func (d *Document) Build(reg *vdom.Registry) (*vdom.VNode, error) {
	if err := d.Register(reg); err != nil {
		return nil, err
	}
	b := &builder{reg: reg}
	n, err := b.child(d.Root, "root")
	if err != nil {
		return nil, err
	}
	switch v := n.(type) {
	case *vdom.VNode:
		return v, nil
	case []any:
		return nil, vterrors.New(vterrors.CodeDocumentNode).WithSubject("root").
			WithDetail("The root must be a single node, not a list.")
	default:
		return vdom.Text(v), nil
	}
}

// builder converts decoded YAML values into builder arguments. ctx is set
// while expanding a template.
type builder struct {
	reg *vdom.Registry
	ctx *component.Ctx
}

func (b *builder) child(v any, path string) (any, error) {
	switch x := v.(type) {
	case map[string]any:
		return b.element(x, path)
	case []any:
		out := make([]any, 0, len(x))
		for i, c := range x {
			n, err := b.child(c, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil
	case string:
		return b.subst(x), nil
	default:
		return x, nil
	}
}

func (b *builder) element(m map[string]any, path string) (*vdom.VNode, error) {
	for key := range m {
		switch key {
		case "type", "props", "children":
		default:
			return nil, vterrors.New(vterrors.CodeDocumentNode).
				WithSubjectf("%s.%s", path, key).
				WithSuggestion("Nodes accept only type, props and children")
		}
	}
	typ, ok := m["type"].(string)
	if !ok || typ == "" {
		return nil, vterrors.New(vterrors.CodeDocumentNode).
			WithSubjectf("%s.type", path).
			WithDetail("Every mapping node needs a non-empty string type.")
	}

	var props vdom.Props
	if raw := m["props"]; raw != nil {
		pm, ok := raw.(map[string]any)
		if !ok {
			return nil, vterrors.New(vterrors.CodeDocumentNode).
				WithSubjectf("%s.props", path).
				WithDetail("props must be a mapping.")
		}
		props = make(vdom.Props, len(pm))
		for k, v := range pm {
			props[k] = b.prop(v)
		}
	}

	var children []any
	switch raw := m["children"].(type) {
	case nil:
	case []any:
		for i, c := range raw {
			n, err := b.child(c, fmt.Sprintf("%s.children[%d]", path, i))
			if err != nil {
				return nil, err
			}
			children = append(children, n)
		}
	default:
		n, err := b.child(raw, path+".children")
		if err != nil {
			return nil, err
		}
		children = append(children, n)
	}
	return b.reg.H(typ, props, children...), nil
}

func (b *builder) prop(v any) any {
	switch x := v.(type) {
	case string:
		return b.subst(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = b.prop(e)
		}
		return out
	default:
		return v
	}
}

func (b *builder) subst(s string) any {
	if b.ctx == nil || !strings.HasPrefix(s, "$") || len(s) == 1 {
		return s
	}
	return b.ctx.Prop(s[1:])
}
