// Package component defines custom types with per-render contexts.
//
// A Definition is registered under a name in a vdom.Registry. Every time the
// builder produces a node of that type the factory creates a fresh Ctx from
// the node's props and children, and the node's expansion renders against
// that Ctx. Nothing is kept between renders: state that must survive a
// re-render of the parent belongs in a state.Tree.
package component

import (
	"fmt"
	"sort"

	vterrors "github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// ChildrenProp is the context key under which children are exposed.
const ChildrenProp = "children"

// Method is a component method. It receives the context of the render it
// was called from.
type Method func(c *Ctx, args ...any) any

// RenderFunc produces the expansion of a component.
type RenderFunc func(c *Ctx) *vdom.VNode

// Definition describes a custom type.
type Definition struct {
	Name    string
	Methods map[string]Method
	Render  RenderFunc
}

// Ctx is the context of one component node: its props merged with its
// children and the component methods bound to it.
type Ctx struct {
	typ      string
	props    vdom.Props
	children []*vdom.VNode
	methods  map[string]Method
}

// Type returns the custom type name the node was built with.
func (c *Ctx) Type() string { return c.typ }

// Prop returns the prop named key. "children" returns the children.
func (c *Ctx) Prop(key string) any {
	if key == ChildrenProp {
		return c.children
	}
	return c.props[key]
}

// String returns the prop named key formatted as text, or "" if absent.
func (c *Ctx) String(key string) string {
	v := c.Prop(key)
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Props returns a copy of the props merged with the children.
func (c *Ctx) Props() vdom.Props {
	out := make(vdom.Props, len(c.props)+1)
	for k, v := range c.props {
		out[k] = v
	}
	out[ChildrenProp] = c.children
	return out
}

// Children returns the expanded children passed to the builder.
func (c *Ctx) Children() []*vdom.VNode { return c.children }

// Call invokes the named method with c as its context.
func (c *Ctx) Call(name string, args ...any) (any, error) {
	m, ok := c.methods[name]
	if !ok {
		return nil, vterrors.New(vterrors.CodeUnknownMethod).WithSubjectf("%s.%s", c.typ, name)
	}
	return m(c, args...), nil
}

// Method returns the named method bound to c, suitable as an event
// handler prop. It returns nil when the method does not exist.
func (c *Ctx) Method(name string) func() {
	m, ok := c.methods[name]
	if !ok {
		return nil
	}
	return func() { m(c) }
}

// MethodNames returns the sorted method names.
func (c *Ctx) MethodNames() []string {
	names := make([]string, 0, len(c.methods))
	for name := range c.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Define registers def in reg. A nil Render renders the children wrapped
// in a div.
func Define(reg *vdom.Registry, def Definition) {
	reg.Register(def.Name, Factory(def))
}

// Factory returns the vdom.Factory for def without registering it.
func Factory(def Definition) vdom.Factory {
	render := def.Render
	if render == nil {
		render = func(c *Ctx) *vdom.VNode {
			return vdom.H("div", nil, c.Children())
		}
	}
	methods := make(map[string]Method, len(def.Methods))
	for name, m := range def.Methods {
		methods[name] = m
	}

	return func(typ string, props vdom.Props, children []*vdom.VNode) *vdom.VNode {
		if props == nil {
			props = vdom.Props{}
		}
		ctx := &Ctx{
			typ:      typ,
			props:    props,
			children: children,
			methods:  methods,
		}
		return &vdom.VNode{
			Kind:     vdom.KindElement,
			Type:     typ,
			Props:    props,
			Children: children,
			Comp:     vdom.Func(func() *vdom.VNode { return render(ctx) }),
		}
	}
}
