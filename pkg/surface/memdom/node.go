package memdom

import (
	"sort"
	"strings"

	vterrors "github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/surface"
)

// Node is a memdom node: an *Element or a *Text.
type Node interface {
	surface.Node
	ID() uint64
	Parent() *Element
	base() *nodeBase
}

type nodeBase struct {
	doc    *Document
	id     uint64
	parent *Element
}

func (n *nodeBase) base() *nodeBase { return n }

// ID returns the node's document-unique id.
func (n *nodeBase) ID() uint64 { return n.id }

// Parent returns the parent element, or nil when detached.
func (n *nodeBase) Parent() *Element { return n.parent }

// Text is a text node.
type Text struct {
	nodeBase
	data string
}

// NodeName implements surface.Node.
func (t *Text) NodeName() string { return "#text" }

// Data returns the text content.
func (t *Text) Data() string { return t.data }

// Element is an element node.
type Element struct {
	nodeBase
	tag       string
	attrs     map[string]string
	props     map[string]any
	listeners map[string][]any
	children  []Node
}

var _ surface.Element = (*Element)(nil)

// NodeName implements surface.Node.
func (e *Element) NodeName() string { return e.tag }

// Tag returns the element tag.
func (e *Element) Tag() string { return e.tag }

// SetAttribute implements surface.Element.
func (e *Element) SetAttribute(name string, value any) error {
	s, err := attrString(value)
	if err != nil {
		return vterrors.FromError(err, vterrors.CodeUnsupportedValue).WithSubject(name)
	}
	e.attrs[name] = s
	e.doc.record(Mutation{Op: OpSetAttr, Target: e.id, Name: name, Value: s})
	return nil
}

// RemoveAttribute implements surface.Element.
func (e *Element) RemoveAttribute(name string) {
	delete(e.attrs, name)
	e.doc.record(Mutation{Op: OpRemoveAttr, Target: e.id, Name: name})
}

// SetProperty implements surface.Element.
func (e *Element) SetProperty(name string, value any) {
	e.props[name] = value
	e.doc.record(Mutation{Op: OpSetProp, Target: e.id, Name: name, Value: textString(value)})
}

// AddEventListener implements surface.Element.
func (e *Element) AddEventListener(event string, handler any) error {
	if !isListener(handler) {
		return vterrors.New(vterrors.CodeListenerNotFunc).WithSubject(event)
	}
	e.listeners[event] = append(e.listeners[event], handler)
	e.doc.record(Mutation{Op: OpAddListener, Target: e.id, Name: event})
	return nil
}

// AppendChild implements surface.Element. A child that already has a
// parent is moved.
func (e *Element) AppendChild(child surface.Node) error {
	c, err := e.adopt(child)
	if err != nil {
		return err
	}
	e.appendNode(c)
	e.doc.record(Mutation{Op: OpAppend, Target: e.id, Node: c.ID(), Index: len(e.children) - 1})
	return nil
}

// RemoveChild implements surface.Element.
func (e *Element) RemoveChild(child surface.Node) error {
	c, ok := child.(Node)
	if !ok || c.Parent() != e {
		return vterrors.New(vterrors.CodeNotAChild).WithSubject(nodeLabel(child))
	}
	idx := e.indexOf(c)
	e.detach(c)
	e.doc.record(Mutation{Op: OpRemove, Target: e.id, Node: c.ID(), Index: idx})
	return nil
}

// ReplaceChild implements surface.Element.
func (e *Element) ReplaceChild(newChild, oldChild surface.Node) error {
	old, ok := oldChild.(Node)
	if !ok || old.Parent() != e {
		return vterrors.New(vterrors.CodeNotAChild).WithSubject(nodeLabel(oldChild))
	}
	if n, ok := newChild.(Node); ok && n == old {
		return nil
	}
	c, err := e.adopt(newChild)
	if err != nil {
		return err
	}
	idx := e.indexOf(old)
	e.children[idx] = c
	c.base().parent = e
	old.base().parent = nil
	e.doc.record(Mutation{Op: OpReplace, Target: e.id, Node: c.ID(), Old: old.ID(), Index: idx})
	return nil
}

// ChildAt implements surface.Element.
func (e *Element) ChildAt(i int) surface.Node {
	if i < 0 || i >= len(e.children) {
		return nil
	}
	return e.children[i]
}

// ChildCount implements surface.Element.
func (e *Element) ChildCount() int { return len(e.children) }

// Children returns a copy of the element's children.
func (e *Element) Children() []Node {
	out := make([]Node, len(e.children))
	copy(out, e.children)
	return out
}

// Attr returns an attribute value.
func (e *Element) Attr(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

// AttrNames returns the attribute names in sorted order.
func (e *Element) AttrNames() []string {
	names := make([]string, 0, len(e.attrs))
	for k := range e.attrs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Property returns a live property value.
func (e *Element) Property(name string) (any, bool) {
	v, ok := e.props[name]
	return v, ok
}

// ListenerCount returns the number of listeners registered for event.
func (e *Element) ListenerCount(event string) int {
	return len(e.listeners[event])
}

// TextContent returns the concatenated text of all descendant text nodes.
func (e *Element) TextContent() string {
	var b strings.Builder
	e.walk(func(n Node) bool {
		if t, ok := n.(*Text); ok {
			b.WriteString(t.data)
		}
		return true
	})
	return b.String()
}

// adopt validates child and detaches it from any current parent.
func (e *Element) adopt(child surface.Node) (Node, error) {
	c, ok := child.(Node)
	if !ok || c.base().doc != e.doc {
		return nil, vterrors.New(vterrors.CodeHierarchy).WithSubject(nodeLabel(child))
	}
	if ce, ok := c.(*Element); ok {
		for p := e; p != nil; p = p.parent {
			if p == ce {
				return nil, vterrors.New(vterrors.CodeHierarchy).WithSubject(ce.tag)
			}
		}
	}
	if p := c.Parent(); p != nil {
		p.detach(c)
	}
	return c, nil
}

func (e *Element) appendNode(c Node) {
	c.base().parent = e
	e.children = append(e.children, c)
}

func (e *Element) detach(c Node) {
	idx := e.indexOf(c)
	if idx < 0 {
		return
	}
	e.children = append(e.children[:idx], e.children[idx+1:]...)
	c.base().parent = nil
}

func (e *Element) indexOf(c Node) int {
	for i, child := range e.children {
		if child == c {
			return i
		}
	}
	return -1
}

// walk visits e and its descendants in document order until fn returns
// false.
func (e *Element) walk(fn func(Node) bool) bool {
	if !fn(e) {
		return false
	}
	for _, c := range e.children {
		if ce, ok := c.(*Element); ok {
			if !ce.walk(fn) {
				return false
			}
			continue
		}
		if !fn(c) {
			return false
		}
	}
	return true
}

func (e *Element) find(match func(*Element) bool) *Element {
	var found *Element
	e.walk(func(n Node) bool {
		if el, ok := n.(*Element); ok && match(el) {
			found = el
			return false
		}
		return true
	})
	return found
}

func nodeLabel(n surface.Node) string {
	if n == nil {
		return "<nil>"
	}
	return n.NodeName()
}
