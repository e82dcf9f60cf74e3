package vdom

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement VKind = iota // <div>, <button>, or a custom type
	KindText                 // Scalar value rendered as text
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	default:
		return "Unknown"
	}
}

// VNode is the virtual DOM node.
type VNode struct {
	Kind     VKind     // Node type
	Type     string    // Element type tag or custom type name
	Props    Props     // Attributes and event handlers
	Children []*VNode  // Child nodes, in render order
	Value    any       // For KindText: string, number or bool
	Comp     Component // Set only on nodes produced by a custom type factory
}

// Props holds attributes and event handlers.
type Props map[string]any

// Component is anything that can render to a VNode.
type Component interface {
	Render() *VNode
}

// FuncComponent wraps a render function.
type FuncComponent struct {
	render func() *VNode
}

// Render implements Component.
func (f *FuncComponent) Render() *VNode {
	return f.render()
}

// Func creates a component from a render function.
func Func(render func() *VNode) Component {
	return &FuncComponent{render: render}
}

// Text creates a text node. v should be a string, number or bool.
func Text(v any) *VNode {
	return &VNode{
		Kind:  KindText,
		Value: v,
	}
}

// IsText reports whether v is a text node.
func (v *VNode) IsText() bool {
	return v != nil && v.Kind == KindText
}

// IsElement reports whether v is an element node.
func (v *VNode) IsElement() bool {
	return v != nil && v.Kind == KindElement
}

// Expand invokes the node's bound render operation.
// It returns nil for nodes without a component.
func (v *VNode) Expand() *VNode {
	if v == nil || v.Comp == nil {
		return nil
	}
	return v.Comp.Render()
}
