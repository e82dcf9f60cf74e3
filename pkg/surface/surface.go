// Package surface defines the host rendering surface that virtual nodes
// are materialized onto.
//
// The reconciler only performs structural and attribute mutation through
// these interfaces. It never queries layout, style or focus. Failures are
// reported as errors and propagate unrecovered to the caller of the pass.
package surface

// Node is any node in the surface tree: an element or a text node.
type Node interface {
	// NodeName returns the element tag, or "#text" for text nodes.
	NodeName() string
}

// Element is an attribute-bearing node that can hold children.
type Element interface {
	Node

	// SetAttribute writes an attribute. The surface decides how the value
	// is stringified and rejects values it cannot represent.
	SetAttribute(name string, value any) error

	// RemoveAttribute deletes an attribute. Removing a missing attribute
	// is a no-op.
	RemoveAttribute(name string)

	// SetProperty assigns a live property (e.g. disabled, checked).
	SetProperty(name string, value any)

	// AddEventListener registers handler for event. Handlers are never
	// removed by the reconciler.
	AddEventListener(event string, handler any) error

	AppendChild(child Node) error
	RemoveChild(child Node) error
	ReplaceChild(newChild, oldChild Node) error

	// ChildAt returns the child at index i, or nil if out of range.
	ChildAt(i int) Node

	// ChildCount returns the number of children.
	ChildCount() int
}

// Document creates nodes and resolves mount points.
type Document interface {
	CreateElement(tag string) (Element, error)
	CreateTextNode(value any) Node
	GetElementByID(id string) (Element, bool)
}
