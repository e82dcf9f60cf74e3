// Package vdom provides the virtual node model for vtree.
//
// A VNode is a lightweight, immutable description of a UI subtree. Trees
// are built fresh on every render pass and compared against the previous
// pass to decide which surface mutations are needed.
//
// # Core Types
//
// VNode is either a text node (a string, number or boolean value) or an
// element (a type tag, a Props bag and ordered children). Elements produced
// by a registered custom type additionally carry a Component whose Render
// method yields the node's expansion.
//
// # Building Trees
//
// Trees are built with H:
//
//	H("ul", Props{"className": "list"},
//	    H("li", nil, "one"),
//	    items, // a []*VNode is spliced in place
//	)
//
// (*Registry).H resolves registered custom types through their factories.
//
// # Diffing
//
// MustReplace reports whether two nodes are structurally incompatible and
// PropsDiffer whether their property bags differ. Both are shallow; the
// reconcile package walks children. Children are matched by position only.
package vdom
