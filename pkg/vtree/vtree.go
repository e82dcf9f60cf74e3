// Package vtree is the entry point for building and rendering virtual node
// trees without wiring the lower-level packages by hand.
//
// H and Component share a process-wide registry, so a type registered with
// Component is expanded by H and recognized by Create, Update and Tree:
//
//	vtree.Component(component.Definition{
//	    Name: "Greeting",
//	    Render: func(c *component.Ctx) *vtree.Node {
//	        return vtree.H("p", nil, "Hello, ", c.String("name"))
//	    },
//	})
//
//	doc := memdom.NewDocument()
//	root := doc.AddRoot("root")
//	old := vtree.H("Greeting", vtree.Props{"name": "Ada"})
//	_ = vtree.Update(doc, root, old, nil, 0)
//	_ = vtree.Update(doc, root, vtree.H("Greeting", vtree.Props{"name": "Grace"}), old, 0)
//
// Programs that need several independent registries use pkg/vdom,
// pkg/reconcile and pkg/state directly.
package vtree

import (
	"github.com/vango-dev/vtree/pkg/component"
	"github.com/vango-dev/vtree/pkg/reconcile"
	"github.com/vango-dev/vtree/pkg/state"
	"github.com/vango-dev/vtree/pkg/surface"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// Node is a virtual node.
type Node = vdom.VNode

// Props maps prop names to values.
type Props = vdom.Props

var registry = vdom.NewRegistry()

// Registry returns the registry shared by H, Component and the passes
// started from this package.
func Registry() *vdom.Registry {
	return registry
}

// H builds a node. Registered component types are expanded through their
// factory.
func H(typ string, props Props, children ...any) *Node {
	return registry.H(typ, props, children...)
}

// Text builds a text node.
func Text(v any) *Node {
	return vdom.Text(v)
}

// Component registers a component type.
func Component(def component.Definition) {
	component.Define(registry, def)
}

// Create materializes node in doc. The result is detached.
func Create(doc surface.Document, node *Node, opts ...reconcile.Option) (surface.Node, error) {
	return newReconciler(doc, opts).Materialize(node)
}

// Update reconciles the child of parent at index from oldNode to newNode.
// A nil oldNode appends; a nil newNode removes.
func Update(doc surface.Document, parent surface.Element, newNode, oldNode *Node, index int, opts ...reconcile.Option) error {
	return newReconciler(doc, opts).Reconcile(parent, newNode, oldNode, index)
}

// Tree creates a reactive tree whose reconciler knows the shared
// registry. A state.WithReconciler option overrides it.
func Tree(doc surface.Document, cfg state.Config, opts ...state.Option) *state.Tree {
	rec := newReconciler(doc, nil)
	return state.New(doc, cfg, append([]state.Option{state.WithReconciler(rec)}, opts...)...)
}

func newReconciler(doc surface.Document, opts []reconcile.Option) *reconcile.Reconciler {
	return reconcile.New(doc, append([]reconcile.Option{reconcile.WithRegistry(registry)}, opts...)...)
}
