// Package reconcile materializes virtual nodes onto a render surface and
// brings a materialized region in sync with a new tree.
//
// Reconciliation is synchronous and positional. A pass runs to completion
// before returning. The first surface failure aborts the pass and is
// returned; mutations already applied stay applied.
package reconcile

import (
	"context"
	"log/slog"
	"time"

	vterrors "github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/surface"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// Reconciler holds the collaborators of create/update passes.
// It keeps no per-pass state and may be reused for any number of trees
// on the same document.
type Reconciler struct {
	doc         surface.Document
	registry    *vdom.Registry
	logger      *slog.Logger
	observer    Observer
	policy      PropPolicy
	classProp   string
	classAttr   string
	eventPrefix string
}

// New creates a Reconciler for doc.
func New(doc surface.Document, opts ...Option) *Reconciler {
	r := &Reconciler{
		doc:         doc,
		logger:      slog.Default().With("component", "reconcile"),
		classProp:   "className",
		classAttr:   "class",
		eventPrefix: "on",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Document returns the surface document the reconciler creates nodes in.
func (r *Reconciler) Document() surface.Document {
	return r.doc
}

// Registry returns the registry used to recognize custom types.
func (r *Reconciler) Registry() *vdom.Registry {
	return r.registry
}

// Policy returns the prop rewrite policy.
func (r *Reconciler) Policy() PropPolicy {
	return r.policy
}

// Materialize creates the surface subtree for node. Custom nodes are
// transparent: their expansion is materialized in their place.
func (r *Reconciler) Materialize(node *vdom.VNode) (surface.Node, error) {
	n, _, err := r.MaterializeContext(context.Background(), node)
	return n, err
}

// MaterializeContext is Materialize with a context for the observer and
// per-pass stats.
func (r *Reconciler) MaterializeContext(ctx context.Context, node *vdom.VNode) (surface.Node, Stats, error) {
	var out surface.Node
	stats, err := r.run(ctx, PassCreate, func(p *pass) error {
		var err error
		out, err = p.create(node)
		return err
	})
	return out, stats, err
}

// Reconcile updates the surface child of parent at index so that it
// matches newNode, given that it was materialized from oldNode.
//
// A nil oldNode appends newNode as a new child of parent. A nil newNode
// removes the child at index.
func (r *Reconciler) Reconcile(parent surface.Element, newNode, oldNode *vdom.VNode, index int) error {
	_, err := r.ReconcileContext(context.Background(), parent, newNode, oldNode, index)
	return err
}

// ReconcileContext is Reconcile with a context for the observer and
// per-pass stats.
func (r *Reconciler) ReconcileContext(ctx context.Context, parent surface.Element, newNode, oldNode *vdom.VNode, index int) (Stats, error) {
	return r.run(ctx, PassReconcile, func(p *pass) error {
		return p.update(parent, newNode, oldNode, index)
	})
}

func (r *Reconciler) run(ctx context.Context, kind PassKind, fn func(p *pass) error) (Stats, error) {
	if r.observer != nil {
		ctx = r.observer.BeginPass(ctx, kind)
	}
	start := time.Now()
	p := &pass{r: r}
	err := fn(p)
	elapsed := time.Since(start)

	if err != nil {
		r.logger.Debug("pass failed", "kind", kind, "error", err, "duration", elapsed)
	} else {
		r.logger.Debug("pass complete",
			"kind", kind,
			"mutations", p.stats.Mutations(),
			"replaced", p.stats.Replaced,
			"duration", elapsed)
	}
	if r.observer != nil {
		r.observer.EndPass(ctx, Pass{Kind: kind, Stats: p.stats, Duration: elapsed, Err: err})
	}
	return p.stats, err
}

// pass carries the counters of one top-level call.
type pass struct {
	r     *Reconciler
	stats Stats
}

func (p *pass) create(node *vdom.VNode) (surface.Node, error) {
	if node == nil {
		return nil, vterrors.New(vterrors.CodeNilNode)
	}
	if node.Kind == vdom.KindText {
		p.stats.TextsCreated++
		return p.r.doc.CreateTextNode(node.Value), nil
	}
	if p.isCustom(node) {
		exp, err := p.expand(node)
		if err != nil {
			return nil, err
		}
		return p.create(exp)
	}

	el, err := p.r.doc.CreateElement(node.Type)
	if err != nil {
		return nil, err
	}
	p.stats.ElementsCreated++
	if err := p.updateProps(el, node.Props, nil); err != nil {
		return nil, err
	}
	for _, child := range node.Children {
		c, err := p.create(child)
		if err != nil {
			return nil, err
		}
		if err := el.AppendChild(c); err != nil {
			return nil, err
		}
	}
	return el, nil
}

func (p *pass) update(parent surface.Element, newNode, oldNode *vdom.VNode, index int) error {
	if oldNode == nil {
		if newNode == nil {
			return nil
		}
		n, err := p.create(newNode)
		if err != nil {
			return err
		}
		if err := parent.AppendChild(n); err != nil {
			return err
		}
		p.stats.Appended++
		return nil
	}

	if newNode == nil {
		child, err := childAt(parent, index)
		if err != nil {
			return err
		}
		if err := parent.RemoveChild(child); err != nil {
			return err
		}
		p.stats.Removed++
		return nil
	}

	if vdom.MustReplace(newNode, oldNode) {
		n, err := p.create(newNode)
		if err != nil {
			return err
		}
		child, err := childAt(parent, index)
		if err != nil {
			return err
		}
		if err := parent.ReplaceChild(n, child); err != nil {
			return err
		}
		p.stats.Replaced++
		return nil
	}

	if newNode.Kind != vdom.KindElement {
		return nil
	}

	if vdom.PropsDiffer(newNode, oldNode) {
		if p.isCustom(newNode) {
			newExp, err := p.expand(newNode)
			if err != nil {
				return err
			}
			oldExp, err := p.expand(oldNode)
			if err != nil {
				return err
			}
			return p.update(parent, newExp, oldExp, index)
		}
		el, err := elementAt(parent, index)
		if err != nil {
			return err
		}
		if err := p.updateProps(el, newNode.Props, oldNode.Props); err != nil {
			return err
		}
	}

	n := max(len(newNode.Children), len(oldNode.Children))
	if n == 0 {
		return nil
	}
	el, err := elementAt(parent, index)
	if err != nil {
		return err
	}
	// Descending order: a removal at index i never shifts an index that
	// is still to be visited.
	for i := n - 1; i >= 0; i-- {
		if err := p.update(el, nth(newNode.Children, i), nth(oldNode.Children, i), i); err != nil {
			return err
		}
	}
	return nil
}

// isCustom reports whether node must be expanded before it reaches the
// surface: its type is registered, or it carries an expansion of its own.
func (p *pass) isCustom(node *vdom.VNode) bool {
	return p.r.registry.IsCustom(node.Type) || node.Comp != nil
}

func (p *pass) expand(node *vdom.VNode) (*vdom.VNode, error) {
	if node.Comp == nil {
		return nil, vterrors.New(vterrors.CodeNoExpansion).WithSubject(node.Type)
	}
	p.stats.Expansions++
	exp := node.Expand()
	if exp == nil {
		return nil, vterrors.New(vterrors.CodeNilNode).WithSubjectf("expansion of %s", node.Type)
	}
	return exp, nil
}

func nth(children []*vdom.VNode, i int) *vdom.VNode {
	if i < len(children) {
		return children[i]
	}
	return nil
}

func childAt(parent surface.Element, index int) (surface.Node, error) {
	child := parent.ChildAt(index)
	if child == nil {
		return nil, vterrors.New(vterrors.CodeChildOutOfRange).
			WithSubjectf("%s[%d] of %d", parent.NodeName(), index, parent.ChildCount())
	}
	return child, nil
}

func elementAt(parent surface.Element, index int) (surface.Element, error) {
	child, err := childAt(parent, index)
	if err != nil {
		return nil, err
	}
	el, ok := child.(surface.Element)
	if !ok {
		return nil, vterrors.New(vterrors.CodeNotAnElement).
			WithSubjectf("%s[%d] is %s", parent.NodeName(), index, child.NodeName())
	}
	return el, nil
}
