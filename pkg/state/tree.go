package state

import (
	"context"
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	vterrors "github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/reconcile"
	"github.com/vango-dev/vtree/pkg/surface"
	"github.com/vango-dev/vtree/pkg/vdom"
)

const tracerName = "vtree"

// Method is a tree method. It runs against the tree it was declared on.
type Method func(t *Tree, args ...any) error

// RenderFunc builds the virtual tree from the current data.
type RenderFunc func(t *Tree) *vdom.VNode

// Config declares the data, methods and render function of a Tree.
type Config struct {
	// Data holds the initial value of every reactive key. Only declared
	// keys may be written.
	Data map[string]any

	Methods map[string]Method

	Render RenderFunc
}

// Option configures a Tree.
type Option func(*Tree)

// WithReconciler sets the reconciler used for passes. It must operate on
// the same document as the tree.
func WithReconciler(r *reconcile.Reconciler) Option {
	return func(t *Tree) {
		if r != nil {
			t.rec = r
		}
	}
}

// WithRegistry sets the registry of custom types used by the default
// reconciler. It is ignored when WithReconciler is given.
func WithRegistry(reg *vdom.Registry) Option {
	return func(t *Tree) {
		t.registry = reg
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tree) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithTracer sets the tracer used for mount and update spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(t *Tree) {
		if tracer != nil {
			t.tracer = tracer
		}
	}
}

// Tree is a reactive state container bound to at most one mount point.
type Tree struct {
	doc      surface.Document
	rec      *reconcile.Reconciler
	registry *vdom.Registry
	logger   *slog.Logger
	tracer   trace.Tracer
	data     map[string]any
	methods  map[string]Method
	render   RenderFunc

	mountID   string
	root      surface.Element
	current   *vdom.VNode
	rendering bool
	passes    int
}

// New creates a Tree rendering onto doc.
func New(doc surface.Document, cfg Config, opts ...Option) *Tree {
	t := &Tree{
		doc:     doc,
		logger:  slog.Default().With("component", "state"),
		tracer:  otel.Tracer(tracerName),
		data:    make(map[string]any, len(cfg.Data)),
		methods: make(map[string]Method, len(cfg.Methods)),
		render:  cfg.Render,
	}
	for k, v := range cfg.Data {
		t.data[k] = v
	}
	for k, m := range cfg.Methods {
		t.methods[k] = m
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.rec == nil {
		t.rec = reconcile.New(doc, reconcile.WithRegistry(t.registry))
	}
	return t
}

// Get returns the value stored under key, or nil if the key is not
// declared.
func (t *Tree) Get(key string) any {
	return t.data[key]
}

// Has reports whether key is declared.
func (t *Tree) Has(key string) bool {
	_, ok := t.data[key]
	return ok
}

// Keys returns the declared keys in sorted order.
func (t *Tree) Keys() []string {
	keys := make([]string, 0, len(t.data))
	for k := range t.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set stores value under key and, once mounted, updates the surface.
// The value is stored even if the update fails.
func (t *Tree) Set(key string, value any) error {
	return t.SetContext(context.Background(), key, value)
}

// SetContext is Set with a context for the update pass.
func (t *Tree) SetContext(ctx context.Context, key string, value any) error {
	if t.rendering {
		return vterrors.New(vterrors.CodeSetDuringRender).WithSubject(key)
	}
	if !t.Has(key) {
		return vterrors.New(vterrors.CodeUnknownField).WithSubject(key)
	}
	t.data[key] = value
	if !t.Mounted() {
		return nil
	}
	return t.UpdateContext(ctx)
}

// Call runs the named method.
func (t *Tree) Call(name string, args ...any) error {
	m, ok := t.methods[name]
	if !ok {
		return vterrors.New(vterrors.CodeUnknownMethod).WithSubject(name)
	}
	return m(t, args...)
}

// Handler returns a listener that calls the named method. Use it as an
// event prop value.
func (t *Tree) Handler(name string, args ...any) func() error {
	return func() error {
		return t.Call(name, args...)
	}
}

// Render invokes the render function against the current data.
func (t *Tree) Render() (*vdom.VNode, error) {
	if t.render == nil {
		return nil, vterrors.New(vterrors.CodeNilNode).WithSubject("render function")
	}
	t.rendering = true
	defer func() { t.rendering = false }()

	node := t.render(t)
	if node == nil {
		return nil, vterrors.New(vterrors.CodeNilNode).WithSubject("render result")
	}
	return node, nil
}

// Mount locates the element with the given id, materializes the tree
// under it and records the result as current.
func (t *Tree) Mount(id string) error {
	return t.MountContext(context.Background(), id)
}

// MountContext is Mount with a context for tracing.
func (t *Tree) MountContext(ctx context.Context, id string) (err error) {
	if t.Mounted() {
		return vterrors.New(vterrors.CodeAlreadyMounted).WithSubject(t.mountID)
	}
	ctx, span := t.tracer.Start(ctx, "vtree.mount",
		trace.WithAttributes(attribute.String("vtree.mount_id", id)))
	defer func() { endSpan(span, err) }()

	root, ok := t.doc.GetElementByID(id)
	if !ok {
		return vterrors.New(vterrors.CodeMountNotFound).WithSubject(id)
	}
	node, err := t.Render()
	if err != nil {
		return err
	}
	stats, err := t.rec.ReconcileContext(ctx, root, node, nil, 0)
	span.SetAttributes(attribute.Int("vtree.mutations", stats.Mutations()))
	if err != nil {
		return err
	}

	t.mountID = id
	t.root = root
	t.current = node
	t.passes++
	t.logger.Info("tree mounted", "id", id, "elements", stats.ElementsCreated, "texts", stats.TextsCreated)
	return nil
}

// Update re-renders and reconciles the new tree against the current one.
func (t *Tree) Update() error {
	return t.UpdateContext(context.Background())
}

// UpdateContext is Update with a context for tracing. On failure the
// surface may be partially patched and the current tree is kept.
func (t *Tree) UpdateContext(ctx context.Context) (err error) {
	if !t.Mounted() {
		return vterrors.New(vterrors.CodeNotMounted)
	}
	ctx, span := t.tracer.Start(ctx, "vtree.update",
		trace.WithAttributes(attribute.String("vtree.mount_id", t.mountID)))
	defer func() { endSpan(span, err) }()

	node, err := t.Render()
	if err != nil {
		return err
	}
	stats, err := t.rec.ReconcileContext(ctx, t.root, node, t.current, 0)
	span.SetAttributes(
		attribute.Int("vtree.mutations", stats.Mutations()),
		attribute.Int("vtree.replaced", stats.Replaced),
	)
	if err != nil {
		t.logger.Warn("update failed", "id", t.mountID, "error", err)
		return err
	}
	t.current = node
	t.passes++
	return nil
}

// Mounted reports whether Mount succeeded.
func (t *Tree) Mounted() bool { return t.root != nil }

// Current returns the last successfully reconciled virtual tree.
func (t *Tree) Current() *vdom.VNode { return t.current }

// Root returns the mount element, or nil before Mount.
func (t *Tree) Root() surface.Element { return t.root }

// Reconciler returns the reconciler used for passes.
func (t *Tree) Reconciler() *reconcile.Reconciler { return t.rec }

// Passes returns the number of successful mount and update passes.
func (t *Tree) Passes() int { return t.passes }

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
