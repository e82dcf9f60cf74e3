package state

import (
	"context"
	stderrors "errors"
	"testing"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	vterrors "github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/surface/memdom"
	"github.com/vango-dev/vtree/pkg/vdom"
)

func spanTree(doc *memdom.Document, opts ...Option) *Tree {
	return New(doc, Config{
		Data: map[string]any{"x": 1},
		Render: func(t *Tree) *vdom.VNode {
			return vdom.H("span", nil, t.Get("x"))
		},
	}, opts...)
}

func TestReactiveRoundTrip(t *testing.T) {
	doc := memdom.NewDocument()
	root := doc.AddRoot("root")
	tree := spanTree(doc)

	if err := tree.Mount("root"); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	span, ok := root.ChildAt(0).(*memdom.Element)
	if !ok || span.Tag() != "span" || span.TextContent() != "1" {
		t.Fatalf("after mount root = %s", root.InnerHTML())
	}

	doc.ResetMutations()
	if err := tree.Set("x", 2); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if root.ChildAt(0) != span {
		t.Error("span instance should be preserved")
	}
	if got := span.TextContent(); got != "2" {
		t.Errorf("text = %q, want 2", got)
	}
	if n := memdom.Count(doc.Mutations(), memdom.OpCreateElement); n != 0 {
		t.Errorf("elements created = %d, want 0", n)
	}
	if tree.Passes() != 2 {
		t.Errorf("Passes() = %d, want 2", tree.Passes())
	}
}

func TestEveryWriteIsOnePass(t *testing.T) {
	doc := memdom.NewDocument()
	doc.AddRoot("root")
	renders := 0
	tree := New(doc, Config{
		Data: map[string]any{"a": "", "b": ""},
		Render: func(t *Tree) *vdom.VNode {
			renders++
			return vdom.H("p", vdom.Props{"title": t.Get("a")}, t.Get("b"))
		},
	})
	if err := tree.Mount("root"); err != nil {
		t.Fatal(err)
	}
	_ = tree.Set("a", "x")
	_ = tree.Set("b", "y")
	_ = tree.Set("b", "y")
	if renders != 4 {
		t.Errorf("renders = %d, want 4", renders)
	}
}

func TestSetBeforeMountStoresOnly(t *testing.T) {
	doc := memdom.NewDocument()
	root := doc.AddRoot("root")
	tree := spanTree(doc)

	if err := tree.Set("x", 5); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if root.ChildCount() != 0 {
		t.Error("write before mount should not touch the surface")
	}
	if err := tree.Mount("root"); err != nil {
		t.Fatal(err)
	}
	if got := root.TextContent(); got != "5" {
		t.Errorf("mounted text = %q, want 5", got)
	}
}

func TestTreeErrors(t *testing.T) {
	doc := memdom.NewDocument()
	doc.AddRoot("root")
	tree := spanTree(doc)

	tests := []struct {
		name string
		err  error
		code string
	}{
		{"update before mount", tree.Update(), vterrors.CodeNotMounted},
		{"unknown key", tree.Set("y", 1), vterrors.CodeUnknownField},
		{"unknown method", tree.Call("go"), vterrors.CodeUnknownMethod},
		{"missing mount point", tree.Mount("nope"), vterrors.CodeMountNotFound},
	}
	for _, tt := range tests {
		if !stderrors.Is(tt.err, vterrors.New(tt.code)) {
			t.Errorf("%s: error = %v, want %s", tt.name, tt.err, tt.code)
		}
	}

	if err := tree.Mount("root"); err != nil {
		t.Fatalf("Mount after failed mount: %v", err)
	}
	if err := tree.Mount("root"); !stderrors.Is(err, vterrors.New(vterrors.CodeAlreadyMounted)) {
		t.Errorf("second Mount error = %v", err)
	}
}

func TestSetDuringRender(t *testing.T) {
	doc := memdom.NewDocument()
	doc.AddRoot("root")
	var renderErr error
	tree := New(doc, Config{
		Data: map[string]any{"x": 0},
		Render: func(t *Tree) *vdom.VNode {
			renderErr = t.Set("x", 1)
			return vdom.H("i", nil)
		},
	})
	if err := tree.Mount("root"); err != nil {
		t.Fatal(err)
	}
	if !stderrors.Is(renderErr, vterrors.New(vterrors.CodeSetDuringRender)) {
		t.Errorf("Set during render error = %v", renderErr)
	}
	if tree.Get("x") != 0 {
		t.Errorf("x = %v, want 0", tree.Get("x"))
	}
}

func TestNilRender(t *testing.T) {
	doc := memdom.NewDocument()
	doc.AddRoot("root")
	tree := New(doc, Config{Render: func(*Tree) *vdom.VNode { return nil }})
	if err := tree.Mount("root"); !stderrors.Is(err, vterrors.New(vterrors.CodeNilNode)) {
		t.Errorf("Mount error = %v, want nil node", err)
	}
	if tree.Mounted() {
		t.Error("failed mount should leave tree unmounted")
	}
}

func TestUpdateFailureKeepsCurrent(t *testing.T) {
	doc := memdom.NewDocument()
	doc.AddRoot("root")
	tree := New(doc, Config{
		Data: map[string]any{"tag": "p"},
		Render: func(t *Tree) *vdom.VNode {
			return vdom.H(t.Get("tag").(string), nil)
		},
	})
	if err := tree.Mount("root"); err != nil {
		t.Fatal(err)
	}
	before := tree.Current()
	err := tree.Set("tag", "not a tag")
	if !stderrors.Is(err, vterrors.New(vterrors.CodeInvalidTag)) {
		t.Fatalf("Set error = %v, want invalid tag", err)
	}
	if tree.Current() != before {
		t.Error("current tree should be kept after a failed update")
	}
	if tree.Get("tag") != "not a tag" {
		t.Error("value should be stored even though the update failed")
	}
}

func TestMethodsAndHandlers(t *testing.T) {
	doc := memdom.NewDocument()
	root := doc.AddRoot("root")
	tree := New(doc, Config{
		Data: map[string]any{"count": 0},
		Methods: map[string]Method{
			"inc": func(t *Tree, args ...any) error {
				step := 1
				if len(args) > 0 {
					step = args[0].(int)
				}
				return Bind[int](t, "count").Update(func(n int) int { return n + step })
			},
		},
		Render: func(t *Tree) *vdom.VNode {
			return vdom.H("button", vdom.Props{"onClick": t.Handler("inc")}, t.Get("count"))
		},
	})
	if err := tree.Mount("root"); err != nil {
		t.Fatal(err)
	}
	btn := root.ChildAt(0).(*memdom.Element)
	for i := 0; i < 3; i++ {
		if err := btn.Click(); err != nil {
			t.Fatalf("Click: %v", err)
		}
	}
	if got := btn.TextContent(); got != "3" {
		t.Errorf("count = %q, want 3", got)
	}
	if err := tree.Call("inc", 10); err != nil {
		t.Fatal(err)
	}
	if got := btn.TextContent(); got != "13" {
		t.Errorf("count = %q, want 13", got)
	}
	if n := btn.ListenerCount("click"); n != 1 {
		t.Errorf("click listeners = %d, want 1", n)
	}
}

func TestBind(t *testing.T) {
	doc := memdom.NewDocument()
	tree := New(doc, Config{Data: map[string]any{"name": "a", "n": 1}})

	name := Bind[string](tree, "name")
	if name.Get() != "a" || name.Key() != "name" {
		t.Errorf("Get() = %q", name.Get())
	}
	if err := name.Set("b"); err != nil {
		t.Fatal(err)
	}
	if tree.Get("name") != "b" {
		t.Errorf("tree value = %v", tree.Get("name"))
	}
	if got := Bind[string](tree, "n").Get(); got != "" {
		t.Errorf("mistyped Get() = %q, want zero value", got)
	}
	if err := Bind[int](tree, "missing").Set(1); !stderrors.Is(err, vterrors.New(vterrors.CodeUnknownField)) {
		t.Errorf("Set(missing) error = %v", err)
	}
	if keys := tree.Keys(); len(keys) != 2 || keys[0] != "n" {
		t.Errorf("Keys() = %v", keys)
	}
}

type recordingTracer struct {
	noop.Tracer
	spans []*recordingSpan
}

func (r *recordingTracer) Start(ctx context.Context, name string, _ ...trace.SpanStartOption) (context.Context, trace.Span) {
	s := &recordingSpan{name: name}
	r.spans = append(r.spans, s)
	return ctx, s
}

type recordingSpan struct {
	noop.Span
	name   string
	status codes.Code
	ended  bool
}

func (s *recordingSpan) SetStatus(code codes.Code, _ string) { s.status = code }
func (s *recordingSpan) End(...trace.SpanEndOption)          { s.ended = true }

func TestSpans(t *testing.T) {
	doc := memdom.NewDocument()
	doc.AddRoot("root")
	tracer := &recordingTracer{}
	tree := spanTree(doc, WithTracer(tracer))

	_ = tree.Mount("missing")
	_ = tree.Mount("root")
	_ = tree.Set("x", 3)

	want := []struct {
		name   string
		status codes.Code
	}{
		{"vtree.mount", codes.Error},
		{"vtree.mount", codes.Ok},
		{"vtree.update", codes.Ok},
	}
	if len(tracer.spans) != len(want) {
		t.Fatalf("spans = %d, want %d", len(tracer.spans), len(want))
	}
	for i, w := range want {
		s := tracer.spans[i]
		if s.name != w.name || s.status != w.status || !s.ended {
			t.Errorf("span %d = %s/%v ended=%v, want %s/%v", i, s.name, s.status, s.ended, w.name, w.status)
		}
	}
}

func TestMountContextUsesReconciler(t *testing.T) {
	doc := memdom.NewDocument()
	doc.AddRoot("root")
	tree := spanTree(doc)
	if err := tree.MountContext(context.Background(), "root"); err != nil {
		t.Fatal(err)
	}
	if tree.Reconciler().Document() != doc {
		t.Error("default reconciler should target the tree's document")
	}
	if tree.Root() == nil || tree.Current() == nil {
		t.Error("Root and Current should be set after mount")
	}
}

func TestCustomNodesExpand(t *testing.T) {
	reg := vdom.NewRegistry()
	reg.Register("Badge", func(typ string, props vdom.Props, children []*vdom.VNode) *vdom.VNode {
		return &vdom.VNode{Kind: vdom.KindElement, Type: typ, Props: props, Children: children,
			Comp: vdom.Func(func() *vdom.VNode {
				return vdom.H("b", nil, props["n"])
			})}
	})
	render := func(t *Tree) *vdom.VNode {
		return vdom.H("p", nil, reg.H("Badge", vdom.Props{"n": t.Get("x")}))
	}

	tests := []struct {
		name string
		opts []Option
	}{
		{"default reconciler", nil},
		{"with registry", []Option{WithRegistry(reg)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := memdom.NewDocument()
			root := doc.AddRoot("root")
			tree := New(doc, Config{Data: map[string]any{"x": 1}, Render: render}, tt.opts...)

			if err := tree.Mount("root"); err != nil {
				t.Fatalf("Mount: %v", err)
			}
			if err := tree.Set("x", 2); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if got := root.InnerHTML(); got != "<p><b>2</b></p>" {
				t.Errorf("html = %s, want <p><b>2</b></p>", got)
			}
		})
	}

	tree := New(memdom.NewDocument(), Config{Render: render}, WithRegistry(reg))
	if tree.Reconciler().Registry() != reg {
		t.Error("default reconciler should use the registry from WithRegistry")
	}
}
