package reconcile

import (
	"testing"

	"github.com/vango-dev/vtree/pkg/surface/memdom"
	"github.com/vango-dev/vtree/pkg/vdom"
)

func firstElement(t *testing.T, root *memdom.Element) *memdom.Element {
	t.Helper()
	el, ok := root.ChildAt(0).(*memdom.Element)
	if !ok {
		t.Fatalf("root child is %v, want element", root.ChildAt(0))
	}
	return el
}

func TestBooleanPropLifecycle(t *testing.T) {
	doc := memdom.NewDocument()
	r := New(doc)
	on := h("button", vdom.Props{"disabled": true})
	root := mount(t, r, doc, on)
	btn := firstElement(t, root)

	if v, ok := btn.Attr("disabled"); !ok || v != "true" {
		t.Errorf("disabled attr = %q, %v", v, ok)
	}
	if v, _ := btn.Property("disabled"); v != true {
		t.Errorf("disabled property = %v, want true", v)
	}

	off := h("button", vdom.Props{})
	if err := r.Reconcile(root, off, on, 0); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if _, ok := btn.Attr("disabled"); ok {
		t.Error("disabled attr should be removed")
	}
	if v, _ := btn.Property("disabled"); v != false {
		t.Errorf("disabled property = %v, want false", v)
	}
}

func TestFalseBooleanRemoves(t *testing.T) {
	doc := memdom.NewDocument()
	r := New(doc)
	on := h("input", vdom.Props{"checked": true})
	root := mount(t, r, doc, on)
	in := firstElement(t, root)

	if err := r.Reconcile(root, h("input", vdom.Props{"checked": false}), on, 0); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if _, ok := in.Attr("checked"); ok {
		t.Error("checked attr should be removed")
	}
	if v, _ := in.Property("checked"); v != false {
		t.Errorf("checked property = %v, want false", v)
	}
}

func TestEventPropRegistersListener(t *testing.T) {
	doc := memdom.NewDocument()
	r := New(doc)
	clicks := 0
	root := mount(t, r, doc, h("button", vdom.Props{"onClick": func() { clicks++ }}, "go"))
	btn := firstElement(t, root)

	if _, ok := btn.Attr("onClick"); ok {
		t.Error("event prop must not become an attribute")
	}
	if n := btn.ListenerCount("click"); n != 1 {
		t.Errorf("click listeners = %d, want 1", n)
	}
	if err := btn.Click(); err != nil {
		t.Fatalf("Click: %v", err)
	}
	if clicks != 1 {
		t.Errorf("clicks = %d, want 1", clicks)
	}
}

func TestEventPropNotReboundOnRender(t *testing.T) {
	doc := memdom.NewDocument()
	r := New(doc)
	old := h("button", vdom.Props{"onClick": func() {}, "title": "a"})
	root := mount(t, r, doc, old)
	btn := firstElement(t, root)

	next := h("button", vdom.Props{"onClick": func() {}, "title": "b"})
	if err := r.Reconcile(root, next, old, 0); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if n := btn.ListenerCount("click"); n != 1 {
		t.Errorf("click listeners = %d, want 1", n)
	}
	if v, _ := btn.Attr("title"); v != "b" {
		t.Errorf("title = %q, want b", v)
	}
}

func TestClassNameChannel(t *testing.T) {
	doc := memdom.NewDocument()
	r := New(doc)
	old := h("p", vdom.Props{"className": "a"})
	root := mount(t, r, doc, old)
	p := firstElement(t, root)

	if got := p.AttrNames(); len(got) != 1 || got[0] != "class" {
		t.Errorf("attrs = %v, want [class]", got)
	}
	if err := r.Reconcile(root, h("p", vdom.Props{"className": ""}), old, 0); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if _, ok := p.Attr("class"); ok {
		t.Error("empty className should remove class")
	}
}

func TestCustomClassProp(t *testing.T) {
	doc := memdom.NewDocument()
	r := New(doc, WithClassProp("class", "class"), WithEventPrefix("on:"))
	n, err := r.Materialize(h("p", vdom.Props{"class": "x", "on:hover": func() {}}))
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	el := n.(*memdom.Element)
	if v, _ := el.Attr("class"); v != "x" {
		t.Errorf("class = %q", v)
	}
	if el.ListenerCount("hover") != 1 {
		t.Error("on:hover should register a hover listener")
	}
}

func TestZeroIsWritten(t *testing.T) {
	doc := memdom.NewDocument()
	n, err := New(doc).Materialize(h("progress", vdom.Props{"value": 0, "max": nil, "label": ""}))
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	el := n.(*memdom.Element)
	if v, ok := el.Attr("value"); !ok || v != "0" {
		t.Errorf("value = %q, %v; want 0 written", v, ok)
	}
	if got := el.AttrNames(); len(got) != 1 {
		t.Errorf("attrs = %v, want only value", got)
	}
}

func TestPropPolicy(t *testing.T) {
	tests := []struct {
		policy PropPolicy
		want   string
	}{
		{PolicyLegacy, "[function]"},
		{PolicyStrict, "plain"},
	}
	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			doc := memdom.NewDocument()
			r := New(doc, WithPropPolicy(tt.policy))
			old := h("div", vdom.Props{"data-cb": func() {}})
			root := mount(t, r, doc, old)
			div := firstElement(t, root)

			if err := r.Reconcile(root, h("div", vdom.Props{"data-cb": "plain"}), old, 0); err != nil {
				t.Fatalf("Reconcile: %v", err)
			}
			if v, _ := div.Attr("data-cb"); v != tt.want {
				t.Errorf("data-cb = %q, want %q", v, tt.want)
			}
		})
	}
}

func TestSliceProps(t *testing.T) {
	doc := memdom.NewDocument()
	r := New(doc)
	old := h("div", vdom.Props{"data-tags": []string{"a", "b"}})
	root := mount(t, r, doc, old)

	// Two slices are never strictly equal, so the attribute is rewritten
	// even when every element matches.
	same := h("div", vdom.Props{"data-tags": []string{"a", "b"}})
	if err := r.Reconcile(root, same, old, 0); err != nil {
		t.Fatal(err)
	}
	log := doc.Mutations()
	if len(log) != 1 || log[0].Op != memdom.OpSetAttr || log[0].Name != "data-tags" || log[0].Value != "a,b" {
		t.Errorf("mutations = %v, want one setAttr data-tags=a,b", log)
	}

	next := h("div", vdom.Props{"data-tags": []string{"a", "c"}})
	if err := r.Reconcile(root, next, same, 0); err != nil {
		t.Fatal(err)
	}
	if v, _ := firstElement(t, root).Attr("data-tags"); v != "a,c" {
		t.Errorf("data-tags = %q, want a,c", v)
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    PropPolicy
		wantErr bool
	}{
		{"", PolicyLegacy, false},
		{"legacy", PolicyLegacy, false},
		{" Strict ", PolicyStrict, false},
		{"loose", PolicyLegacy, true},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParsePolicy(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStatsAdd(t *testing.T) {
	a := Stats{Appended: 1, PropsSet: 2}
	b := Stats{Removed: 3, Listeners: 1}
	sum := a.Add(b)
	if sum.Mutations() != 7 {
		t.Errorf("Mutations() = %d, want 7", sum.Mutations())
	}
}
