package vtest

import (
	"context"
	"strings"
	"testing"

	"github.com/vango-dev/vtree/pkg/reconcile"
	"github.com/vango-dev/vtree/pkg/state"
	"github.com/vango-dev/vtree/pkg/surface/memdom"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// RootID is the id of the element a Surface mounts onto.
const RootID = "root"

// Surface is a document with a mount root, used by a single test.
type Surface struct {
	t       testing.TB
	Doc     *memdom.Document
	Root    *memdom.Element
	Rec     *reconcile.Reconciler
	current *vdom.VNode
}

// New creates a Surface. opts configure its reconciler.
func New(t testing.TB, opts ...reconcile.Option) *Surface {
	doc := memdom.NewDocument()
	return &Surface{
		t:    t,
		Doc:  doc,
		Root: doc.AddRoot(RootID),
		Rec:  reconcile.New(doc, opts...),
	}
}

// Mount appends node under the root and clears the mutation log.
func (s *Surface) Mount(node *vdom.VNode) *Surface {
	s.t.Helper()
	if s.current != nil {
		s.t.Fatal("vtest: surface already mounted")
	}
	if err := s.Rec.Reconcile(s.Root, node, nil, 0); err != nil {
		s.t.Fatalf("vtest: mount: %v", err)
	}
	s.current = node
	s.Doc.ResetMutations()
	return s
}

// MountTree mounts tree onto the root and clears the mutation log. The
// tree must have been created on s.Doc.
func (s *Surface) MountTree(tree *state.Tree) *Surface {
	s.t.Helper()
	if err := tree.Mount(RootID); err != nil {
		s.t.Fatalf("vtest: mount tree: %v", err)
	}
	s.Doc.ResetMutations()
	return s
}

// Update reconciles the mounted node into node. The mutation log is
// cleared first, so it holds only this pass afterwards.
func (s *Surface) Update(node *vdom.VNode) reconcile.Stats {
	s.t.Helper()
	if s.current == nil {
		s.t.Fatal("vtest: Update before Mount")
	}
	s.Doc.ResetMutations()
	stats, err := s.Rec.ReconcileContext(context.Background(), s.Root, node, s.current, 0)
	if err != nil {
		s.t.Fatalf("vtest: update: %v", err)
	}
	s.current = node
	return stats
}

// HTML returns the serialized children of the root.
func (s *Surface) HTML() string {
	return s.Root.InnerHTML()
}

// Find returns the first element matching selector, failing the test if
// there is none.
func (s *Surface) Find(selector string) *memdom.Element {
	s.t.Helper()
	all := s.FindAll(selector)
	if len(all) == 0 {
		s.t.Fatalf("vtest: no element matches %q in:\n%s", selector, truncate(s.HTML(), 500))
	}
	return all[0]
}

// FindAll returns the elements matching selector in document order.
func (s *Surface) FindAll(selector string) []*memdom.Element {
	match := parseSelector(selector)
	var out []*memdom.Element
	var walk func(n memdom.Node)
	walk = func(n memdom.Node) {
		el, ok := n.(*memdom.Element)
		if !ok {
			return
		}
		if el != s.Root && match(el) {
			out = append(out, el)
		}
		for _, c := range el.Children() {
			walk(c)
		}
	}
	walk(s.Root)
	return out
}

// Click clicks the first element matching selector.
func (s *Surface) Click(selector string) {
	s.t.Helper()
	if err := s.Find(selector).Click(); err != nil {
		s.t.Fatalf("vtest: click %s: %v", selector, err)
	}
}

// Input dispatches an input event carrying value to the first element
// matching selector.
func (s *Surface) Input(selector, value string) {
	s.t.Helper()
	el := s.Find(selector)
	if err := el.Dispatch(&memdom.Event{Type: "input", Target: el, Value: value}); err != nil {
		s.t.Fatalf("vtest: input %s: %v", selector, err)
	}
}

// ExpectText asserts the text content of the first element matching
// selector.
func (s *Surface) ExpectText(selector, want string) {
	s.t.Helper()
	if got := s.Find(selector).TextContent(); got != want {
		s.t.Errorf("text of %s = %q, want %q", selector, got, want)
	}
}

// ExpectContains asserts that the surface HTML contains expected.
func (s *Surface) ExpectContains(expected string) {
	s.t.Helper()
	if html := s.HTML(); !strings.Contains(html, expected) {
		s.t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that the surface HTML does not contain
// unexpected.
func (s *Surface) ExpectNotContains(unexpected string) {
	s.t.Helper()
	if html := s.HTML(); strings.Contains(html, unexpected) {
		s.t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// ExpectElement asserts that some element matches selector.
func (s *Surface) ExpectElement(selector string) {
	s.t.Helper()
	if len(s.FindAll(selector)) == 0 {
		s.t.Errorf("expected an element matching %q, got:\n%s", selector, truncate(s.HTML(), 500))
	}
}

// ExpectAttribute asserts an attribute of the first element matching
// selector.
func (s *Surface) ExpectAttribute(selector, attr, value string) {
	s.t.Helper()
	got, ok := s.Find(selector).Attr(attr)
	if !ok {
		s.t.Errorf("%s has no %s attribute", selector, attr)
		return
	}
	if got != value {
		s.t.Errorf("%s %s = %q, want %q", selector, attr, got, value)
	}
}

// ExpectNoAttribute asserts that the first element matching selector
// lacks attr.
func (s *Surface) ExpectNoAttribute(selector, attr string) {
	s.t.Helper()
	if got, ok := s.Find(selector).Attr(attr); ok {
		s.t.Errorf("%s %s = %q, want no attribute", selector, attr, got)
	}
}

// ExpectMutations asserts how many mutations of kind op the log holds.
func (s *Surface) ExpectMutations(op memdom.MutationOp, want int) {
	s.t.Helper()
	if got := memdom.Count(s.Doc.Mutations(), op); got != want {
		s.t.Errorf("%s mutations = %d, want %d\n%v", op, got, want, s.Doc.Mutations())
	}
}

// RenderToString materializes node in a fresh document and returns its
// HTML, or the empty string if materialization fails.
func RenderToString(node *vdom.VNode, opts ...reconcile.Option) string {
	n, err := reconcile.New(memdom.NewDocument(), opts...).Materialize(node)
	if err != nil {
		return ""
	}
	return memdom.OuterHTML(n.(memdom.Node))
}

func parseSelector(selector string) func(*memdom.Element) bool {
	if id, ok := strings.CutPrefix(selector, "#"); ok {
		return func(e *memdom.Element) bool {
			v, _ := e.Attr("id")
			return v == id
		}
	}
	tag, class, _ := strings.Cut(selector, ".")
	return func(e *memdom.Element) bool {
		if tag != "" && e.Tag() != tag {
			return false
		}
		return class == "" || hasClass(e, class)
	}
}

func hasClass(e *memdom.Element, class string) bool {
	v, _ := e.Attr("class")
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
