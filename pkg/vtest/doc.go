// Package vtest provides testing helpers for code that renders virtual
// node trees.
//
// A Surface is an in-memory document with a mounted root element and a
// reconciler. Helpers fail the test instead of returning errors, so tests
// read as a sequence of renders and assertions.
//
// # Quick Start
//
//	func TestGreeting(t *testing.T) {
//	    s := vtest.New(t, reconcile.WithRegistry(reg))
//	    s.Mount(reg.H("Greeting", vdom.Props{"name": "Ada"}))
//	    s.ExpectContains("Hello, Ada")
//
//	    s.Update(reg.H("Greeting", vdom.Props{"name": "Grace"}))
//	    s.ExpectMutations(memdom.OpCreateElement, 0)
//	}
//
// # Reactive Trees
//
// A state.Tree created on s.Doc mounts onto the surface root:
//
//	s := vtest.New(t)
//	tree := state.New(s.Doc, cfg)
//	s.MountTree(tree)
//	s.Click("button.add")
//	s.ExpectText(".counter", "1 item")
//
// # Selectors
//
// Find, FindAll and Click accept a tag name, a class (".todo"), an id
// ("#app") or a tag with a class ("li.todo").
//
// # Render Assertions
//
// ExpectContains, ExpectNotContains, ExpectElement and ExpectAttribute
// assert on the serialized HTML of the surface root's children.
package vtest
