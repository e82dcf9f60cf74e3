// Package state wraps a data record so that writes re-render a mounted tree.
//
// A Tree owns a set of declared keys, a render function and optional
// methods. After Mount, every successful Set performs one synchronous
// render and reconcile pass against the mount point:
//
//	t := state.New(doc, state.Config{
//	    Data: map[string]any{"count": 0},
//	    Render: func(t *state.Tree) *vdom.VNode {
//	        return vdom.H("span", nil, t.Get("count"))
//	    },
//	})
//	if err := t.Mount("root"); err != nil {
//	    return err
//	}
//	count := state.Bind[int](t, "count")
//	_ = count.Set(count.Get() + 1) // surface now shows 1
//
// Writes are not batched: N writes cause N passes. A Tree is owned by a
// single goroutine and may be mounted once.
package state
