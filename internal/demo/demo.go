// Package demo is a small todo application used by the preview command
// and as an end-to-end exercise of components and reactive state.
package demo

import (
	"strings"

	"github.com/vango-dev/vtree/pkg/component"
	"github.com/vango-dev/vtree/pkg/reconcile"
	"github.com/vango-dev/vtree/pkg/state"
	"github.com/vango-dev/vtree/pkg/surface"
	"github.com/vango-dev/vtree/pkg/surface/memdom"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// App is the todo application.
type App struct {
	Tree     *state.Tree
	Registry *vdom.Registry

	items *state.State[[]string]
	draft *state.State[string]
}

// Registry returns a registry holding the demo components.
func Registry() *vdom.Registry {
	reg := vdom.NewRegistry()
	component.Define(reg, component.Definition{
		Name: "TodoItem",
		Render: func(c *component.Ctx) *vdom.VNode {
			return vdom.H("li", vdom.Props{"className": "todo"},
				vdom.H("span", nil, c.String("text")),
				vdom.H("button", vdom.Props{"className": "remove", "onClick": c.Prop("onRemove")}, "×"),
			)
		},
	})
	component.Define(reg, component.Definition{
		Name: "Counter",
		Render: func(c *component.Ctx) *vdom.VNode {
			n, _ := c.Prop("n").(int)
			label := "items"
			if n == 1 {
				label = "item"
			}
			return vdom.H("p", vdom.Props{"className": "counter", "data-empty": n == 0}, n, " ", label)
		},
	})
	return reg
}

// New creates the app on doc. Call Tree.Mount to render it.
func New(doc surface.Document, opts ...reconcile.Option) *App {
	reg := Registry()
	rec := reconcile.New(doc, append([]reconcile.Option{reconcile.WithRegistry(reg)}, opts...)...)

	app := &App{Registry: reg}
	app.Tree = state.New(doc, state.Config{
		Data: map[string]any{
			"items": []string{},
			"draft": "",
		},
		Methods: map[string]state.Method{
			"add":    app.add,
			"remove": app.remove,
			"clear":  app.clear,
		},
		Render: app.render,
	}, state.WithReconciler(rec))
	app.items = state.Bind[[]string](app.Tree, "items")
	app.draft = state.Bind[string](app.Tree, "draft")
	return app
}

// Items returns the current todo items.
func (a *App) Items() []string { return a.items.Get() }

// SetDraft sets the input value.
func (a *App) SetDraft(s string) error { return a.draft.Set(s) }

func (a *App) add(t *state.Tree, _ ...any) error {
	text := strings.TrimSpace(a.draft.Get())
	if text == "" {
		return nil
	}
	items := append(append([]string(nil), a.items.Get()...), text)
	if err := a.items.Set(items); err != nil {
		return err
	}
	return a.draft.Set("")
}

func (a *App) remove(t *state.Tree, args ...any) error {
	if len(args) == 0 {
		return nil
	}
	i, ok := args[0].(int)
	items := a.items.Get()
	if !ok || i < 0 || i >= len(items) {
		return nil
	}
	next := make([]string, 0, len(items)-1)
	next = append(next, items[:i]...)
	next = append(next, items[i+1:]...)
	return a.items.Set(next)
}

func (a *App) clear(t *state.Tree, _ ...any) error {
	return a.items.Set([]string{})
}

func (a *App) render(t *state.Tree) *vdom.VNode {
	items := a.items.Get()
	rows := make([]*vdom.VNode, len(items))
	for i, text := range items {
		rows[i] = a.Registry.H("TodoItem", vdom.Props{
			"text":     text,
			"onRemove": t.Handler("remove", i),
		})
	}

	return vdom.H("div", vdom.Props{"className": "app"},
		vdom.H("h1", nil, "Todos"),
		a.Registry.H("Counter", vdom.Props{"n": len(items)}),
		vdom.H("input", vdom.Props{
			"value":   a.draft.Get(),
			"onInput": func(ev *memdom.Event) error { return a.draft.Set(ev.Value) },
		}),
		vdom.H("button", vdom.Props{"className": "add", "onClick": t.Handler("add")}, "Add"),
		vdom.H("button", vdom.Props{"className": "clear", "onClick": t.Handler("clear"), "disabled": len(items) == 0}, "Clear"),
		vdom.H("ul", nil, rows),
	)
}
