package reconcile

import (
	"fmt"
	"testing"

	"github.com/vango-dev/vtree/pkg/surface/memdom"
	"github.com/vango-dev/vtree/pkg/vdom"
)

func benchList(n int, label string) *vdom.VNode {
	items := make([]*vdom.VNode, n)
	for i := range items {
		items[i] = h("li", vdom.Props{"className": "row", "data-i": i}, label, i)
	}
	return h("ul", nil, items)
}

func BenchmarkMaterialize(b *testing.B) {
	for _, n := range []int{10, 100, 1000} {
		b.Run(fmt.Sprintf("%d rows", n), func(b *testing.B) {
			node := benchList(n, "row ")
			r := New(memdom.NewDocument())
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := r.Materialize(node); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkReconcile(b *testing.B) {
	for _, n := range []int{10, 100, 1000} {
		b.Run(fmt.Sprintf("%d rows unchanged", n), func(b *testing.B) {
			doc := memdom.NewDocument()
			root := doc.AddRoot("root")
			r := New(doc)
			a, c := benchList(n, "row "), benchList(n, "row ")
			if err := r.Reconcile(root, a, nil, 0); err != nil {
				b.Fatal(err)
			}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := r.Reconcile(root, c, a, 0); err != nil {
					b.Fatal(err)
				}
			}
		})

		b.Run(fmt.Sprintf("%d rows relabeled", n), func(b *testing.B) {
			doc := memdom.NewDocument()
			root := doc.AddRoot("root")
			r := New(doc)
			trees := [2]*vdom.VNode{benchList(n, "a "), benchList(n, "b ")}
			if err := r.Reconcile(root, trees[0], nil, 0); err != nil {
				b.Fatal(err)
			}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				next, prev := trees[(i+1)%2], trees[i%2]
				if err := r.Reconcile(root, next, prev, 0); err != nil {
					b.Fatal(err)
				}
				doc.ResetMutations()
			}
		})
	}
}
