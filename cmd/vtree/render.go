package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vtree/internal/config"
	"github.com/vango-dev/vtree/pkg/reconcile"
	"github.com/vango-dev/vtree/pkg/surface/memdom"
	"github.com/vango-dev/vtree/pkg/treefile"
	"github.com/vango-dev/vtree/pkg/vdom"
)

func renderCmd(flags *globalFlags) *cobra.Command {
	var (
		pretty   bool
		annotate bool
		stats    bool
	)

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Materialize a tree file and print its HTML",
		Long: `Materialize a tree file onto an in-memory surface and print the
resulting HTML.

Examples:
  vtree render app.yaml
  vtree render app.yaml --pretty --stats`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			return runRender(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, args[0], renderOptions{
				html:  memdom.HTMLOptions{Pretty: pretty, AnnotateIDs: annotate},
				stats: stats,
			})
		},
	}

	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "Indent the HTML output")
	cmd.Flags().BoolVar(&annotate, "annotate", false, "Add node ids as "+memdom.IDAttr+" attributes")
	cmd.Flags().BoolVar(&stats, "stats", false, "Print pass statistics to stderr")

	return cmd
}

type renderOptions struct {
	html  memdom.HTMLOptions
	stats bool
}

func runRender(ctx context.Context, out, errOut io.Writer, cfg *config.Config, path string, opts renderOptions) error {
	tree, err := loadTree(cfg, path)
	if err != nil {
		return err
	}
	st, err := tree.mount(ctx)
	if err != nil {
		return err
	}
	fmt.Fprint(out, surfaceHTML(tree.root, opts.html))
	if opts.stats {
		printStats(errOut, st)
	}
	return nil
}

// loadedTree is a tree file built against a fresh surface.
type loadedTree struct {
	node *vdom.VNode
	doc  *memdom.Document
	root *memdom.Element
	rec  *reconcile.Reconciler
}

// loadTree parses path and builds its node tree against a fresh document
// whose root element has id "root".
func loadTree(cfg *config.Config, path string, opts ...reconcile.Option) (*loadedTree, error) {
	reg := vdom.NewRegistry()
	node, err := buildFile(path, reg)
	if err != nil {
		return nil, err
	}
	doc := memdom.NewDocument()
	ropts := append(cfg.ReconcileOptions(), reconcile.WithRegistry(reg))
	return &loadedTree{
		node: node,
		doc:  doc,
		root: doc.AddRoot("root"),
		rec:  reconcile.New(doc, append(ropts, opts...)...),
	}, nil
}

// buildFile registers the components of the tree file at path with reg
// and builds its root.
func buildFile(path string, reg *vdom.Registry) (*vdom.VNode, error) {
	file, err := treefile.Load(path)
	if err != nil {
		return nil, err
	}
	return file.Build(reg)
}

func (t *loadedTree) mount(ctx context.Context) (reconcile.Stats, error) {
	return t.rec.ReconcileContext(ctx, t.root, t.node, nil, 0)
}

// surfaceHTML serializes the children of root, one top-level node per
// line.
func surfaceHTML(root *memdom.Element, opts memdom.HTMLOptions) string {
	var b strings.Builder
	for _, c := range root.Children() {
		var nb strings.Builder
		_ = memdom.WriteHTML(&nb, c, opts)
		b.WriteString(strings.TrimRight(nb.String(), "\n"))
		b.WriteString("\n")
	}
	return b.String()
}

func printStats(w io.Writer, s reconcile.Stats) {
	fmt.Fprintf(w, "%d mutations: %d appended, %d removed, %d replaced, %d props set, %d props removed, %d listeners\n",
		s.Mutations(), s.Appended, s.Removed, s.Replaced, s.PropsSet, s.PropsRemoved, s.Listeners)
	fmt.Fprintf(w, "%d elements and %d texts created, %d expansions\n",
		s.ElementsCreated, s.TextsCreated, s.Expansions)
}
