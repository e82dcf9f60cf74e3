package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/vango-dev/vtree/internal/config"
	"github.com/vango-dev/vtree/pkg/surface/memdom"
)

func diffCmd(flags *globalFlags) *cobra.Command {
	var opts diffOptions

	cmd := &cobra.Command{
		Use:   "diff <old> <new>",
		Short: "Reconcile one tree file into another",
		Long: `Materialize <old>, reconcile it into <new> and print the surface
mutations of the update pass followed by a line diff of the HTML.

Components defined in <new> replace those of <old> with the same name.

Examples:
  vtree diff before.yaml after.yaml
  vtree diff before.yaml after.yaml --all --no-html`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			return runDiff(cmd.Context(), cmd.OutOrStdout(), cfg, args[0], args[1], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.all, "all", false, "Include node creation in the mutation log")
	cmd.Flags().BoolVar(&opts.noHTML, "no-html", false, "Skip the HTML diff")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "Print pass statistics")

	return cmd
}

type diffOptions struct {
	all    bool
	noHTML bool
	stats  bool
}

func runDiff(ctx context.Context, out io.Writer, cfg *config.Config, oldPath, newPath string, opts diffOptions) error {
	tree, err := loadTree(cfg, oldPath)
	if err != nil {
		return err
	}
	newNode, err := buildFile(newPath, tree.rec.Registry())
	if err != nil {
		return err
	}
	if _, err := tree.mount(ctx); err != nil {
		return err
	}
	html := memdom.HTMLOptions{Pretty: true}
	before := surfaceHTML(tree.root, html)
	tree.doc.ResetMutations()

	stats, err := tree.rec.ReconcileContext(ctx, tree.root, newNode, tree.node, 0)
	if err != nil {
		return err
	}

	log := tree.doc.Mutations()
	writeMutations(out, log, opts.all)
	if opts.stats {
		fmt.Fprintln(out)
		printStats(out, stats)
	}
	if !opts.noHTML {
		fmt.Fprintln(out)
		if !writeLineDiff(out, before, surfaceHTML(tree.root, html)) {
			info(out, "HTML unchanged")
		}
	}
	return nil
}

// writeMutations prints the mutation log. Creation of detached nodes is
// left out unless all is set.
func writeMutations(w io.Writer, log []memdom.Mutation, all bool) {
	var shown []memdom.Mutation
	for _, m := range log {
		if !all && (m.Op == memdom.OpCreateElement || m.Op == memdom.OpCreateText) {
			continue
		}
		shown = append(shown, m)
	}
	if len(shown) == 0 {
		success(w, "No mutations")
		return
	}
	fmt.Fprintf(w, "%s\n", color.New(color.Bold).Sprintf("%d mutations", len(shown)))
	for _, m := range shown {
		line := m.String()
		if m.IsStructural() {
			line = color.YellowString("%s", line)
		}
		info(w, "%s", line)
	}
}

// writeLineDiff prints a line diff of before and after. Nothing is
// printed when the two are equal; the result reports whether they differ.
func writeLineDiff(w io.Writer, before, after string) bool {
	dmp := diffpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)
	if len(diffs) == 0 || (len(diffs) == 1 && diffs[0].Type == diffpatch.DiffEqual) {
		return false
	}

	for _, d := range diffs {
		for _, line := range splitLines(d.Text) {
			switch d.Type {
			case diffpatch.DiffInsert:
				fmt.Fprintln(w, color.GreenString("+ %s", line))
			case diffpatch.DiffDelete:
				fmt.Fprintln(w, color.RedString("- %s", line))
			case diffpatch.DiffEqual:
				fmt.Fprintf(w, "  %s\n", line)
			}
		}
	}
	return true
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
