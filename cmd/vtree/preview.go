package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/vtree/internal/config"
	"github.com/vango-dev/vtree/internal/demo"
	"github.com/vango-dev/vtree/pkg/preview"
	"github.com/vango-dev/vtree/pkg/reconcile"
	"github.com/vango-dev/vtree/pkg/surface/memdom"
	"github.com/vango-dev/vtree/pkg/telemetry"
)

func previewCmd(flags *globalFlags) *cobra.Command {
	var (
		addr  string
		items []string
	)

	cmd := &cobra.Command{
		Use:   "preview [file]",
		Short: "Serve a live surface over HTTP",
		Long: `Serve a surface in the browser. Events dispatched from the page run
on the server and the resulting mutations stream back over WebSocket.

Without a file the built-in todo application is served. With a file the
tree it describes is rendered once.

Metrics of every reconciliation pass are exposed on /metrics.

Examples:
  vtree preview
  vtree preview --item milk --item eggs
  vtree preview app.yaml --addr :8080`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Preview.Addr = addr
			}
			var file string
			if len(args) == 1 {
				file = args[0]
			}
			return runPreview(cmd, cfg, file, items)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from vtree.yaml)")
	cmd.Flags().StringArrayVar(&items, "item", nil, "Todo item to add before serving (repeatable)")

	return cmd
}

func runPreview(cmd *cobra.Command, cfg *config.Config, file string, items []string) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv, err := newPreview(cmd.Context(), cfg, registry, file, items)
	if err != nil {
		return err
	}
	defer srv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	printBanner(out)
	success(out, "Preview ready at http://%s", cfg.Preview.Addr)
	info(out, "Press Ctrl+C to stop")
	fmt.Fprintln(out)

	return srv.ListenAndServe(ctx, cfg.Preview.Addr)
}

// newPreview mounts the demo application, or the tree file when file is
// set, and returns a preview server for it. Pass metrics are registered
// with registry.
func newPreview(ctx context.Context, cfg *config.Config, registry *prometheus.Registry, file string, items []string) (*preview.Server, error) {
	observer := telemetry.New(
		telemetry.WithNamespace(cfg.Metrics.Namespace),
		telemetry.WithRegistry(registry),
	)
	observe := reconcile.WithObserver(observer)

	if file != "" {
		if len(items) > 0 {
			return nil, argsError("--item only applies to the built-in application")
		}
		tree, err := loadTree(cfg, file, observe)
		if err != nil {
			return nil, err
		}
		srv := preview.New(tree.doc, tree.root,
			preview.WithGatherer(registry),
			preview.WithTitle(file))
		if err := srv.Do(func() error {
			_, err := tree.mount(ctx)
			return err
		}); err != nil {
			srv.Close()
			return nil, err
		}
		return srv, nil
	}

	doc := memdom.NewDocument()
	root := doc.AddRoot("root")
	app := demo.New(doc, append(cfg.ReconcileOptions(), observe)...)
	srv := preview.New(doc, root,
		preview.WithGatherer(registry),
		preview.WithTitle("vtree todos"))
	err := srv.Do(func() error {
		if err := app.Tree.MountContext(ctx, "root"); err != nil {
			return err
		}
		for _, item := range items {
			if err := app.SetDraft(item); err != nil {
				return err
			}
			if err := app.Tree.Call("add"); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		srv.Close()
		return nil, err
	}
	return srv, nil
}
