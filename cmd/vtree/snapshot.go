package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vango-dev/vtree/internal/config"
	"github.com/vango-dev/vtree/pkg/snapshot"
)

func snapshotCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save and inspect rendered surfaces",
		Long: `Save the rendered surface of a tree file and inspect saved snapshots.

Snapshots are stored in the directory or S3 bucket configured in the
snapshot section of vtree.yaml.`,
	}

	cmd.AddCommand(
		snapshotSaveCmd(flags),
		snapshotListCmd(flags),
		snapshotShowCmd(flags),
	)
	return cmd
}

func snapshotSaveCmd(flags *globalFlags) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "save <file>",
		Short: "Render a tree file and store the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := openStore(cmd, flags)
			if err != nil {
				return err
			}
			if name == "" {
				name = args[0]
			}
			id, err := runSnapshotSave(cmd.Context(), cfg, store, args[0], name)
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Saved snapshot %s", id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Snapshot name (default: the file path)")

	return cmd
}

func snapshotListCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := openStore(cmd, flags)
			if err != nil {
				return err
			}
			return runSnapshotList(cmd.Context(), cmd.OutOrStdout(), store)
		},
	}
}

func snapshotShowCmd(flags *globalFlags) *cobra.Command {
	var mutations bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := openStore(cmd, flags)
			if err != nil {
				return err
			}
			snap, err := store.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			writeSnapshot(cmd.OutOrStdout(), snap, mutations)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&mutations, "mutations", "m", false, "Include the mutation log")

	return cmd
}

func openStore(cmd *cobra.Command, flags *globalFlags) (*config.Config, snapshot.Store, error) {
	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return nil, nil, err
	}
	store, err := newStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, store, nil
}

// newStore returns the snapshot store selected by cfg.
func newStore(cfg *config.Config) (snapshot.Store, error) {
	if cfg.Snapshot.Store == config.StoreS3 {
		s3cfg := cfg.Snapshot.S3
		client := snapshot.NewS3Client(snapshot.S3Options{
			Region:    s3cfg.Region,
			Endpoint:  s3cfg.Endpoint,
			PathStyle: s3cfg.PathStyle,
		})
		return snapshot.NewS3Store(client, s3cfg.Bucket, s3cfg.Prefix), nil
	}
	return snapshot.NewFileStore(cfg.SnapshotDir())
}

func runSnapshotSave(ctx context.Context, cfg *config.Config, store snapshot.Store, path, name string) (string, error) {
	tree, err := loadTree(cfg, path)
	if err != nil {
		return "", err
	}
	if _, err := tree.mount(ctx); err != nil {
		return "", err
	}
	return store.Save(ctx, snapshot.Capture(tree.doc, tree.root, name))
}

func runSnapshotList(ctx context.Context, w io.Writer, store snapshot.Store) error {
	ids, err := store.List(ctx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		info(w, "No snapshots")
		return nil
	}
	for _, id := range ids {
		snap, err := store.Load(ctx, id)
		if err != nil {
			warn(w, "%s: %v", id, err)
			continue
		}
		fmt.Fprintf(w, "%s  %s  %s\n", id, snap.CreatedAt.Format("2006-01-02 15:04:05"), snap.Name)
	}
	return nil
}

func writeSnapshot(w io.Writer, snap *snapshot.Snapshot, mutations bool) {
	bold := color.New(color.Bold)
	fmt.Fprintf(w, "%s %s\n", bold.Sprint("Snapshot"), snap.ID)
	info(w, "Name:    %s", snap.Name)
	info(w, "Created: %s", snap.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.TrimRight(snap.HTML, "\n"))
	if mutations {
		fmt.Fprintln(w)
		writeMutations(w, snap.Mutations, true)
	}
}
