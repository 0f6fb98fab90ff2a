package main

import (
	"fmt"
	"os"

	"github.com/rpggio/tasktory/internal/snapshot"
	"github.com/spf13/cobra"
)

func exportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export [path]",
		Short: "Write the task tree to a YAML snapshot (default snapshot.path)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts, os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			path := snapshotPath(a.cfg.Snapshot.Path, args)
			root, err := a.workspace.Tree(cmd.Context())
			if err != nil {
				return err
			}
			if err := snapshot.Save(path, root); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d tasks to %s\n", root.Size(), path)
			return nil
		},
	}
}

func mergeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "merge [path]",
		Short: "Merge a YAML snapshot into the stored tree",
		Long: `Merge a YAML snapshot, for example one exported on another machine, into the
stored tree. For every task the copy with the most recent work session wins;
work sessions from both copies are kept.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts, os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			path := snapshotPath(a.cfg.Snapshot.Path, args)
			other, err := snapshot.Load(path)
			if err != nil {
				return err
			}
			merged, err := a.workspace.Reconcile(cmd.Context(), other)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Merged %s, tree has %d tasks\n", path, merged.Size())
			return nil
		},
	}
}

func snapshotPath(configured string, args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return configured
}
