package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/objgraph/pkg/config"
	"github.com/matzehuels/objgraph/pkg/envelope"
	"github.com/matzehuels/objgraph/pkg/snapshot"
	"github.com/matzehuels/objgraph/pkg/store"
)

func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage snapshots in the configured store",
	}

	cmd.AddCommand(c.storePutCommand())
	cmd.AddCommand(c.storeGetCommand())
	cmd.AddCommand(c.storeDeleteCommand())
	cmd.AddCommand(c.storeListCommand())
	cmd.AddCommand(c.storeBrowseCommand())
	cmd.AddCommand(c.storePathCommand())

	return cmd
}

// withRunner opens the configured store for the duration of fn.
func (c *CLI) withRunner(ctx context.Context, fn func(*snapshot.Runner) error) error {
	r, closeFn, err := c.openRunner(ctx)
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(r)
}

func (c *CLI) storePutCommand() *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "put <file>",
		Short: "Store an envelope file as a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := envelope.ImportFile(args[0])
			if err != nil {
				return err
			}
			if id == "" {
				id = store.NewID()
			}
			return c.withRunner(cmd.Context(), func(r *snapshot.Runner) error {
				prog := newProgress(c.Logger)
				if err := r.SaveEnvelope(cmd.Context(), id, env); err != nil {
					return err
				}
				prog.done("Saved snapshot")
				printSuccess("Stored %s", id)
				printDetail("key: %s", r.Key(id))
				printNextStep("Fetch it with", appName+" store get "+id)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "snapshot id (default: generated)")
	return cmd
}

func (c *CLI) storeGetCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:               "get <id>",
		Short:             "Fetch a snapshot envelope",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeSnapshotIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRunner(cmd.Context(), func(r *snapshot.Runner) error {
				env, err := r.LoadEnvelope(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if output == "" || output == "-" {
					return env.Write(stdout)
				}
				if err := env.ExportFile(output); err != nil {
					return err
				}
				printSuccess("Fetched %s", args[0])
				printFile(output)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

func (c *CLI) storeDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "delete <id>",
		Short:             "Delete a snapshot",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeSnapshotIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRunner(cmd.Context(), func(r *snapshot.Runner) error {
				if err := r.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				printSuccess("Deleted %s", args[0])
				return nil
			})
		},
	}
}

func (c *CLI) storeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List snapshot ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRunner(cmd.Context(), func(r *snapshot.Runner) error {
				ids, err := r.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(ids) == 0 {
					printInfo("No snapshots in namespace %s", r.Namespace)
					return nil
				}
				for _, id := range ids {
					fmt.Fprintln(stdout, id)
				}
				return nil
			})
		},
	}
}

func (c *CLI) storeBrowseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Pick a snapshot interactively and inspect it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRunner(cmd.Context(), func(r *snapshot.Runner) error {
				items, err := loadItems(cmd.Context(), r)
				if err != nil {
					return err
				}
				if len(items) == 0 {
					printInfo("No snapshots in namespace %s", r.Namespace)
					return nil
				}

				final, err := tea.NewProgram(NewSnapshotListModel(items), tea.WithContext(cmd.Context())).Run()
				if err != nil {
					return err
				}
				m, ok := final.(SnapshotListModel)
				if !ok || m.Selected == nil {
					return nil
				}
				printStats(m.Selected.ID, m.Selected.Stats)
				return nil
			})
		},
	}
}

func loadItems(ctx context.Context, r *snapshot.Runner) ([]SnapshotItem, error) {
	ids, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]SnapshotItem, len(ids))
	for i, id := range ids {
		items[i].ID = id
		env, err := r.LoadEnvelope(ctx, id)
		if err != nil {
			items[i].Err = err
			continue
		}
		items[i].Stats = env.Stats()
	}
	return items, nil
}

func (c *CLI) storePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the file store directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.Config.Store.Backend != config.BackendFile {
				printWarning("store backend is %s, not %s", c.Config.Store.Backend, config.BackendFile)
			}
			dir := c.Config.Store.Dir
			if dir == "" {
				var err error
				if dir, err = store.DefaultDir(); err != nil {
					return err
				}
			}
			fmt.Fprintln(stdout, dir)
			return nil
		},
	}
}
