package cli

import (
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/objgraph/pkg/envelope"
	"github.com/matzehuels/objgraph/pkg/errors"
)

func (c *CLI) validateCommand() *cobra.Command {
	var jobs int

	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check envelope files for structural errors",
		Long: `Validate parses each envelope and checks that every local reference is in
range and that ancestry has no cycles. Files are checked concurrently.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(cmd.Context(), args, jobs)
		},
	}

	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "number of files checked in parallel")
	return cmd
}

func (c *CLI) runValidate(ctx context.Context, paths []string, jobs int) error {
	prog := newProgress(c.Logger)
	results := make([]error, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(jobs, 1))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = validateFile(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := 0
	for i, path := range paths {
		if err := results[i]; err != nil {
			failed++
			printError("%s: %s", path, errors.UserMessage(err))
			if code := errors.GetCode(err); code != "" {
				printDetail("code: %s", code)
			}
			continue
		}
		printSuccess("%s", path)
	}
	prog.done(fmt.Sprintf("Validated %d files", len(paths)))

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed validation", failed, len(paths))
	}
	return nil
}

func validateFile(path string) error {
	env, err := envelope.ImportFile(path)
	if err != nil {
		return err
	}
	return env.Validate()
}
