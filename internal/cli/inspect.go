package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/objgraph/pkg/envelope"
	"github.com/matzehuels/objgraph/pkg/errors"
)

func (c *CLI) inspectCommand() *cobra.Command {
	var asJSON, decode bool

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print statistics for an envelope file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(args[0], asJSON, decode)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print statistics as JSON")
	cmd.Flags().BoolVar(&decode, "decode", false, "also decode the envelope with the built-in registry")
	return cmd
}

func (c *CLI) runInspect(path string, asJSON, decode bool) error {
	env, err := envelope.ImportFile(path)
	if err != nil {
		return err
	}
	stats := env.Stats()

	if asJSON {
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, string(data))
	} else {
		printStats(filepath.Base(path), stats)
	}

	if err := env.Validate(); err != nil {
		printWarning("envelope does not validate: %s", errors.UserMessage(err))
		return nil
	}
	if decode {
		if _, err := c.newSerializer().Deserialize(env); err != nil {
			printError("decode failed: %s", errors.UserMessage(err))
			printDetail("code: %s", errors.GetCode(err))
			return err
		}
		printSuccess("Decoded %d records", stats.Records)
	}
	return nil
}
