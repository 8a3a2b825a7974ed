package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/segalloc/internal/logger"
	"github.com/joshuapare/segalloc/internal/trace"
)

func newGenCmd(a *app) *cobra.Command {
	var (
		opts   trace.GenOptions
		output string
	)
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate a random trace",
		Long: `The gen command writes a random but well-formed trace. Every id is freed by
the end of the trace. Equal seeds produce equal traces.

Example:
  segalloc gen --ops 10000 --seed 7 -o random.rep
  segalloc gen --max-size 512 | segalloc run /dev/stdin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := trace.Generate(opts)

			if output == "" || output == "-" {
				return t.Write(cmd.OutOrStdout())
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create trace file: %w", err)
			}
			if err := t.Write(f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			logger.Info("trace written", "path", output, "ops", len(t.Ops), "seed", opts.Seed)
			a.printVerbose("Wrote %d ops (%d ids) to %s\n", len(t.Ops), t.Header.IDs, output)
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.Ops, "ops", 1000, "Number of operations")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 1, "Random seed")
	cmd.Flags().IntVar(&opts.MaxSize, "max-size", 1<<16, "Largest request in bytes")
	cmd.Flags().StringVar(&opts.Name, "name", "", "Trace name")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}
