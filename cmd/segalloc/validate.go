package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/segalloc/internal/driver"
)

func newValidateCmd(a *app) *cobra.Command {
	var rf replayFlags
	cmd := &cobra.Command{
		Use:   "validate <trace>...",
		Short: "Replay traces with a heap check after every operation",
		Long: `The validate command replays traces with full heap validation after each
operation and stops at the first inconsistency, naming the trace line that
exposed it.

Example:
  segalloc validate short1.rep
  segalloc validate --no-slabs traces/*.rep`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			traces, err := loadTraces(a, args)
			if err != nil {
				return err
			}

			cfg := rf.config()
			cfg.Check = true
			cfg.FailFast = true
			report, err := driver.Run(cmd.Context(), traces, cfg)
			if err != nil {
				return err
			}
			for _, res := range report.Results {
				a.printInfo("%s: ok, %d ops, heap %d bytes\n", res.Trace, res.Ops, res.HeapSize)
			}
			return nil
		},
	}
	rf.register(cmd)
	return cmd
}
