package main

import (
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			a.printer.Fprintf(a.out, "segalloc %s\n", version)
			a.printer.Fprintf(a.out, "  commit: %s\n", commit)
			a.printer.Fprintf(a.out, "  built: %s\n", date)
		},
	}
}
