package main

import (
	"context"
	"os"

	common "github.com/nspcc-dev/flatdb/cmd/flatdb-lens/internal"
	"github.com/nspcc-dev/flatdb/cmd/flatdb-lens/internal/files"
	"github.com/nspcc-dev/flatdb/cmd/flatdb-lens/internal/locks"
	"github.com/nspcc-dev/flatdb/cmd/flatdb-lens/internal/table"
	"github.com/nspcc-dev/flatdb/cmd/internal/cmderr"
	"github.com/nspcc-dev/flatdb/misc"
	"github.com/nspcc-dev/flatdb/pkg/util/grace"
	"github.com/spf13/cobra"
)

var command = &cobra.Command{
	Use:           "flatdb-lens",
	Short:         "FlatDB Lens",
	Long:          `FlatDB Lens provides tools to browse, edit and repair flat file tables.`,
	RunE:          entryPoint,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func entryPoint(cmd *cobra.Command, _ []string) error {
	printVersion, _ := cmd.Flags().GetBool("version")
	if printVersion {
		cmd.Print(misc.BuildInfo("FlatDB Lens"))

		return nil
	}

	return cmd.Usage()
}

func init() {
	// use stdout as default output for cmd.Print()
	command.SetOut(os.Stdout)
	command.Flags().Bool("version", false, "Application version")
	common.AddConfigFlag(command)
	common.AddMetricsFlag(command)
	command.AddCommand(
		table.Root,
		files.Root,
		locks.Root,
	)
}

func main() {
	ctx, stop := grace.NewGracefulContext(context.Background(), nil)

	err := command.ExecuteContext(ctx)
	stop()
	cmderr.ExitOnErr(err)
}
