package table

import (
	"github.com/spf13/cobra"
)

// Root contains `table` command definition.
var Root = &cobra.Command{
	Use:   "table",
	Short: "Operations with a table of records",
}

func init() {
	Root.AddCommand(
		listCMD,
		getCMD,
		setCMD,
		removeCMD,
		dumpCMD,
	)
}
