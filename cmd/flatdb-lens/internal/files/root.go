package files

import (
	"github.com/spf13/cobra"
)

// Root contains `files` command definition.
var Root = &cobra.Command{
	Use:   "files",
	Short: "Operations with a file table",
}

func init() {
	Root.AddCommand(
		listCMD,
		getCMD,
		importCMD,
	)
}
