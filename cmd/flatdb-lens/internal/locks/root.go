package locks

import (
	"github.com/spf13/cobra"
)

// Root contains `locks` command definition.
var Root = &cobra.Command{
	Use:   "locks",
	Short: "Inspect and clean up chunk lock markers",
	Long: `Inspect and clean up chunk lock markers. Markers left by crashed
processes block writers of the chunk until removed.`,
}

func init() {
	Root.AddCommand(
		listCMD,
		cleanCMD,
	)
}

func addDirFlag(cmd *cobra.Command) {
	cmd.Flags().String("dir", "", "Directory to search for lock markers (table directory from config by default)")
}
