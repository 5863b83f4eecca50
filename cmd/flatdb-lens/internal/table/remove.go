package table

import (
	common "github.com/nspcc-dev/flatdb/cmd/flatdb-lens/internal"
	"github.com/spf13/cobra"
)

var removeCMD = &cobra.Command{
	Use:   "remove",
	Short: "Remove the record stored by key",
	Args:  cobra.NoArgs,
	Run:   removeFunc,
}

func init() {
	common.AddTableFlags(removeCMD)
	common.AddKeyFlag(removeCMD)
}

func removeFunc(cmd *cobra.Command, _ []string) {
	env := common.NewEnv(cmd)
	defer env.Close()

	r, closer := common.OpenRecords(cmd, env)
	defer closer()

	key, _ := cmd.Flags().GetString(common.KeyFlagName)

	_, ok, err := r.Remove(cmd.Context(), key)
	common.ExitOnErr(cmd, common.Errf("remove record: %w", err))

	if !ok {
		cmd.Printf("Record %s not found\n", key)
		return
	}

	cmd.Printf("Record %s removed\n", key)
}
