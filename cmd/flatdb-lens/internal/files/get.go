package files

import (
	"fmt"

	common "github.com/nspcc-dev/flatdb/cmd/flatdb-lens/internal"
	"github.com/spf13/cobra"
)

var getCMD = &cobra.Command{
	Use:   "get",
	Short: "Print path of the file stored by key",
	Args:  cobra.NoArgs,
	Run:   getFunc,
}

func init() {
	common.AddTableFlags(getCMD)
	common.AddKeyFlag(getCMD)
}

func getFunc(cmd *cobra.Command, _ []string) {
	env := common.NewEnv(cmd)
	defer env.Close()

	f := common.OpenFiles(cmd, env)

	key, _ := cmd.Flags().GetString(common.KeyFlagName)

	p, ok, err := f.Get(key)
	common.ExitOnErr(cmd, common.Errf("get file: %w", err))

	if !ok {
		common.ExitOnErr(cmd, fmt.Errorf("file %s not found", key))
	}

	cmd.Println(p)
}
