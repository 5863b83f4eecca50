package table

import (
	"fmt"

	common "github.com/nspcc-dev/flatdb/cmd/flatdb-lens/internal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var getCMD = &cobra.Command{
	Use:   "get",
	Short: "Print the record stored by key",
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

	r, closer := common.OpenRecords(cmd, env)
	defer closer()

	key, _ := cmd.Flags().GetString(common.KeyFlagName)

	v, ok, err := r.Get(key)
	common.ExitOnErr(cmd, common.Errf("get record: %w", err))

	if !ok {
		common.ExitOnErr(cmd, fmt.Errorf("record %s not found", key))
	}

	b, err := yaml.Marshal(v)
	common.ExitOnErr(cmd, common.Errf("encode record: %w", err))

	cmd.Print(string(b))
}
