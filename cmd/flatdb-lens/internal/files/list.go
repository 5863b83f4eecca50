package files

import (
	"fmt"
	"slices"

	common "github.com/nspcc-dev/flatdb/cmd/flatdb-lens/internal"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var listCMD = &cobra.Command{
	Use:   "list",
	Short: "List files of the table",
	Args:  cobra.NoArgs,
	Run:   listFunc,
}

func init() {
	common.AddTableFlags(listCMD)
}

func listFunc(cmd *cobra.Command, _ []string) {
	env := common.NewEnv(cmd)
	defer env.Close()

	f := common.OpenFiles(cmd, env)

	all, err := f.GetAll(cmd.Context())
	common.ExitOnErr(cmd, common.Errf("read file table: %w", err))

	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := tablewriter.NewWriter(cmd.OutOrStdout())
	out.SetHeader([]string{"Key", "Path"})
	out.SetAutoWrapText(false)

	for _, k := range keys {
		out.Append([]string{k, all[k]})
	}

	out.SetFooter([]string{fmt.Sprintf("%d files", len(keys)), ""})
	out.Render()
}
