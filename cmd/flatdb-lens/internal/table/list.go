package table

import (
	"fmt"
	"slices"

	common "github.com/nspcc-dev/flatdb/cmd/flatdb-lens/internal"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var listCMD = &cobra.Command{
	Use:   "list",
	Short: "List records of the table",
	Args:  cobra.NoArgs,
	Run:   listFunc,
}

const valuesFlagName = "values"

func init() {
	common.AddTableFlags(listCMD)
	listCMD.Flags().Bool(valuesFlagName, false, "Print record values")
}

func listFunc(cmd *cobra.Command, _ []string) {
	env := common.NewEnv(cmd)
	defer env.Close()

	r, closer := common.OpenRecords(cmd, env)
	defer closer()

	all, err := r.GetAll(cmd.Context())
	common.ExitOnErr(cmd, common.Errf("read table: %w", err))

	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	withValues, _ := cmd.Flags().GetBool(valuesFlagName)

	header := []string{"Chunk", "Key"}
	if withValues {
		header = append(header, "Value")
	}

	out := tablewriter.NewWriter(cmd.OutOrStdout())
	out.SetHeader(header)
	out.SetAutoWrapText(false)

	for _, k := range keys {
		chunk, err := r.Chunk(k)
		common.ExitOnErr(cmd, err)

		row := []string{chunk, k}
		if withValues {
			row = append(row, flowYAML(all[k]))
		}
		out.Append(row)
	}

	footer := make([]string, len(header))
	footer[1] = fmt.Sprintf("%d records", len(keys))
	out.SetFooter(footer)
	out.Render()
}

// flowYAML renders v in a single line.
func flowYAML(v any) string {
	var n yaml.Node
	if err := n.Encode(v); err != nil {
		return fmt.Sprint(v)
	}

	setFlow(&n)

	b, err := yaml.Marshal(&n)
	if err != nil {
		return fmt.Sprint(v)
	}

	return string(trimNewline(b))
}

func setFlow(n *yaml.Node) {
	if n.Kind == yaml.MappingNode || n.Kind == yaml.SequenceNode {
		n.Style |= yaml.FlowStyle
	}
	for _, c := range n.Content {
		setFlow(c)
	}
}

func trimNewline(b []byte) []byte {
	for len(b) > 0 && b[len(b)-1] == '\n' {
		b = b[:len(b)-1]
	}
	return b
}
