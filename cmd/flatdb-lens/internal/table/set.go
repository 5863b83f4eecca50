package table

import (
	"fmt"
	"io"
	"os"

	common "github.com/nspcc-dev/flatdb/cmd/flatdb-lens/internal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var setCMD = &cobra.Command{
	Use:   "set",
	Short: "Store a record by key",
	Long: `Store a record by key. The record is a YAML document passed in --value
or read from the file in --file ("-" for stdin).`,
	Args: cobra.NoArgs,
	Run:  setFunc,
}

const (
	valueFlagName = "value"
	fileFlagName  = "file"
)

func init() {
	common.AddTableFlags(setCMD)
	common.AddKeyFlag(setCMD)

	ff := setCMD.Flags()
	ff.String(valueFlagName, "", "Record as YAML document")
	ff.String(fileFlagName, "", "File with the record as YAML document")
	setCMD.MarkFlagsMutuallyExclusive(valueFlagName, fileFlagName)
}

func setFunc(cmd *cobra.Command, _ []string) {
	env := common.NewEnv(cmd)
	defer env.Close()

	data, err := readValue(cmd)
	common.ExitOnErr(cmd, err)

	var v any
	common.ExitOnErr(cmd, common.Errf("decode record: %w", yaml.Unmarshal(data, &v)))

	r, closer := common.OpenRecords(cmd, env)
	defer closer()

	key, _ := cmd.Flags().GetString(common.KeyFlagName)

	common.ExitOnErr(cmd, common.Errf("set record: %w", r.Set(cmd.Context(), key, v)))

	cmd.Printf("Record %s stored\n", key)
}

func readValue(cmd *cobra.Command) ([]byte, error) {
	if cmd.Flags().Changed(valueFlagName) {
		v, _ := cmd.Flags().GetString(valueFlagName)
		return []byte(v), nil
	}

	p, _ := cmd.Flags().GetString(fileFlagName)
	switch p {
	case "":
		return nil, fmt.Errorf("either --%s or --%s must be set", valueFlagName, fileFlagName)
	case "-":
		return io.ReadAll(cmd.InOrStdin())
	default:
		return os.ReadFile(p)
	}
}
