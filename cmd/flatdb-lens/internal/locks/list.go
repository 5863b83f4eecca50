package locks

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	common "github.com/nspcc-dev/flatdb/cmd/flatdb-lens/internal"
	flatcommon "github.com/nspcc-dev/flatdb/pkg/common"
	"github.com/nspcc-dev/flatdb/pkg/lock"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var listCMD = &cobra.Command{
	Use:   "list",
	Short: "List lock markers with their owners",
	Args:  cobra.NoArgs,
	Run:   listFunc,
}

func init() {
	addDirFlag(listCMD)
}

func listFunc(cmd *cobra.Command, _ []string) {
	env := common.NewEnv(cmd)
	defer env.Close()

	dir := lockDir(cmd, env)

	found, err := common.NewLocker(env).Find(dir)
	common.ExitOnErr(cmd, common.Errf("find lock markers: %w", err))

	out := tablewriter.NewWriter(cmd.OutOrStdout())
	out.SetHeader([]string{"Marker", "PID", "Host", "Created", "Alive"})
	out.SetAutoWrapText(false)

	for _, p := range found {
		out.Append(ownerRow(p))
	}

	out.Render()
}

func ownerRow(p string) []string {
	o, err := lock.ReadOwner(p)
	if err != nil {
		reason := "unreadable"
		if errors.Is(err, flatcommon.ErrDecode) {
			reason = "no owner"
		}
		return []string{p, "-", "-", "-", reason}
	}

	return []string{
		p,
		strconv.Itoa(o.PID),
		o.Host,
		o.Created.Format(time.RFC3339),
		fmt.Sprint(o.Alive()),
	}
}

func lockDir(cmd *cobra.Command, env common.Env) string {
	if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
		return dir
	}

	s, err := common.ReadTableSettings(cmd, env.Config)
	common.ExitOnErr(cmd, err)

	return s.Dir
}
