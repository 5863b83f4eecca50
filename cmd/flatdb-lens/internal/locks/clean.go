package locks

import (
	"errors"
	"time"

	common "github.com/nspcc-dev/flatdb/cmd/flatdb-lens/internal"
	"github.com/nspcc-dev/flatdb/pkg/lock"
	"github.com/nspcc-dev/flatdb/pkg/util"
	"github.com/spf13/cobra"
)

var cleanCMD = &cobra.Command{
	Use:   "clean",
	Short: "Remove stale lock markers and temporary files",
	Long: `Remove lock markers whose owner process is gone along with temporary
files of interrupted writes older than the lock timeout. With --force every
marker and temporary file is removed, use it only when no process works with
the table.`,
	Args: cobra.NoArgs,
	Run:  cleanFunc,
}

func init() {
	addDirFlag(cleanCMD)
	cleanCMD.Flags().Bool(common.ForceFlagName, false, "Remove all markers and temporary files")
}

func cleanFunc(cmd *cobra.Command, _ []string) {
	env := common.NewEnv(cmd)
	defer env.Close()

	force, _ := cmd.Flags().GetBool(common.ForceFlagName)

	removed, err := clean(common.NewLocker(env), lockDir(cmd, env), force)
	for _, p := range removed {
		cmd.Printf("Removed %s\n", p)
	}
	common.ExitOnErr(cmd, common.Errf("clean table directory: %w", err))

	cmd.Printf("%d files removed\n", len(removed))
}

// clean removes stale markers and temporary files in dir. Both are tried
// even if one fails.
func clean(l *lock.Locker, dir string, force bool) ([]string, error) {
	markers, errLocks := l.Clean(dir, force)

	var age time.Duration
	if !force {
		age = l.Config().Timeout
	}
	temps, errTemp := util.CleanTemp(dir, age)

	return append(markers, temps...), errors.Join(errLocks, errTemp)
}
