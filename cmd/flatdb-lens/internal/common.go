package common

import (
	"fmt"
	"os"
	"sync"

	"github.com/nspcc-dev/flatdb/cmd/internal/cmderr"
	"github.com/spf13/cobra"
)

// Errf returns formatted error in errFmt format if err is not nil.
func Errf(errFmt string, err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf(errFmt, err)
}

// ExitOnErr calls exitOnErrCode with the code chosen by cmderr.Code.
func ExitOnErr(cmd *cobra.Command, err error) {
	if err != nil {
		exitOnErrCode(cmd, err, cmderr.Code(err))
	}
}

// exitOnErrCode prints error via cmd, runs exit hooks and calls os.Exit with
// passed exit code. Does nothing if err is nil.
func exitOnErrCode(cmd *cobra.Command, err error, code int) {
	if err != nil {
		cmd.PrintErrln(err)
		runExitHooks()
		os.Exit(code)
	}
}

// exitHooks are run by ExitOnErr since os.Exit skips deferred calls.
var exitHooks struct {
	sync.Mutex
	fns []func()
}

func onExit(f func()) {
	exitHooks.Lock()
	exitHooks.fns = append(exitHooks.fns, f)
	exitHooks.Unlock()
}

// runExitHooks runs registered hooks in reverse order and forgets them.
func runExitHooks() {
	exitHooks.Lock()
	fns := exitHooks.fns
	exitHooks.fns = nil
	exitHooks.Unlock()

	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
