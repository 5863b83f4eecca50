package files

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"

	"github.com/cheggaaa/pb"
	common "github.com/nspcc-dev/flatdb/cmd/flatdb-lens/internal"
	"github.com/nspcc-dev/flatdb/cmd/flatdb-lens/internal/store"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var importCMD = &cobra.Command{
	Use:   "import <directory>",
	Short: "Copy files of a directory into the table",
	Long: `Copy regular files of a directory into the table. Files are keyed by
the hash of their content: SHA-1 for 20-byte keys and SHA-256 for 32-byte keys.`,
	Args: cobra.ExactArgs(1),
	Run:  importFunc,
}

const noProgressFlagName = "no-progress"

func init() {
	common.AddTableFlags(importCMD)
	importCMD.Flags().Bool(noProgressFlagName, false, "Do not show progress bar")
}

func importFunc(cmd *cobra.Command, args []string) {
	env := common.NewEnv(cmd)
	defer env.Close()

	s, err := common.ReadFilesSettings(cmd, env.Config)
	common.ExitOnErr(cmd, err)

	newHash, err := hasher(s.KeySize)
	common.ExitOnErr(cmd, err)

	f := common.OpenFiles(cmd, env)

	srcs, err := listFiles(args[0])
	common.ExitOnErr(cmd, err)

	var p *pb.ProgressBar

	noProgress, _ := cmd.Flags().GetBool(noProgressFlagName)
	if !noProgress && term.IsTerminal(int(os.Stderr.Fd())) {
		p = pb.New(len(srcs))
		p.Output = cmd.ErrOrStderr()
		p.Start()
	}

	items, err := Hash(srcs, newHash, func() {
		if p != nil {
			p.Increment()
		}
	})
	if p != nil {
		p.Finish()
	}
	common.ExitOnErr(cmd, err)

	err = Import(cmd, f, items)
	common.ExitOnErr(cmd, common.Errf("import files: %w", err))

	cmd.Printf("%d files imported\n", len(items))
}

func hasher(keySize int) (func() hash.Hash, error) {
	switch keySize {
	case sha1.Size:
		return sha1.New, nil
	case sha256.Size:
		return sha256.New, nil
	default:
		return nil, fmt.Errorf("no content hash for %d-byte keys", keySize)
	}
}

func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read source directory: %w", err)
	}

	res := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			res = append(res, filepath.Join(dir, e.Name()))
		}
	}
	return res, nil
}

// Hash computes content hashes of files. Same content results in one item.
func Hash(paths []string, newHash func() hash.Hash, progress func()) (map[string]string, error) {
	res := make(map[string]string, len(paths))

	for _, p := range paths {
		h := newHash()

		f, err := os.Open(p)
		if err != nil {
			return nil, err
		}

		_, err = io.Copy(h, f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}

		res[hex.EncodeToString(h.Sum(nil))] = p
		progress()
	}

	return res, nil
}

// Import copies files into f.
func Import(cmd *cobra.Command, f store.Files, items map[string]string) error {
	return f.SetMany(cmd.Context(), items)
}
