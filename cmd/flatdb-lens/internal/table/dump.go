package table

import (
	"fmt"
	"time"

	common "github.com/nspcc-dev/flatdb/cmd/flatdb-lens/internal"
	"github.com/nspcc-dev/flatdb/cmd/flatdb-lens/internal/store"
	"github.com/nspcc-dev/flatdb/pkg/codec"
	"github.com/spf13/cobra"
	"go.etcd.io/bbolt"
)

var dumpCMD = &cobra.Command{
	Use:   "dump",
	Short: "Export the table into a BoltDB file",
	Long: `Export the table into a BoltDB file. Every chunk becomes a bucket named
after the chunk ID, records are stored by hex keys as YAML documents.`,
	Args: cobra.NoArgs,
	Run:  dumpFunc,
}

const outFlagName = "out"

func init() {
	common.AddTableFlags(dumpCMD)
	dumpCMD.Flags().String(outFlagName, "", "Path to the resulting BoltDB file")
	_ = dumpCMD.MarkFlagRequired(outFlagName)
}

func dumpFunc(cmd *cobra.Command, _ []string) {
	env := common.NewEnv(cmd)
	defer env.Close()

	r, closer := common.OpenRecords(cmd, env)
	defer closer()

	out, _ := cmd.Flags().GetString(outFlagName)

	n, err := Dump(cmd, r, out)
	common.ExitOnErr(cmd, err)

	cmd.Printf("%d records exported to %s\n", n, out)
}

// Dump writes all records of r into BoltDB file at path.
func Dump(cmd *cobra.Command, r store.Records, path string) (int, error) {
	all, err := r.GetAll(cmd.Context())
	if err != nil {
		return 0, fmt.Errorf("read table: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{
		Timeout:      time.Second,
		NoStatistics: true,
	})
	if err != nil {
		return 0, fmt.Errorf("can't open bbolt at %s: %w", path, err)
	}
	defer db.Close()

	var c codec.YAML

	err = db.Update(func(tx *bbolt.Tx) error {
		for k, v := range all {
			chunk, err := r.Chunk(k)
			if err != nil {
				return err
			}

			b, err := tx.CreateBucketIfNotExists([]byte(chunk))
			if err != nil {
				return fmt.Errorf("can't create bucket %s: %w", chunk, err)
			}

			data, err := c.Marshal(v)
			if err != nil {
				return fmt.Errorf("encode record %s: %w", k, err)
			}

			if err := b.Put([]byte(k), data); err != nil {
				return fmt.Errorf("put record %s: %w", k, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return len(all), nil
}
