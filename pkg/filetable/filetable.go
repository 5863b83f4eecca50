package filetable

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/nspcc-dev/flatdb/internal/storagelog"
	"github.com/nspcc-dev/flatdb/pkg/common"
	"github.com/nspcc-dev/flatdb/pkg/hash"
	"github.com/nspcc-dev/flatdb/pkg/util"
	"go.uber.org/zap"
)

// FileTable stores external files keyed by hash.Hash[K]. Files are grouped
// into chunk directories named after the key truncated to hash.Hash[C]:
//
//	<dir>/<chunk>/<key>.<ext>
//
// Every file is replaced as a whole, so FileTable takes no locks.
type FileTable[K, C hash.Width] struct {
	dir     string
	name    string
	ext     string
	perm    fs.FileMode
	writer  *util.FileWriter
	log     *zap.Logger
	metrics common.Metrics
	pool    util.WorkerPool
}

// New creates FileTable stored in dir with files having ext extension.
func New[K, C hash.Width](dir, ext string, opts ...Option) (*FileTable[K, C], error) {
	if dir == "" {
		return nil, errors.New("empty table directory")
	}
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" || strings.ContainsAny(ext, `/\#`) {
		return nil, fmt.Errorf("invalid file extension %q", ext)
	}
	if c, k := hash.Size[C](), hash.Size[K](); c > k {
		return nil, fmt.Errorf("chunk width %d exceeds key width %d", c, k)
	}

	o := defaultOptions()
	for i := range opts {
		opts[i](&o)
	}

	if o.name == "" {
		o.name = filepath.Base(dir)
	}

	return &FileTable[K, C]{
		dir:     dir,
		name:    o.name,
		ext:     ext,
		perm:    o.perm,
		writer:  util.NewFileWriter(o.perm, o.noSync),
		log:     o.log.With(zap.String("component", "FileTable"), zap.String("table", o.name)),
		metrics: o.metrics,
		pool:    o.pool,
	}, nil
}

// Dir returns the table directory.
func (t *FileTable[K, C]) Dir() string {
	return t.dir
}

// Extension returns the extension of stored files.
func (t *FileTable[K, C]) Extension() string {
	return t.ext
}

// Path returns the path file with key is stored at.
func (t *FileTable[K, C]) Path(key hash.Hash[K]) string {
	return filepath.Join(t.dir, common.ChunkID[C](key).String(), key.String()+"."+t.ext)
}

// Get returns path to the file stored by key. Only file metadata is read.
func (t *FileTable[K, C]) Get(key hash.Hash[K]) (string, bool, error) {
	defer t.elapsed("Get")()

	p := t.Path(key)

	fi, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, common.NewOpError(common.OpStat, p, err)
	}

	found := fi.Mode().IsRegular()
	t.log.Debug("get file",
		storagelog.KeyField(key),
		storagelog.PathField(p),
		storagelog.FoundField(found))

	if !found {
		return "", false, nil
	}
	return p, true, nil
}

// GetAll returns paths of all stored files. Entries which are not regular
// files named after a key with the table extension are skipped.
func (t *FileTable[K, C]) GetAll(ctx context.Context) (map[hash.Hash[K]]string, error) {
	defer t.elapsed("GetAll")()

	chunks, err := os.ReadDir(t.dir)
	if err != nil {
		return nil, common.NewOpError(common.OpReadDir, t.dir, err)
	}

	suffix := "." + t.ext
	res := make(map[hash.Hash[K]]string)

	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !chunk.IsDir() {
			t.log.Debug("skip foreign directory entry", zap.String("name", chunk.Name()))
			continue
		}

		chunkDir := filepath.Join(t.dir, chunk.Name())
		entries, err := os.ReadDir(chunkDir)
		if err != nil {
			return nil, common.NewOpError(common.OpReadDir, chunkDir, err)
		}

		for _, e := range entries {
			name := e.Name()
			if !e.Type().IsRegular() || !strings.HasSuffix(name, suffix) {
				t.log.Debug("skip foreign directory entry", zap.String("name", name))
				continue
			}

			key, err := hash.Parse[K](strings.TrimSuffix(name, suffix))
			if err != nil {
				t.log.Debug("skip file with invalid key name", zap.String("name", name), zap.Error(err))
				continue
			}

			res[key] = filepath.Join(chunkDir, name)
		}
	}

	return res, nil
}

// Set copies file src into the table by key replacing the previous one.
func (t *FileTable[K, C]) Set(ctx context.Context, key hash.Hash[K], src string) error {
	defer t.elapsed("Set")()

	if err := ctx.Err(); err != nil {
		return err
	}

	p := t.Path(key)
	dir := filepath.Dir(p)

	if err := util.MkdirAllX(dir, t.perm); err != nil {
		return common.NewOpError(common.OpCreateDir, dir, err)
	}

	if err := t.writer.CopyFile(src, p); err != nil {
		return common.NewOpError(common.OpCopyFile, p, err)
	}

	storagelog.Write(t.log,
		storagelog.KeyField(key),
		storagelog.PathField(p),
		storagelog.OpField("Set"),
		zap.String("source", src))

	return nil
}

// CleanTemp removes temporary files left by interrupted copies if they were
// not modified for olderThan. Zero olderThan removes all of them and must be
// used only when no one writes to the table.
func (t *FileTable[K, C]) CleanTemp(olderThan time.Duration) ([]string, error) {
	removed, err := util.CleanTemp(t.dir, olderThan)
	for _, p := range removed {
		t.log.Info("temporary file removed", zap.String("path", p))
	}
	return removed, err
}

// SetMany copies files concurrently. All files are tried, failures are
// reported in *common.BatchError.
func (t *FileTable[K, C]) SetMany(ctx context.Context, items map[hash.Hash[K]]string) error {
	defer t.elapsed("SetMany")()

	var (
		wg   sync.WaitGroup
		mtx  sync.Mutex
		errs []error
	)

	fail := func(err error) {
		mtx.Lock()
		errs = append(errs, err)
		mtx.Unlock()
	}

	for key, src := range items {
		wg.Add(1)
		err := t.pool.Submit(func() {
			defer wg.Done()
			if err := t.Set(ctx, key, src); err != nil {
				fail(err)
			}
		})
		if err != nil {
			wg.Done()
			fail(fmt.Errorf("submit copy of %s: %w", key, err))
		}
	}

	wg.Wait()

	t.log.Debug("batch set finished", zap.Int("files", len(items)), zap.Int("failed", len(errs)))

	if len(errs) > 0 {
		t.metrics.AddBatchFailures(t.name, len(errs))
		return &common.BatchError{
			Op:        common.OpSetMany,
			Succeeded: len(items) - len(errs),
			Failed:    len(errs),
			Errors:    errs,
		}
	}

	return nil
}

func (t *FileTable[K, C]) elapsed(method string) func() {
	return common.Elapsed(func(d time.Duration) {
		t.metrics.AddMethodDuration(t.name, method, d)
	})
}
