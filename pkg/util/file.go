package util

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/nspcc-dev/flatdb/pkg/common"
)

// tempSeparator separates the target name from the random suffix of
// temporary files: 'chunk.yml#123456'. The suffix never matches a table
// extension, so listings skip temporary files.
const tempSeparator = "#"

// FileWriter replaces files atomically: data goes to a temporary file next to
// the target which is then renamed over it. Readers see either the old or the
// new content, never a partial one. Every write uses its own temporary file,
// so concurrent writers of the same target don't interfere, the last rename
// wins.
type FileWriter struct {
	perm   fs.FileMode
	noSync bool
}

// NewFileWriter returns FileWriter creating files with perm. Unless noSync is
// set, data is synced to the device before the rename.
func NewFileWriter(perm fs.FileMode, noSync bool) *FileWriter {
	return &FileWriter{
		perm:   perm,
		noSync: noSync,
	}
}

// WriteFile atomically replaces p with data.
func (w *FileWriter) WriteFile(p string, data []byte) error {
	return w.replace(p, func(f *os.File) error {
		_, err := f.Write(data)
		return err
	})
}

// CopyFile atomically replaces dst with the contents of src.
func (w *FileWriter) CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer in.Close()

	return w.replace(dst, func(f *os.File) error {
		_, err := io.Copy(f, in)
		return err
	})
}

// replace writes into a new 'p#N' file and renames it to p. The temporary
// file is removed on any failure.
func (w *FileWriter) replace(p string, write func(*os.File) error) error {
	f, err := os.CreateTemp(filepath.Dir(p), filepath.Base(p)+tempSeparator+"*")
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}

	tmpPath := f.Name()

	err = w.fill(f, write)
	if err == nil {
		err = os.Rename(tmpPath, p)
		if err != nil {
			err = fmt.Errorf("rename file %q->%q: %w", tmpPath, p, err)
		}
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		if errors.Is(err, syscall.ENOSPC) {
			return fmt.Errorf("%w: %w", common.ErrNoSpace, err)
		}
		return err
	}

	return nil
}

// fill sets permissions of f, writes data to it, syncs and closes it.
func (w *FileWriter) fill(f *os.File, write func(*os.File) error) error {
	err := f.Chmod(w.perm)
	if err != nil {
		err = fmt.Errorf("set permissions: %w", err)
	}
	if err == nil {
		err = write(f)
		if err != nil {
			err = fmt.Errorf("write data into file %q: %w", f.Name(), err)
		}
	}
	if err == nil && !w.noSync {
		err = f.Sync()
		if err != nil {
			err = fmt.Errorf("sync file: %w", err)
		}
	}
	if errClose := f.Close(); err == nil && errClose != nil {
		err = fmt.Errorf("close file: %w", errClose)
	}
	return err
}

// IsTempName reports whether name is a name of FileWriter's temporary file.
func IsTempName(name string) bool {
	i := strings.LastIndex(name, tempSeparator)
	if i <= 0 || i == len(name)-1 {
		return false
	}
	for _, c := range name[i+1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// CleanTemp removes temporary files left in the dir tree by interrupted
// writes and returns their paths. Only files not modified for olderThan are
// removed, zero removes all of them.
func CleanTemp(dir string, olderThan time.Duration) ([]string, error) {
	var removed []string

	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() || !IsTempName(d.Name()) {
			return nil
		}

		if olderThan > 0 {
			fi, err := d.Info()
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return nil
				}
				return err
			}
			if time.Since(fi.ModTime()) < olderThan {
				return nil
			}
		}

		err = os.Remove(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}

		removed = append(removed, p)
		return nil
	})
	if err != nil {
		return removed, common.NewOpError(common.OpCleanTemp, dir, err)
	}

	return removed, nil
}
