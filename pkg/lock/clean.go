package lock

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/nspcc-dev/flatdb/pkg/common"
	"go.uber.org/zap"
)

// Find returns paths of all marker files in the dir tree.
func (l *Locker) Find(dir string) ([]string, error) {
	var res []string

	ext := "." + l.ext
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && filepath.Ext(p) == ext {
			res = append(res, p)
		}
		return nil
	})
	if err != nil {
		return nil, common.NewOpError(common.OpReadDir, dir, err)
	}

	return res, nil
}

// Clean removes stale marker files in the dir tree and returns their paths.
// Markers left by crashed processes otherwise block writers forever.
//
// With force set every marker is considered stale, this is the right mode at
// startup when no other process can use the directory. Otherwise a marker is
// stale if its owner process is gone or, when the owner can't be read, if
// it's older than the lock timeout. The marker is re-read right before the
// removal and kept if it has been replaced meanwhile. A marker replaced after
// that check can still be removed, so cleaning a table in use is best-effort.
func (l *Locker) Clean(dir string, force bool) ([]string, error) {
	markers, err := l.Find(dir)
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, p := range markers {
		if !force {
			m, ok := l.stale(p)
			if !ok || !m.unchanged(p) {
				continue
			}
		}

		err = os.Remove(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return removed, common.NewOpError(common.OpAcquireLock, p, err)
		}

		l.log.Info("stale lock file removed", zap.String("path", p))
		removed = append(removed, p)
	}

	return removed, nil
}

// marker identifies a particular marker file: by owner token if the owner is
// readable and by modification time otherwise.
type marker struct {
	token string
	mtime time.Time
}

func (l *Locker) stale(p string) (marker, bool) {
	o, err := ReadOwner(p)
	if err == nil {
		return marker{token: o.Token}, !o.Alive()
	}

	fi, err := os.Stat(p)
	if err != nil {
		return marker{}, false
	}
	return marker{mtime: fi.ModTime()}, time.Since(fi.ModTime()) > l.cfg.Timeout
}

// unchanged reports whether p is still the marker m was taken from.
func (m marker) unchanged(p string) bool {
	if m.token != "" {
		o, err := ReadOwner(p)
		return err == nil && o.Token == m.token
	}

	if _, err := ReadOwner(p); err == nil {
		return false
	}
	fi, err := os.Stat(p)
	return err == nil && fi.ModTime().Equal(m.mtime)
}
