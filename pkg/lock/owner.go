package lock

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/nspcc-dev/flatdb/pkg/common"
	"gopkg.in/yaml.v3"
)

// Owner describes the holder of a lock. It's written into the marker file for
// diagnostics, only existence of the marker matters for locking.
type Owner struct {
	PID     int       `yaml:"pid"`
	Host    string    `yaml:"host"`
	Token   string    `yaml:"token"`
	Created time.Time `yaml:"created"`
}

func newOwner() Owner {
	host, _ := os.Hostname()
	return Owner{
		PID:     os.Getpid(),
		Host:    host,
		Token:   uuid.NewString(),
		Created: time.Now().UTC(),
	}
}

func (o Owner) marshal() ([]byte, error) {
	return yaml.Marshal(o)
}

// ReadOwner reads the owner of the lock from the marker file at p.
func ReadOwner(p string) (Owner, error) {
	var o Owner

	data, err := os.ReadFile(p)
	if err != nil {
		return o, err
	}

	err = yaml.Unmarshal(data, &o)
	if err != nil {
		return o, fmt.Errorf("%w: %w", common.ErrDecode, err)
	}
	if o.PID == 0 {
		return o, fmt.Errorf("%w: missing owner PID", common.ErrDecode)
	}

	return o, nil
}

// Alive reports whether the owner process may still be running. Owners from
// other hosts can't be checked and are considered alive.
func (o Owner) Alive() bool {
	host, err := os.Hostname()
	if err != nil || host != o.Host {
		return true
	}
	return processAlive(o.PID)
}
