package testutil

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

const (
	logLevelKey   = "level"
	logMessageKey = "msg"
	logTimeKey    = "ts"
)

// LogEntry represents single [zap.Logger] entry.
type LogEntry struct {
	Level   zapcore.Level
	Message string
	// Numbers are represented as [json.Number].
	Fields map[string]any
}

// LogBuffer is a memory buffer for [zap.Logger] entries.
type LogBuffer struct {
	t  testing.TB
	mu sync.Mutex
	b  zaptest.Buffer
}

// NewBufferedLogger returns a logger writing JSON entries into the returned
// buffer. Entries with severity less than minLevel are never written.
func NewBufferedLogger(t testing.TB, minLevel zapcore.Level) (*zap.Logger, *LogBuffer) {
	lb := &LogBuffer{t: t}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.LevelKey = logLevelKey
	encCfg.MessageKey = logMessageKey
	encCfg.TimeKey = logTimeKey

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.AddSync(lb),
		minLevel,
	)

	return zap.New(core), lb
}

// Write implements io.Writer. Table operations log from many routines.
func (x *LogBuffer) Write(p []byte) (int, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.b.Write(p)
}

// Entries returns decoded entries written so far.
func (x *LogBuffer) Entries() []LogEntry {
	x.mu.Lock()
	lines := x.b.Lines()
	x.mu.Unlock()

	res := make([]LogEntry, len(lines))

	for i := range lines {
		dec := json.NewDecoder(strings.NewReader(lines[i]))
		dec.UseNumber()

		var m map[string]any
		require.NoError(x.t, dec.Decode(&m), i)

		lvl, ok := m[logLevelKey].(string)
		require.True(x.t, ok, i)

		var err error
		res[i].Level, err = zapcore.ParseLevel(lvl)
		require.NoError(x.t, err, i)

		res[i].Message, ok = m[logMessageKey].(string)
		require.True(x.t, ok, i)

		delete(m, logTimeKey)
		delete(m, logLevelKey)
		delete(m, logMessageKey)
		res[i].Fields = m
	}

	return res
}

// Filter returns entries of the given level and message.
func (x *LogBuffer) Filter(lvl zapcore.Level, msg string) []LogEntry {
	var res []LogEntry
	for _, e := range x.Entries() {
		if e.Level == lvl && e.Message == msg {
			res = append(res, e)
		}
	}
	return res
}

// AssertLogged asserts that at least one entry has given level and message
// and returns the first of them.
func (x *LogBuffer) AssertLogged(lvl zapcore.Level, msg string) LogEntry {
	es := x.Filter(lvl, msg)
	require.NotEmpty(x.t, es, "no %s entry %q", lvl, msg)
	return es[0]
}

// AssertNotLogged asserts that no entry has given level and message.
func (x *LogBuffer) AssertNotLogged(lvl zapcore.Level, msg string) {
	require.Empty(x.t, x.Filter(lvl, msg), "unexpected %s entry %q", lvl, msg)
}
