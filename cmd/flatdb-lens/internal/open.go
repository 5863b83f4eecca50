package common

import (
	"errors"
	"fmt"
	"sync"

	"github.com/mitchellh/go-homedir"
	"github.com/nspcc-dev/flatdb/cmd/flatdb-lens/config"
	filesconfig "github.com/nspcc-dev/flatdb/cmd/flatdb-lens/config/files"
	lockconfig "github.com/nspcc-dev/flatdb/cmd/flatdb-lens/config/lock"
	loggerconfig "github.com/nspcc-dev/flatdb/cmd/flatdb-lens/config/logger"
	tableconfig "github.com/nspcc-dev/flatdb/cmd/flatdb-lens/config/table"
	"github.com/nspcc-dev/flatdb/cmd/flatdb-lens/internal/store"
	"github.com/nspcc-dev/flatdb/misc"
	"github.com/nspcc-dev/flatdb/pkg/codec"
	storagecommon "github.com/nspcc-dev/flatdb/pkg/common"
	"github.com/nspcc-dev/flatdb/pkg/filetable"
	"github.com/nspcc-dev/flatdb/pkg/lock"
	"github.com/nspcc-dev/flatdb/pkg/metrics"
	"github.com/nspcc-dev/flatdb/pkg/table"
	"github.com/nspcc-dev/flatdb/pkg/util/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ReadConfig reads configuration from the file passed in the root command
// flag, if any.
func ReadConfig(cmd *cobra.Command) (*config.Config, error) {
	p, _ := cmd.Flags().GetString(ConfigFlagName)
	if p == "" {
		return config.New()
	}

	p, err := homedir.Expand(p)
	if err != nil {
		return nil, fmt.Errorf("expand config path: %w", err)
	}

	return config.New(config.WithConfigFile(p))
}

// NewLogger creates console logger writing to stderr at the configured level.
func NewLogger(c *config.Config) (*zap.Logger, error) {
	var prm logger.Prm

	if err := prm.SetLevelString(loggerconfig.Level(c)); err != nil {
		return nil, fmt.Errorf("invalid logger level: %w", err)
	}

	return logger.NewLogger(&prm)
}

// Env groups things commands work with.
type Env struct {
	Config  *config.Config
	Log     *zap.Logger
	Metrics storagecommon.Metrics

	metricsFile string
	registry    *prometheus.Registry
	closeOnce   *sync.Once
}

// NewEnv reads config and creates logger. Metrics are collected only if
// the metrics file is requested. Errors are fatal. Env is closed on
// ExitOnErr, successful commands must close it themselves.
func NewEnv(cmd *cobra.Command) Env {
	c, err := ReadConfig(cmd)
	ExitOnErr(cmd, Errf("read config: %w", err))

	log, err := NewLogger(c)
	ExitOnErr(cmd, err)

	env := Env{
		Config:    c,
		Log:       log,
		Metrics:   storagecommon.NoopMetrics(),
		closeOnce: new(sync.Once),
	}

	env.metricsFile, _ = cmd.Flags().GetString(MetricsFlagName)
	if env.metricsFile != "" {
		env.registry = prometheus.NewRegistry()
		env.Metrics = metrics.New(env.registry, misc.Version)
	}

	onExit(env.Close)

	return env
}

// Close writes collected metrics to the metrics file and flushes the log.
// Only the first call has effect.
func (e Env) Close() {
	e.closeOnce.Do(func() {
		if e.registry != nil {
			err := prometheus.WriteToTextfile(e.metricsFile, e.registry)
			if err != nil {
				e.Log.Warn("could not write metrics", zap.String("path", e.metricsFile), zap.Error(err))
			}
		}

		_ = e.Log.Sync()
	})
}

// TableSettings describes a table of records.
type TableSettings struct {
	Dir       string
	KeySize   int
	ChunkSize int
	Ext       string
}

// ReadTableSettings merges "table" config section with command flags.
func ReadTableSettings(cmd *cobra.Command, c *config.Config) (TableSettings, error) {
	dir, err := tableconfig.Dir(c)
	if err != nil {
		return TableSettings{}, err
	}

	s := TableSettings{
		Dir:       dir,
		KeySize:   tableconfig.KeySize(c),
		ChunkSize: tableconfig.ChunkSize(c),
		Ext:       tableconfig.Extension(c),
	}

	if err := override(cmd, &s); err != nil {
		return TableSettings{}, err
	}

	return s, nil
}

// ReadFilesSettings merges "files" config section with command flags.
func ReadFilesSettings(cmd *cobra.Command, c *config.Config) (TableSettings, error) {
	dir, err := filesconfig.Dir(c)
	if err != nil {
		return TableSettings{}, err
	}

	s := TableSettings{
		Dir:       dir,
		KeySize:   filesconfig.KeySize(c),
		ChunkSize: filesconfig.ChunkSize(c),
		Ext:       filesconfig.Extension(c),
	}

	if err := override(cmd, &s); err != nil {
		return TableSettings{}, err
	}

	return s, nil
}

func override(cmd *cobra.Command, s *TableSettings) error {
	overrideString(cmd, DirFlagName, &s.Dir)
	overrideInt(cmd, KeySizeFlagName, &s.KeySize)
	overrideInt(cmd, ChunkSizeFlagName, &s.ChunkSize)
	overrideString(cmd, ExtFlagName, &s.Ext)

	if s.Dir == "" {
		return errors.New("table directory is not set, use --dir or config")
	}

	var err error
	s.Dir, err = homedir.Expand(s.Dir)

	return err
}

// OpenRecords opens the table of records described by config and flags.
// Returned function releases resources and must be called.
func OpenRecords(cmd *cobra.Command, env Env) (store.Records, func()) {
	s, err := ReadTableSettings(cmd, env.Config)
	ExitOnErr(cmd, err)

	opts := []table.Option{
		table.WithLogger(env.Log),
		table.WithMetrics(env.Metrics),
		table.WithExtension(s.Ext),
		table.WithLockConfig(lockconfig.Config(env.Config)),
		table.WithLockExtension(lockconfig.Extension(env.Config)),
		table.WithChunkCache(tableconfig.CacheSize(env.Config)),
		table.WithPermissions(tableconfig.Perm(env.Config)),
		table.WithNoSync(tableconfig.NoSync(env.Config)),
	}

	closer := func() {}

	if tableconfig.Compress(env.Config) {
		z, err := codec.NewZstd(codec.YAML{})
		ExitOnErr(cmd, err)

		opts = append(opts, table.WithCodec(z))
		closer = func() { _ = z.Close() }
	}

	r, err := store.OpenRecords(s.Dir, s.KeySize, s.ChunkSize, opts...)
	ExitOnErr(cmd, Errf("open table: %w", err))

	return r, closer
}

// OpenFiles opens the file table described by config and flags.
func OpenFiles(cmd *cobra.Command, env Env) store.Files {
	s, err := ReadFilesSettings(cmd, env.Config)
	ExitOnErr(cmd, err)

	f, err := store.OpenFiles(s.Dir, s.Ext, s.KeySize, s.ChunkSize,
		filetable.WithLogger(env.Log),
		filetable.WithMetrics(env.Metrics),
		filetable.WithNoSync(filesconfig.NoSync(env.Config)),
	)
	ExitOnErr(cmd, Errf("open file table: %w", err))

	return f
}

// NewLocker returns locker configured by "lock" section.
func NewLocker(env Env) *lock.Locker {
	return lock.New(
		lock.WithConfig(lockconfig.Config(env.Config)),
		lock.WithExtension(lockconfig.Extension(env.Config)),
		lock.WithLogger(env.Log),
		lock.WithMetrics(env.Metrics),
	)
}
