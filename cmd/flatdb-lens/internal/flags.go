package common

import (
	"github.com/spf13/cobra"
)

// Flag names shared by commands.
const (
	ConfigFlagName    = "config"
	MetricsFlagName   = "metrics-file"
	DirFlagName       = "dir"
	KeySizeFlagName   = "key-size"
	ChunkSizeFlagName = "chunk-size"
	ExtFlagName       = "ext"
	KeyFlagName       = "key"
	ForceFlagName     = "force"
)

// AddConfigFlag adds persistent config file flag to the root command.
func AddConfigFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().String(ConfigFlagName, "", "Path to the configuration file (YAML or JSON)")
}

// AddMetricsFlag adds persistent flag of the file collected metrics are
// written to in Prometheus text format.
func AddMetricsFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().String(MetricsFlagName, "", "Write Prometheus metrics to the file on exit")
}

// AddTableFlags adds flags locating a table. They override configuration
// values.
func AddTableFlags(cmd *cobra.Command) {
	ff := cmd.Flags()
	ff.String(DirFlagName, "", "Path to the table directory")
	ff.Int(KeySizeFlagName, 0, "Key size in bytes")
	ff.Int(ChunkSizeFlagName, 0, "Chunk ID size in bytes")
	ff.String(ExtFlagName, "", "Extension of table files")
}

// AddKeyFlag adds required hex key flag.
func AddKeyFlag(cmd *cobra.Command) {
	cmd.Flags().String(KeyFlagName, "", "Hex-encoded key")
	_ = cmd.MarkFlagRequired(KeyFlagName)
}

func overrideString(cmd *cobra.Command, name string, v *string) {
	if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
		*v = f.Value.String()
	}
}

func overrideInt(cmd *cobra.Command, name string, v *int) {
	if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
		*v, _ = cmd.Flags().GetInt(name)
	}
}
