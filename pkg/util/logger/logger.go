package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Prm groups Logger's parameters.
type Prm struct {
	level    zapcore.Level
	encoding string
	output   []string
}

const (
	// DefaultLevel is the level of Prm not set explicitly.
	DefaultLevel = zapcore.InfoLevel

	// DefaultEncoding is the encoding of Prm not set explicitly.
	DefaultEncoding = "console"
)

// SetLevelString sets the minimum logging level. Returns an error if s is
// not a string representation of a supported logging level.
//
// Supported strings:
//   - "debug"
//   - "info"
//   - "warn"
//   - "error"
//   - "dpanic"
//   - "panic"
//   - "fatal"
func (p *Prm) SetLevelString(s string) error {
	return p.level.UnmarshalText([]byte(s))
}

// SetEncoding sets the encoding, "console" or "json".
func (p *Prm) SetEncoding(enc string) error {
	switch enc {
	case "console", "json":
		p.encoding = enc
		return nil
	default:
		return fmt.Errorf("unsupported log encoding %q", enc)
	}
}

// SetOutput sets paths logs are written to, stderr by default.
func (p *Prm) SetOutput(paths ...string) {
	p.output = paths
}

// NewLogger constructs zap.Logger writing human-readable messages with
// ISO8601 timestamps. Nil prm is the same as a zero one.
//
// Stack traces are attached to fatal messages only.
func NewLogger(prm *Prm) (*zap.Logger, error) {
	if prm == nil {
		prm = new(Prm)
	}

	c := zap.NewProductionConfig()
	c.Level = zap.NewAtomicLevelAt(prm.level)
	c.Encoding = DefaultEncoding
	if prm.encoding != "" {
		c.Encoding = prm.encoding
	}
	c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	c.OutputPaths = []string{"stderr"}
	if len(prm.output) > 0 {
		c.OutputPaths = prm.output
	}

	l, err := c.Build(
		zap.AddStacktrace(zap.NewAtomicLevelAt(zap.FatalLevel)),
	)
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}

	return l, nil
}
