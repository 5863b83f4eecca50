package codec

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"gopkg.in/yaml.v3"
)

// Codec turns values into file contents and back. Unmarshal of malformed
// data must fail.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// YAML is a Codec producing human-editable YAML documents. Map keys are
// emitted sorted.
type YAML struct{}

// Marshal implements Codec.
func (YAML) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	err := enc.Encode(v)
	if err == nil {
		err = enc.Close()
	}
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Unmarshal implements Codec. Empty document leaves v untouched.
func (YAML) Unmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}

// zstdFrameMagic contains first 4 bytes of any compressed data
// https://github.com/klauspost/compress/blob/master/zstd/framedec.go#L58 .
var zstdFrameMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Zstd compresses output of the underlying Codec. Uncompressed input is
// accepted by Unmarshal, so compression can be enabled for existing data.
type Zstd struct {
	codec   Codec
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewZstd wraps c with ZSTD compression.
func NewZstd(c Codec) (*Zstd, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = enc.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &Zstd{
		codec:   c,
		encoder: enc,
		decoder: dec,
	}, nil
}

// Marshal implements Codec.
func (z *Zstd) Marshal(v any) ([]byte, error) {
	data, err := z.codec.Marshal(v)
	if err != nil {
		return nil, err
	}
	return z.encoder.EncodeAll(data, make([]byte, 0, z.encoder.MaxEncodedSize(len(data)))), nil
}

// Unmarshal implements Codec.
func (z *Zstd) Unmarshal(data []byte, v any) error {
	if IsCompressed(data) {
		var err error
		data, err = z.decoder.DecodeAll(data, nil)
		if err != nil {
			return fmt.Errorf("decompress: %w", err)
		}
	}
	return z.codec.Unmarshal(data, v)
}

// Close releases encoder and decoder resources.
func (z *Zstd) Close() error {
	err := z.encoder.Close()
	z.decoder.Close()
	return err
}

// IsCompressed checks whether given data is ZSTD-compressed.
func IsCompressed(data []byte) bool {
	return len(data) >= len(zstdFrameMagic) && bytes.Equal(data[:len(zstdFrameMagic)], zstdFrameMagic)
}
