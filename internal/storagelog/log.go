package storagelog

import (
	"fmt"

	"go.uber.org/zap"
)

// headMsg is a distinctive part of all write operation messages.
const headMsg = "flat table operation"

// Write writes message about table's write operation to logger.
func Write(logger *zap.Logger, fields ...zap.Field) {
	logger.Debug(headMsg, fields...)
}

// KeyField returns logger's field for item key.
func KeyField(key fmt.Stringer) zap.Field {
	return zap.Stringer("key", key)
}

// ChunkField returns logger's field for chunk ID.
func ChunkField(chunk fmt.Stringer) zap.Field {
	return zap.Stringer("chunk", chunk)
}

// PathField returns logger's field for a file system path.
func PathField(p string) zap.Field {
	return zap.String("path", p)
}

// OpField returns logger's field for operation type.
func OpField(op string) zap.Field {
	return zap.String("op", op)
}

// FoundField returns logger's field for lookup result.
func FoundField(found bool) zap.Field {
	return zap.Bool("found", found)
}
