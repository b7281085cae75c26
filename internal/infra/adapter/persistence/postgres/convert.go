// Package postgres provides PostgreSQL implementations of the repository
// interfaces declared in internal/repository, built on database/sql with
// the pgx stdlib driver and pgvector-go for the article embedding column.
package postgres

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
)

// marshalJSON is a thin wrapper kept for the same reason the teacher wraps
// its query-building helpers: every call site gets a consistent wrapped
// error instead of a bare json error.
func marshalJSON(v interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	return b, nil
}

func unmarshalJSON(data []byte, v interface{}) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return nil
}

// encodeMinHash packs a [128]uint64 MinHash signature into a fixed-width
// byte slice for a BYTEA column; content_minhash has no need for a query
// operator, only exact round-tripping.
func encodeMinHash(sig [128]uint64) []byte {
	buf := make([]byte, 128*8)
	for i, v := range sig {
		binary.BigEndian.PutUint64(buf[i*8:], v)
	}
	return buf
}

func decodeMinHash(buf []byte) ([128]uint64, error) {
	var sig [128]uint64
	if len(buf) != 128*8 {
		return sig, fmt.Errorf("decodeMinHash: expected %d bytes, got %d", 128*8, len(buf))
	}
	for i := range sig {
		sig[i] = binary.BigEndian.Uint64(buf[i*8:])
	}
	return sig, nil
}
