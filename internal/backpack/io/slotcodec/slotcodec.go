// Package slotcodec encodes a positional slot array into the byte blob stored
// in a container's metadata.
//
// Layout (big-endian):
//
//	int32 slotCount
//	slotCount x { byte present(0|1) [int32 payloadLen, payload] }
//
// Empty slots cost one byte. Payload bytes come from the host serializer and
// are opaque here.
package slotcodec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const (
	flagEmpty   byte = 0
	flagPresent byte = 1

	headerLen = 4
)

// PayloadCodec converts one occupied slot to bytes and back.
type PayloadCodec[T any] interface {
	MarshalPayload(*T) ([]byte, error)
	UnmarshalPayload([]byte) (*T, error)
}

// DecodeError reports a malformed blob and the offset where reading failed.
type DecodeError struct {
	Offset int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("slotcodec: decode at offset %d: %v", e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

var (
	ErrTruncated = errors.New("truncated record")
	ErrBadFlag   = errors.New("bad presence flag")
	ErrBadCount  = errors.New("bad slot count")
	ErrBadLength = errors.New("bad payload length")
)

// Encode writes exactly capacity slots: longer input is truncated, shorter
// input is padded with empty slots. nil entries are empty.
func Encode[T any](slots []*T, capacity int, codec PayloadCodec[T]) ([]byte, error) {
	if capacity < 0 || capacity > math.MaxInt32 {
		return nil, fmt.Errorf("slotcodec: bad capacity %d", capacity)
	}
	var buf bytes.Buffer
	buf.Grow(headerLen + capacity)

	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(capacity))
	buf.Write(tmp[:])

	for i := 0; i < capacity; i++ {
		var s *T
		if i < len(slots) {
			s = slots[i]
		}
		if s == nil {
			buf.WriteByte(flagEmpty)
			continue
		}
		payload, err := codec.MarshalPayload(s)
		if err != nil {
			return nil, fmt.Errorf("slotcodec: slot %d: %w", i, err)
		}
		if len(payload) > math.MaxInt32 {
			return nil, fmt.Errorf("slotcodec: slot %d: payload too large", i)
		}
		buf.WriteByte(flagPresent)
		binary.BigEndian.PutUint32(tmp[:], uint32(len(payload)))
		buf.Write(tmp[:])
		buf.Write(payload)
	}
	return buf.Bytes(), nil
}

// Decode reads min(storedCount, capacity) slots and always returns exactly
// capacity entries. Trailing slots missing from the blob come back empty;
// stored slots beyond capacity are dropped without being read.
func Decode[T any](blob []byte, capacity int, codec PayloadCodec[T]) ([]*T, error) {
	if capacity < 0 {
		return nil, fmt.Errorf("slotcodec: bad capacity %d", capacity)
	}
	if len(blob) < headerLen {
		return nil, &DecodeError{Offset: 0, Err: ErrTruncated}
	}
	stored := int32(binary.BigEndian.Uint32(blob))
	if stored < 0 {
		return nil, &DecodeError{Offset: 0, Err: fmt.Errorf("%w: %d", ErrBadCount, stored)}
	}

	out := make([]*T, capacity)
	n := min(int(stored), capacity)
	off := headerLen
	for i := 0; i < n; i++ {
		if off >= len(blob) {
			return nil, &DecodeError{Offset: off, Err: ErrTruncated}
		}
		flag := blob[off]
		off++
		switch flag {
		case flagEmpty:
			continue
		case flagPresent:
		default:
			return nil, &DecodeError{Offset: off - 1, Err: fmt.Errorf("%w: %#x", ErrBadFlag, flag)}
		}

		if len(blob)-off < 4 {
			return nil, &DecodeError{Offset: off, Err: ErrTruncated}
		}
		size := int32(binary.BigEndian.Uint32(blob[off:]))
		if size < 0 {
			return nil, &DecodeError{Offset: off, Err: fmt.Errorf("%w: %d", ErrBadLength, size)}
		}
		off += 4
		if len(blob)-off < int(size) {
			return nil, &DecodeError{Offset: off, Err: ErrTruncated}
		}
		v, err := codec.UnmarshalPayload(blob[off : off+int(size)])
		if err != nil {
			return nil, &DecodeError{Offset: off, Err: err}
		}
		out[i] = v
		off += int(size)
	}
	return out, nil
}

// Empty returns capacity empty slots.
func Empty[T any](capacity int) []*T {
	if capacity < 0 {
		capacity = 0
	}
	return make([]*T, capacity)
}
