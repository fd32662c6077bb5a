// Package compress frames byte blocks with a self-describing header and
// compresses them with LZ4 or ZSTD.
//
// Frame format: [Type uint8][UncompressedSize uint32][CompressedSize uint32][Data...]
// If CompressedSize == 0, the data is stored uncompressed.
package compress

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/nilq/internal/conv"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Type defines the compression algorithm used.
type Type uint8

const (
	// None stores blocks as is.
	None Type = 0
	// LZ4 is fast block compression.
	LZ4 Type = 1
	// ZSTD trades speed for a better ratio.
	ZSTD Type = 2
)

func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case ZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compress(%d)", uint8(t))
	}
}

// ParseType parses "none", "lz4" or "zstd".
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return None, nil
	case "lz4":
		return LZ4, nil
	case "zstd":
		return ZSTD, nil
	}
	return None, fmt.Errorf("compress: unknown type %q", s)
}

// ErrCorrupt is returned for frames that cannot be decoded.
var ErrCorrupt = errors.New("compress: corrupt frame")

const headerSize = 9

// MaxBlockSize bounds the uncompressed size of a frame.
const MaxBlockSize = 1 << 30

// lz4MaxRatio is the largest expansion an LZ4 block can encode.
const lz4MaxRatio = 255

// ZSTD encoder/decoder pools
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxBlockSize))
	return dec
}

// Encode frames data compressed with t. Data that does not shrink below 90%
// of its size is stored uncompressed.
func Encode(data []byte, t Type) ([]byte, error) {
	if len(data) > MaxBlockSize {
		return nil, fmt.Errorf("compress: block of %d bytes exceeds %d", len(data), MaxBlockSize)
	}
	size, err := conv.IntToUint32(len(data))
	if err != nil {
		return nil, fmt.Errorf("compress: block too large: %w", err)
	}

	var compressed []byte
	switch t {
	case None:
	case LZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		compressed = buf[:n]
	case ZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, fmt.Errorf("compress: unknown type %d", t)
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		return frame(t, size, data, nil), nil
	}
	return frame(t, size, data, compressed), nil
}

func frame(t Type, size uint32, data, compressed []byte) []byte {
	payload := compressed
	if payload == nil {
		payload = data
	}
	out := make([]byte, headerSize+len(payload))
	out[0] = byte(t)
	binary.LittleEndian.PutUint32(out[1:], size)
	// compressed is smaller than data, so its length fits as well.
	binary.LittleEndian.PutUint32(out[5:], uint32(len(compressed)))
	copy(out[headerSize:], payload)
	return out
}

// Decode reverses Encode. The algorithm is read from the header. Sizes in the
// header are checked before anything is allocated: a frame may not claim more
// than MaxBlockSize bytes, nor more than its algorithm can expand to.
func Decode(frame []byte) ([]byte, error) {
	if len(frame) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrCorrupt, len(frame))
	}
	t := Type(frame[0])
	size := binary.LittleEndian.Uint32(frame[1:])
	csize := binary.LittleEndian.Uint32(frame[5:])
	body := frame[headerSize:]

	if csize == 0 {
		if uint64(len(body)) != uint64(size) {
			return nil, fmt.Errorf("%w: stored block of %d bytes, header says %d", ErrCorrupt, len(body), size)
		}
		return body, nil
	}
	if uint64(len(body)) != uint64(csize) {
		return nil, fmt.Errorf("%w: compressed block of %d bytes, header says %d", ErrCorrupt, len(body), csize)
	}

	n, err := conv.Uint32ToInt(size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if n > MaxBlockSize {
		return nil, fmt.Errorf("%w: block of %d bytes exceeds %d", ErrCorrupt, n, MaxBlockSize)
	}
	switch t {
	case LZ4:
		if n > lz4MaxRatio*len(body)+16 {
			return nil, fmt.Errorf("%w: %d bytes cannot expand to %d", ErrCorrupt, len(body), n)
		}
		out := make([]byte, n)
		m, err := lz4.UncompressBlock(body, out)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if m != n {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
		return out, nil
	case ZSTD:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)

		// The header size is not trusted for preallocation.
		decoded, err := dec.DecodeAll(body, make([]byte, 0, min(n, 64*len(body))))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if len(decoded) != n {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
		return decoded, nil
	}
	return nil, fmt.Errorf("%w: unknown type %d", ErrCorrupt, t)
}
