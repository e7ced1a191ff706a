// Package snapshot serializes container contents to a self-describing binary
// format.
//
// A snapshot walks any iterable container in its native order and writes the
// elements as length-prefixed records, optionally compressed with zstd or
// lz4. The header records the codec name and compression so a file can be
// opened without out-of-band knowledge; a CRC32 of the payload detects
// accidental corruption (it is not tamper protection). Loading replays the
// records into a caller-supplied sink, which re-inserts them into a fresh
// container.
package snapshot

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/gocc"
)

const (
	// magicNumber identifies gocc snapshot files (ASCII: "GCS1").
	magicNumber = 0x47435331
	// version is the current snapshot format version.
	version = 0x00010000

	maxCodecName = 255
)

var (
	ErrInvalidMagic      = errors.New("invalid magic number")
	ErrInvalidVersion    = errors.New("unsupported version")
	ErrUnknownCodec      = errors.New("unknown codec")
	ErrUnknownCompress   = errors.New("unknown compression")
	ErrChecksumMismatch  = errors.New("checksum mismatch")
	ErrTruncatedSnapshot = errors.New("truncated snapshot")
)

// Compression selects the payload compression algorithm.
type Compression uint8

const (
	// CompressionNone stores the payload uncompressed.
	CompressionNone Compression = 0
	// CompressionZstd uses zstd block compression (better ratio).
	CompressionZstd Compression = 1
	// CompressionLZ4 uses lz4 frame compression (faster).
	CompressionLZ4 Compression = 2
)

// Options contains configuration options for snapshots.
type Options struct {
	// Codec encodes the elements. Defaults to the package default codec.
	Codec Codec

	// Compression selects the payload compression. Defaults to none.
	Compression Compression

	// Name labels the snapshot in log output.
	Name string

	// Logger receives save/load events. Defaults to a noop logger.
	Logger *gocc.Logger
}

func applyOptions(optFns []func(o *Options)) Options {
	opts := Options{
		Codec:  Default,
		Logger: gocc.NoopLogger(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Codec == nil {
		opts.Codec = Default
	}
	if opts.Logger == nil {
		opts.Logger = gocc.NoopLogger()
	}
	if opts.Name != "" {
		opts.Logger = opts.Logger.WithContainer(opts.Name)
	}
	return opts
}

// Save writes every element of src to w in the container's iteration order.
// The container must not be mutated concurrently.
func Save[T any](w io.Writer, src gocc.Iterable[T], optFns ...func(o *Options)) error {
	opts := applyOptions(optFns)

	count, err := save(w, src, opts)
	opts.Logger.LogSave(context.Background(), count, err)
	return err
}

func save[T any](w io.Writer, src gocc.Iterable[T], opts Options) (int, error) {
	if src == nil {
		return 0, gocc.ErrNilContainer
	}

	name := opts.Codec.Name()
	if len(name) > maxCodecName {
		return 0, fmt.Errorf("codec name %q too long", name)
	}

	// Encode elements as length-prefixed records.
	var body bytes.Buffer
	count := 0
	for cur := src.Begin(); cur != nil; cur = src.Next(cur) {
		data, err := opts.Codec.Marshal(cur)
		if err != nil {
			return count, fmt.Errorf("marshal element %d: %w", count, err)
		}
		if err := binary.Write(&body, binary.LittleEndian, uint32(len(data))); err != nil {
			return count, err
		}
		if _, err := body.Write(data); err != nil {
			return count, err
		}
		count++
	}

	payload, err := compress(body.Bytes(), opts.Compression)
	if err != nil {
		return count, err
	}

	var header bytes.Buffer
	header.Grow(64)
	for _, v := range []any{
		uint32(magicNumber),
		uint32(version),
		uint8(opts.Compression),
		uint8(len(name)),
	} {
		if err := binary.Write(&header, binary.LittleEndian, v); err != nil {
			return count, err
		}
	}
	header.WriteString(name)
	for _, v := range []any{
		uint64(count),
		uint64(len(payload)),
		crc32.ChecksumIEEE(payload),
	} {
		if err := binary.Write(&header, binary.LittleEndian, v); err != nil {
			return count, err
		}
	}

	if _, err := w.Write(header.Bytes()); err != nil {
		return count, err
	}
	if _, err := w.Write(payload); err != nil {
		return count, err
	}
	return count, nil
}

// Load reads a snapshot from r and feeds each element to sink in the order
// it was saved. A sink error aborts the load.
func Load[T any](r io.Reader, sink func(elem T) error, optFns ...func(o *Options)) error {
	opts := applyOptions(optFns)

	count, err := load(r, sink, opts)
	opts.Logger.LogLoad(context.Background(), count, err)
	return err
}

func load[T any](r io.Reader, sink func(elem T) error, opts Options) (int, error) {
	var magic, ver uint32
	var compression, nameLen uint8
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return 0, err
	}
	if magic != magicNumber {
		return 0, ErrInvalidMagic
	}
	if err := binary.Read(r, binary.LittleEndian, &ver); err != nil {
		return 0, err
	}
	if ver != version {
		return 0, fmt.Errorf("%w: 0x%08x", ErrInvalidVersion, ver)
	}
	if err := binary.Read(r, binary.LittleEndian, &compression); err != nil {
		return 0, err
	}
	if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
		return 0, err
	}
	nameBuf := make([]byte, nameLen)
	if _, err := io.ReadFull(r, nameBuf); err != nil {
		return 0, err
	}

	codec := opts.Codec
	if codec.Name() != string(nameBuf) {
		byName, ok := ByName(string(nameBuf))
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownCodec, nameBuf)
		}
		codec = byName
	}

	var count, payloadLen uint64
	var sum uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return 0, err
	}
	if err := binary.Read(r, binary.LittleEndian, &payloadLen); err != nil {
		return 0, err
	}
	if err := binary.Read(r, binary.LittleEndian, &sum); err != nil {
		return 0, err
	}

	// The length comes from an untrusted header; grow the buffer only as
	// bytes actually arrive instead of pre-allocating the claimed size.
	var payloadBuf bytes.Buffer
	read, err := io.Copy(&payloadBuf, io.LimitReader(r, int64(payloadLen))) //nolint:gosec // bounded by the reader, not the claim
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTruncatedSnapshot, err)
	}
	if payloadLen > uint64(read) {
		return 0, ErrTruncatedSnapshot
	}
	payload := payloadBuf.Bytes()
	if crc32.ChecksumIEEE(payload) != sum {
		return 0, ErrChecksumMismatch
	}

	body, err := decompress(payload, Compression(compression))
	if err != nil {
		return 0, err
	}

	buf := bytes.NewReader(body)
	for i := 0; i < int(count); i++ {
		var n uint32
		if err := binary.Read(buf, binary.LittleEndian, &n); err != nil {
			return i, fmt.Errorf("%w: record %d: %v", ErrTruncatedSnapshot, i, err)
		}
		if int64(n) > int64(buf.Len()) {
			return i, fmt.Errorf("%w: record %d claims %d bytes, %d remain", ErrTruncatedSnapshot, i, n, buf.Len())
		}
		record := make([]byte, n)
		if _, err := io.ReadFull(buf, record); err != nil {
			return i, fmt.Errorf("%w: record %d: %v", ErrTruncatedSnapshot, i, err)
		}
		var elem T
		if err := codec.Unmarshal(record, &elem); err != nil {
			return i, fmt.Errorf("unmarshal element %d: %w", i, err)
		}
		if err := sink(elem); err != nil {
			return i, err
		}
	}
	return int(count), nil
}

func compress(data []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionZstd:
		var buf bytes.Buffer
		enc, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, err
		}
		if _, err := enc.Write(data); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case CompressionLZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompress, c)
	}
}

func decompress(data []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return io.ReadAll(dec)
	case CompressionLZ4:
		return io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompress, c)
	}
}

// Target names one container snapshot within a SaveAll batch.
type Target struct {
	// Name labels the target in errors.
	Name string

	// Save performs the snapshot, typically a closure over Save.
	Save func() error
}

// SaveAll runs the targets concurrently and returns the first error. A
// canceled context aborts targets that have not started.
func SaveAll(ctx context.Context, targets ...Target) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, t := range targets {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if err := t.Save(); err != nil {
				return fmt.Errorf("snapshot %s: %w", t.Name, err)
			}
			return nil
		})
	}
	return g.Wait()
}
