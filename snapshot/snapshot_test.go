package snapshot

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/gocc"
	"github.com/hupe1980/gocc/ordmap"
)

func TestSnapshotRoundTrip(t *testing.T) {
	tests := []struct {
		name        string
		compression Compression
	}{
		{"None", CompressionNone},
		{"Zstd", CompressionZstd},
		{"LZ4", CompressionLZ4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := ordmap.New[int, string]()
			for _, k := range []int{9, 1, 6, 3, 5} {
				_, err := src.Emplace(k, "v")
				require.NoError(t, err)
			}

			var buf bytes.Buffer
			err := Save[gocc.Pair[int, string]](&buf, src, func(o *Options) {
				o.Compression = tt.compression
			})
			require.NoError(t, err)

			dst := ordmap.New[int, string]()
			var order []int
			err = Load(&buf, func(p gocc.Pair[int, string]) error {
				order = append(order, p.Key)
				_, err := dst.Emplace(p.Key, p.Value)
				return err
			})
			require.NoError(t, err)

			assert.Equal(t, []int{1, 3, 5, 6, 9}, order, "elements replay in save order")
			assert.Equal(t, 5, dst.Count())
			assert.True(t, dst.Validate())
		})
	}
}

func TestSnapshotEmptyContainer(t *testing.T) {
	src := ordmap.New[int, string]()

	var buf bytes.Buffer
	require.NoError(t, Save[gocc.Pair[int, string]](&buf, src))

	loaded := 0
	err := Load(&buf, func(gocc.Pair[int, string]) error {
		loaded++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, loaded)
}

func TestSnapshotChecksumMismatch(t *testing.T) {
	src := ordmap.New[int, string]()
	_, err := src.Emplace(1, "one")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Save[gocc.Pair[int, string]](&buf, src))

	// Corrupt the last payload byte.
	data := buf.Bytes()
	data[len(data)-1] ^= 0xFF

	err = Load(bytes.NewReader(data), func(gocc.Pair[int, string]) error { return nil })
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestSnapshotInvalidMagic(t *testing.T) {
	data := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0, 0, 0, 0}
	err := Load(bytes.NewReader(data), func(gocc.Pair[int, string]) error { return nil })
	assert.ErrorIs(t, err, ErrInvalidMagic)
}

func TestSnapshotTruncated(t *testing.T) {
	src := ordmap.New[int, string]()
	_, err := src.Emplace(1, "one")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Save[gocc.Pair[int, string]](&buf, src))

	data := buf.Bytes()[:buf.Len()-3]
	err = Load(bytes.NewReader(data), func(gocc.Pair[int, string]) error { return nil })
	assert.ErrorIs(t, err, ErrTruncatedSnapshot)
}

func TestSnapshotHugeClaimedPayload(t *testing.T) {
	// A corrupt header may claim an absurd payload size; Load must surface a
	// truncation error instead of allocating the claimed length.
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(magicNumber)))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(version)))
	buf.WriteByte(byte(CompressionNone))
	buf.WriteByte(4)
	buf.WriteString("json")
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint64(1)))     // count
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint64(1)<<62)) // claimed payload length
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(0)))     // checksum

	err := Load(&buf, func(gocc.Pair[int, string]) error { return nil })
	assert.ErrorIs(t, err, ErrTruncatedSnapshot)
}

func TestSnapshotSinkErrorAborts(t *testing.T) {
	src := ordmap.New[int, string]()
	for k := 1; k <= 3; k++ {
		_, err := src.Emplace(k, "v")
		require.NoError(t, err)
	}

	var buf bytes.Buffer
	require.NoError(t, Save[gocc.Pair[int, string]](&buf, src))

	sinkErr := errors.New("sink full")
	seen := 0
	err := Load(&buf, func(gocc.Pair[int, string]) error {
		seen++
		if seen == 2 {
			return sinkErr
		}
		return nil
	})
	assert.ErrorIs(t, err, sinkErr)
	assert.Equal(t, 2, seen)
}

func TestSaveAll(t *testing.T) {
	a := ordmap.New[int, string]()
	b := ordmap.New[int, string]()
	for k := 1; k <= 3; k++ {
		_, err := a.Emplace(k, "a")
		require.NoError(t, err)
		_, err = b.Emplace(k, "b")
		require.NoError(t, err)
	}

	var bufA, bufB bytes.Buffer
	err := SaveAll(context.Background(),
		Target{Name: "a", Save: func() error {
			return Save[gocc.Pair[int, string]](&bufA, a)
		}},
		Target{Name: "b", Save: func() error {
			return Save[gocc.Pair[int, string]](&bufB, b)
		}},
	)
	require.NoError(t, err)
	assert.Positive(t, bufA.Len())
	assert.Positive(t, bufB.Len())
}

func TestSaveAllPropagatesFailure(t *testing.T) {
	boom := errors.New("disk gone")
	err := SaveAll(context.Background(),
		Target{Name: "ok", Save: func() error { return nil }},
		Target{Name: "broken", Save: func() error { return boom }},
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "broken")
}

func TestSaveLogsContainerName(t *testing.T) {
	src := ordmap.New[int, string]()
	_, err := src.Emplace(1, "one")
	require.NoError(t, err)

	var logBuf bytes.Buffer
	var buf bytes.Buffer
	err = Save[gocc.Pair[int, string]](&buf, src, func(o *Options) {
		o.Name = "sessions"
		o.Logger = gocc.NewLogger(slog.NewJSONHandler(&logBuf, nil))
	})
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(logBuf.Bytes(), &entry))
	assert.Equal(t, "snapshot saved", entry["msg"])
	assert.Equal(t, "sessions", entry["container"])
	assert.Equal(t, float64(1), entry["count"])
}

func TestCodecByName(t *testing.T) {
	c, ok := ByName("json")
	require.True(t, ok)
	assert.Equal(t, "json", c.Name())

	c, ok = ByName("go-json")
	require.True(t, ok)
	assert.Equal(t, "go-json", c.Name())

	_, ok = ByName("msgpack")
	assert.False(t, ok)

	assert.Equal(t, "go-json", Default.Name())
}

// A snapshot written with either codec loads with default options: the codec
// is resolved from the header, not from the loader's configuration.
func TestSnapshotCodecRoundTrip(t *testing.T) {
	for _, codec := range []Codec{JSON{}, GoJSON{}} {
		t.Run(codec.Name(), func(t *testing.T) {
			src := ordmap.New[int, string]()
			_, err := src.Emplace(1, "one")
			require.NoError(t, err)
			_, err = src.Emplace(2, "two")
			require.NoError(t, err)

			var buf bytes.Buffer
			err = Save[gocc.Pair[int, string]](&buf, src, func(o *Options) {
				o.Codec = codec
			})
			require.NoError(t, err)

			got := map[int]string{}
			err = Load(&buf, func(p gocc.Pair[int, string]) error {
				got[p.Key] = p.Value
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, map[int]string{1: "one", 2: "two"}, got)
		})
	}
}
