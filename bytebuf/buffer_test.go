package bytebuf_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/superfaceai/one-sdk-sub004/bytebuf"
	sdkerrors "github.com/superfaceai/one-sdk-sub004/domain/errors"
	"github.com/superfaceai/one-sdk-sub004/textcoder"
)

func TestExtend_ConcatenatesAndGrowsCapacity(t *testing.T) {
	b := bytebuf.WithCapacity(0)
	b.Extend([]byte{1, 2})
	b.Extend([]byte{3})

	assert.Equal(t, []byte{1, 2, 3}, b.Data())
	assert.Equal(t, 3, b.Len())
	assert.GreaterOrEqual(t, b.Cap(), 3)
}

func TestReserve_GrowthRule(t *testing.T) {
	tests := []struct {
		name       string
		initialCap int
		prefill    int
		additional int
		wantCap    int
	}{
		{"fits without growth", 8, 4, 4, 8},
		{"doubles", 8, 8, 1, 16},
		{"jumps past double", 4, 4, 20, 24},
		{"from empty", 0, 0, 5, 5},
		{"non-positive is a no-op", 4, 0, -1, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := bytebuf.WithCapacity(tt.initialCap)
			b.Extend(bytes.Repeat([]byte{7}, tt.prefill))
			before := append([]byte(nil), b.Data()...)

			b.Reserve(tt.additional)

			assert.Equal(t, tt.wantCap, b.Cap())
			assert.Equal(t, before, b.Data())
		})
	}
}

func TestUninitializedTailAndCommit(t *testing.T) {
	b := bytebuf.FromBytes([]byte("ab"))
	b.Reserve(3)

	tail := b.UninitializedTail()
	require.GreaterOrEqual(t, len(tail), 3)
	n := copy(tail, "cde")
	require.NoError(t, b.Commit(n))

	assert.Equal(t, "abcde", string(b.Data()))
	assert.Error(t, b.Commit(b.Cap()))
	assert.Error(t, b.Commit(-1))
	assert.LessOrEqual(t, b.Len(), b.Cap())
}

func TestReadFrom(t *testing.T) {
	payload := strings.Repeat("0123456789", 300)
	b := bytebuf.WithCapacity(4)

	n, err := b.ReadFrom(iotest.OneByteReader(strings.NewReader(payload)))
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), n)
	assert.Equal(t, payload, string(b.Data()))
}

func TestReadFrom_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	b := bytebuf.WithCapacity(0)

	_, err := b.ReadFrom(io.MultiReader(strings.NewReader("ok"), iotest.ErrReader(boom)))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "ok", string(b.Data()))
}

func TestReset(t *testing.T) {
	b := bytebuf.FromBytes([]byte("hello"))
	capBefore := b.Cap()
	b.Reset()

	assert.Zero(t, b.Len())
	assert.Equal(t, capBefore, b.Cap())
	assert.Empty(t, b.Data())
}

func TestDecodeAndEncodeString(t *testing.T) {
	coder := textcoder.New()

	b := bytebuf.FromBytes([]byte("héllo"))
	text, err := b.Decode("utf8", coder)
	require.NoError(t, err)
	assert.Equal(t, "héllo", text)

	encoded, err := b.Decode("base64", coder)
	require.NoError(t, err)
	assert.Equal(t, "aMOpbGxv", encoded)

	back, err := bytebuf.EncodeString(encoded, "base64", coder)
	require.NoError(t, err)
	assert.Equal(t, b.Data(), back.Data())

	fromText, err := bytebuf.EncodeString("hi", "utf-8", coder)
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), fromText.Data())
}

func TestDecode_UnsupportedEncoding(t *testing.T) {
	coder := textcoder.New()

	_, err := bytebuf.FromBytes([]byte("x")).Decode("latin1", coder)
	var encErr *sdkerrors.EncodingError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, "latin1", encErr.Encoding)

	_, err = bytebuf.EncodeString("!!", "base64", coder)
	require.ErrorAs(t, err, &encErr)
}
