package resource_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdkerrors "github.com/superfaceai/one-sdk-sub004/domain/errors"
	"github.com/superfaceai/one-sdk-sub004/resource"
)

type trackingCloser struct {
	io.Reader
	closed int
	err    error
}

func (c *trackingCloser) Close() error {
	c.closed++
	return c.err
}

func newStream(s string) (*resource.ByteStream, *trackingCloser) {
	rc := &trackingCloser{Reader: strings.NewReader(s)}
	return resource.NewByteStream(rc), rc
}

func TestTable_HandleLiveness(t *testing.T) {
	table := resource.NewTable()
	stream, _ := newStream("x")

	h, err := table.Insert(stream)
	require.NoError(t, err)
	assert.NotZero(t, h)

	got, err := table.Get(h)
	require.NoError(t, err)
	assert.Same(t, stream, got)

	removed, err := table.Remove(h)
	require.NoError(t, err)
	assert.Same(t, stream, removed)

	_, err = table.Get(h)
	var resErr *sdkerrors.ResourceError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, uint32(h), resErr.Handle)
	assert.ErrorIs(t, err, sdkerrors.ErrHandleNotFound)

	_, err = table.Remove(h)
	assert.ErrorAs(t, err, &resErr)
}

func TestTable_NeverIssuedHandle(t *testing.T) {
	table := resource.NewTable()

	_, err := table.Get(0)
	assert.ErrorIs(t, err, sdkerrors.ErrHandleNotFound)
	_, err = table.Get(42)
	assert.ErrorIs(t, err, sdkerrors.ErrHandleNotFound)
}

func TestTable_HandlesAreNotReused(t *testing.T) {
	table := resource.NewTable()
	seen := map[resource.Handle]bool{}

	for i := 0; i < 50; i++ {
		s, _ := newStream("")
		h, err := table.Insert(s)
		require.NoError(t, err)
		require.False(t, seen[h], "handle %d issued twice", h)
		seen[h] = true
		if i%2 == 0 {
			_, err = table.Remove(h)
			require.NoError(t, err)
		}
	}
	assert.Equal(t, 25, table.Len())
}

func TestLookup_WrongVariant(t *testing.T) {
	table := resource.NewTable()
	h, err := table.Insert(resource.NewPendingHTTPExchange("GET", "https://example.com", nil))
	require.NoError(t, err)

	_, err = resource.Lookup[*resource.ByteStream](table, h)
	assert.ErrorIs(t, err, sdkerrors.ErrWrongResource)
	assert.Equal(t, 1, table.Len())

	_, err = resource.RemoveAs[*resource.ByteStream](table, h)
	assert.ErrorIs(t, err, sdkerrors.ErrWrongResource)
	assert.Equal(t, 1, table.Len())

	exchange, err := resource.RemoveAs[*resource.PendingHTTPExchange](table, h)
	require.NoError(t, err)
	assert.Equal(t, "GET", exchange.Method)
	assert.Zero(t, table.Len())
}

func TestTable_CloseReleasesEverything(t *testing.T) {
	table := resource.NewTable()

	s1, c1 := newStream("a")
	s2, c2 := newStream("b")
	c2.err = errors.New("close failed")
	cancelled := false

	_, err := table.Insert(s1)
	require.NoError(t, err)
	_, err = table.Insert(s2)
	require.NoError(t, err)
	_, err = table.Insert(resource.NewPendingHTTPExchange("GET", "u", func() { cancelled = true }))
	require.NoError(t, err)

	err = table.Close()
	assert.ErrorContains(t, err, "close failed")
	assert.Equal(t, 1, c1.closed)
	assert.Equal(t, 1, c2.closed)
	assert.True(t, cancelled)
	assert.Zero(t, table.Len())
	assert.Empty(t, table.Handles())

	s3, _ := newStream("c")
	_, err = table.Insert(s3)
	assert.ErrorIs(t, err, sdkerrors.ErrTableClosed)
	assert.NoError(t, table.Close())
}

func TestByteStream_ReadChunk(t *testing.T) {
	stream, _ := newStream("hello world")

	first, err := stream.ReadChunk(5)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(first))

	rest, err := stream.ReadChunk(100)
	require.NoError(t, err)
	assert.Equal(t, " world", string(rest))

	end, err := stream.ReadChunk(100)
	require.NoError(t, err)
	assert.Empty(t, end)

	again, err := stream.ReadChunk(100)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestByteStream_FailStopsReads(t *testing.T) {
	stream, _ := newStream("hello world")

	first, err := stream.ReadChunk(5)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(first))

	cause := errors.New("read timed out")
	stream.Fail(cause)
	stream.Fail(errors.New("second failure"))

	data, err := stream.ReadChunk(100)
	assert.Nil(t, data)
	assert.ErrorIs(t, err, resource.ErrStreamFailed)
	assert.ErrorIs(t, err, cause)
	assert.NotContains(t, err.Error(), "second failure")
}
