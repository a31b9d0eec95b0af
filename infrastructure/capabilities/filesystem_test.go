package capabilities

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/superfaceai/one-sdk-sub004/domain/entities"
)

func TestOSFileSystem_WriteThenRead(t *testing.T) {
	fs := &OSFileSystem{Root: t.TempDir(), Perm: 0o600}
	ctx := context.Background()

	w, err := fs.Open(ctx, "out.txt", entities.OpenOptions{Write: true, Create: true, Truncate: true})
	require.NoError(t, err)
	_, err = w.Write([]byte("first"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	a, err := fs.Open(ctx, "out.txt", entities.OpenOptions{Append: true})
	require.NoError(t, err)
	_, err = a.Write([]byte("+second"))
	require.NoError(t, err)
	require.NoError(t, a.Close())

	r, err := fs.Open(ctx, filepath.Join(fs.Root, "out.txt"), entities.OpenOptions{Read: true})
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "first+second", string(data))
}

func TestOSFileSystem_Errors(t *testing.T) {
	fs := &OSFileSystem{Root: t.TempDir()}

	_, err := fs.Open(context.Background(), "missing.txt", entities.OpenOptions{Read: true})
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = fs.Open(context.Background(), "", entities.OpenOptions{Read: true})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = fs.Open(ctx, "x", entities.OpenOptions{Read: true})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpenFlags(t *testing.T) {
	assert.Equal(t, os.O_RDONLY, openFlags(entities.OpenOptions{Read: true}))
	assert.Equal(t, os.O_RDWR|os.O_CREATE, openFlags(entities.OpenOptions{Read: true, Create: true}))
	assert.Equal(t, os.O_WRONLY|os.O_APPEND, openFlags(entities.OpenOptions{Append: true}))
}
