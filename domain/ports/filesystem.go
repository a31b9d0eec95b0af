package ports

import (
	"context"
	"io"

	"github.com/superfaceai/one-sdk-sub004/domain/entities"
)

// File is an open file handed to the guest as a stream.
type File interface {
	io.Reader
	io.Writer
	io.Closer
}

// FileSystem opens files for the guest.
type FileSystem interface {
	Open(ctx context.Context, path string, opts entities.OpenOptions) (File, error)
}
