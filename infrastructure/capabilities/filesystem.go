package capabilities

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/superfaceai/one-sdk-sub004/domain/entities"
	"github.com/superfaceai/one-sdk-sub004/domain/ports"
)

// OSFileSystem opens files on the host filesystem. Relative paths resolve
// against Root when it is set.
type OSFileSystem struct {
	Root string
	Perm os.FileMode
}

var _ ports.FileSystem = (*OSFileSystem)(nil)

// NewOSFileSystem returns a filesystem rooted at the process working directory.
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{Perm: 0o644}
}

func (fs *OSFileSystem) Open(ctx context.Context, path string, opts entities.OpenOptions) (ports.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if path == "" {
		return nil, fmt.Errorf("empty path")
	}
	if fs.Root != "" && !filepath.IsAbs(path) {
		path = filepath.Join(fs.Root, path)
	}
	return os.OpenFile(path, openFlags(opts), fs.Perm)
}

func openFlags(opts entities.OpenOptions) int {
	var flags int
	switch {
	case opts.Writable() && opts.Read:
		flags = os.O_RDWR
	case opts.Writable():
		flags = os.O_WRONLY
	default:
		flags = os.O_RDONLY
	}
	if opts.Create {
		flags |= os.O_CREATE
	}
	if opts.Truncate {
		flags |= os.O_TRUNC
	}
	if opts.Append {
		flags |= os.O_APPEND
	}
	return flags
}
