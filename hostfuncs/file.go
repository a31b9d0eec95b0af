package hostfuncs

import (
	"context"

	"github.com/superfaceai/one-sdk-sub004/domain/entities"
	sdkerrors "github.com/superfaceai/one-sdk-sub004/domain/errors"
	"github.com/superfaceai/one-sdk-sub004/domain/ports"
	"github.com/superfaceai/one-sdk-sub004/resource"
	"github.com/superfaceai/one-sdk-sub004/wireformat"
)

// openKey is the bridge key for file-open. Handle 0 is never issued and
// only one exchange runs at a time, so it cannot collide.
const openKey = 0

func (d *Dispatcher) fileOpen(ctx context.Context, r *wireformat.FileOpen) (wireformat.Response, error) {
	fs := d.caps.FileSystem
	if fs == nil {
		return wireformat.Response{}, &sdkerrors.CapabilityError{Capability: "filesystem", Op: "open", Target: r.Path, Err: sdkerrors.ErrNotConfigured}
	}

	mode := r.OpenOptions
	if !mode.Read && !mode.Writable() {
		mode.Read = true
	}
	if err := d.checkFileSystem(r.Path, mode); err != nil {
		return wireformat.Response{}, err
	}

	payload, err := d.bridge.Run(ctx, openKey, string(wireformat.KindFileOpen), func(ctx context.Context) (any, error) {
		f, err := fs.Open(ctx, r.Path, mode)
		if err != nil {
			return nil, &sdkerrors.CapabilityError{Capability: "filesystem", Op: "open", Target: r.Path, Err: err}
		}
		return f, nil
	})
	if err != nil {
		return wireformat.Response{}, err
	}

	file := payload.(ports.File)
	h, err := d.table.Insert(resource.NewOpenFile(r.Path, mode, file))
	if err != nil {
		_ = file.Close()
		return wireformat.Response{}, err
	}

	resp := wireformat.OK()
	resp.Handle = uint32(h)
	return resp, nil
}

func (d *Dispatcher) checkFileSystem(path string, mode entities.OpenOptions) error {
	if d.policy == nil {
		return nil
	}
	var ops []string
	if mode.Read {
		ops = append(ops, "read")
	}
	if mode.Writable() {
		ops = append(ops, "write")
	}
	for _, op := range ops {
		if !d.policy.CheckFileSystem(entities.FileSystemRequest{Path: path, Operation: op}, d.grants) {
			return &sdkerrors.CapabilityError{Capability: "filesystem", Op: op, Target: path, Err: sdkerrors.ErrDenied}
		}
	}
	return nil
}
