package hostfuncs

import (
	"context"
	"errors"
	"fmt"

	sdkerrors "github.com/superfaceai/one-sdk-sub004/domain/errors"
	"github.com/superfaceai/one-sdk-sub004/resource"
	"github.com/superfaceai/one-sdk-sub004/wireformat"
)

const (
	defaultReadChunk = 64 << 10
	maxReadChunk     = 1 << 20
)

func (d *Dispatcher) streamRead(ctx context.Context, r *wireformat.StreamRead) (wireformat.Response, error) {
	stream, err := resource.Lookup[resource.Reader](d.table, resource.Handle(r.Handle))
	if err != nil {
		return wireformat.Response{}, err
	}

	size := r.MaxLen
	switch {
	case size <= 0:
		size = defaultReadChunk
	case size > maxReadChunk:
		size = maxReadChunk
	}

	payload, err := d.bridge.Run(ctx, r.Handle, string(wireformat.KindStreamRead), func(context.Context) (any, error) {
		data, err := stream.ReadChunk(size)
		if err != nil {
			return nil, &sdkerrors.CapabilityError{Capability: "stream", Op: "read", Target: handleTarget(r.Handle), Err: err}
		}
		return data, nil
	})
	if err != nil {
		failStream(stream, err)
		return wireformat.Response{}, err
	}

	resp := wireformat.OK()
	resp.Data, _ = payload.([]byte)
	return resp, nil
}

func (d *Dispatcher) streamWrite(ctx context.Context, r *wireformat.StreamWrite) (wireformat.Response, error) {
	stream, err := resource.Lookup[resource.Writer](d.table, resource.Handle(r.Handle))
	if err != nil {
		return wireformat.Response{}, err
	}

	payload, err := d.bridge.Run(ctx, r.Handle, string(wireformat.KindStreamWrite), func(context.Context) (any, error) {
		n, err := stream.WriteChunk(r.Data)
		if err != nil {
			return nil, &sdkerrors.CapabilityError{Capability: "stream", Op: "write", Target: handleTarget(r.Handle), Err: err}
		}
		return n, nil
	})
	if err != nil {
		failStream(stream, err)
		return wireformat.Response{}, err
	}

	resp := wireformat.OK()
	resp.Written, _ = payload.(int)
	return resp, nil
}

// streamClose releases any handle, including an exchange whose head was
// never collected.
func (d *Dispatcher) streamClose(r *wireformat.StreamClose) (wireformat.Response, error) {
	res, err := d.table.Remove(resource.Handle(r.Handle))
	if err != nil {
		return wireformat.Response{}, err
	}
	d.bridge.Discard(r.Handle)
	if err := res.Close(); err != nil {
		return wireformat.Response{}, &sdkerrors.CapabilityError{
			Capability: "stream", Op: "close", Target: handleTarget(r.Handle), Err: err,
		}
	}
	return wireformat.OK(), nil
}

// failStream marks a stream unusable after a read or write that failed or
// timed out. A timed-out task may still be reading, so the stream position
// is unknown. Errors about the handle itself leave the stream alone.
func failStream(stream interface{ Fail(error) }, err error) {
	var resErr *sdkerrors.ResourceError
	if errors.As(err, &resErr) {
		return
	}
	stream.Fail(err)
}

func handleTarget(h uint32) string {
	return fmt.Sprintf("handle %d", h)
}
