package resource

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	sdkerrors "github.com/superfaceai/one-sdk-sub004/domain/errors"
)

// Handle is an opaque integer naming a live resource.
type Handle uint32

// Kind tags a resource variant.
type Kind uint8

const (
	KindOpenFile Kind = iota + 1
	KindPendingHTTPExchange
	KindByteStream
)

func (k Kind) String() string {
	switch k {
	case KindOpenFile:
		return "open-file"
	case KindPendingHTTPExchange:
		return "pending-http-exchange"
	case KindByteStream:
		return "byte-stream"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Resource is a table entry. Close releases whatever the resource holds and
// is called exactly once, either by the owner after Remove or by Table.Close.
type Resource interface {
	Kind() Kind
	Close() error
}

// Table maps handles to resources for a single guest instance.
type Table struct {
	entries map[Handle]Resource
	mu      sync.Mutex
	next    Handle
	closed  bool
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{entries: make(map[Handle]Resource), next: 1}
}

// Insert stores r under a fresh handle.
func (t *Table) Insert(r Resource) (Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return 0, &sdkerrors.ResourceError{Op: "insert", Err: sdkerrors.ErrTableClosed}
	}
	h := t.next
	t.next++
	t.entries[h] = r
	return h, nil
}

// Get returns the live resource for h.
func (t *Table) Get(h Handle) (Resource, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.entries[h]
	if !ok {
		return nil, &sdkerrors.ResourceError{Handle: uint32(h), Op: "get", Err: sdkerrors.ErrHandleNotFound}
	}
	return r, nil
}

// Remove takes h out of the table and hands the resource to the caller,
// who becomes responsible for closing it.
func (t *Table) Remove(h Handle) (Resource, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.entries[h]
	if !ok {
		return nil, &sdkerrors.ResourceError{Handle: uint32(h), Op: "remove", Err: sdkerrors.ErrHandleNotFound}
	}
	delete(t.entries, h)
	return r, nil
}

// Len returns the number of live resources.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Handles returns the live handles in issue order.
func (t *Table) Handles() []Handle {
	t.mu.Lock()
	defer t.mu.Unlock()

	handles := make([]Handle, 0, len(t.entries))
	for h := range t.entries {
		handles = append(handles, h)
	}
	slices.Sort(handles)
	return handles
}

// Close releases every live resource and rejects further inserts. It is
// safe to call more than once.
func (t *Table) Close() error {
	t.mu.Lock()
	t.closed = true
	entries := t.entries
	t.entries = make(map[Handle]Resource)
	t.mu.Unlock()

	handles := make([]Handle, 0, len(entries))
	for h := range entries {
		handles = append(handles, h)
	}
	slices.Sort(handles)

	var errs []error
	for _, h := range handles {
		if err := entries[h].Close(); err != nil {
			errs = append(errs, fmt.Errorf("release handle %d (%s): %w", h, entries[h].Kind(), err))
		}
	}
	return errors.Join(errs...)
}

// Lookup returns the resource for h as T. A live handle of another variant
// is a ResourceError wrapping ErrWrongResource.
func Lookup[T Resource](t *Table, h Handle) (T, error) {
	var zero T
	r, err := t.Get(h)
	if err != nil {
		return zero, err
	}
	typed, ok := r.(T)
	if !ok {
		return zero, &sdkerrors.ResourceError{
			Handle: uint32(h),
			Op:     "lookup",
			Err:    fmt.Errorf("%w: found %s", sdkerrors.ErrWrongResource, r.Kind()),
		}
	}
	return typed, nil
}

// RemoveAs removes h only if it holds a T.
func RemoveAs[T Resource](t *Table, h Handle) (T, error) {
	if _, err := Lookup[T](t, h); err != nil {
		var zero T
		return zero, err
	}
	r, err := t.Remove(h)
	if err != nil {
		var zero T
		return zero, err
	}
	return r.(T), nil
}
