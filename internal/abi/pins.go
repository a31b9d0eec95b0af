package abi

import (
	"fmt"
	"sync"
)

// Pins keeps references to buffers handed across the boundary so the Go GC
// cannot collect them until they are released.
type Pins struct {
	ptrs  map[uint32][]byte
	total int
	limit int
	mu    sync.Mutex
}

// NewPins tracks at most limit bytes.
func NewPins(limit int) *Pins {
	return &Pins{ptrs: make(map[uint32][]byte), limit: limit}
}

// Pin records buf under ptr.
func (p *Pins) Pin(ptr uint32, buf []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.total+len(buf) > p.limit {
		return fmt.Errorf("abi: memory allocation limit exceeded (requested: %d bytes, current: %d bytes, limit: %d bytes)",
			len(buf), p.total, p.limit)
	}
	p.ptrs[ptr] = buf
	p.total += len(buf)
	return nil
}

// Unpin drops the buffer at ptr. Untracked pointers are ignored. The
// stored length is used for accounting, not the caller's size.
func (p *Pins) Unpin(ptr uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	buf, ok := p.ptrs[ptr]
	if !ok {
		return
	}
	delete(p.ptrs, ptr)
	p.total -= len(buf)
	if p.total < 0 {
		p.total = 0
	}
}

// Total returns the number of pinned bytes.
func (p *Pins) Total() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total
}

// Len returns the number of pinned buffers.
func (p *Pins) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.ptrs)
}

// Reset forgets every pinned buffer.
func (p *Pins) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	clear(p.ptrs)
	p.total = 0
}
