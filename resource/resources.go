package resource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/superfaceai/one-sdk-sub004/domain/entities"
	"github.com/superfaceai/one-sdk-sub004/domain/ports"
)

// Reader is implemented by resources that serve stream-read.
type Reader interface {
	Resource
	// ReadChunk returns up to max bytes. An empty slice with a nil error
	// means end of stream.
	ReadChunk(max int) ([]byte, error)
	// Fail marks the stream unusable. Later reads and writes return err.
	Fail(err error)
}

// Writer is implemented by resources that serve stream-write.
type Writer interface {
	Resource
	WriteChunk(p []byte) (int, error)
	Fail(err error)
}

// ErrStreamFailed is wrapped by every read or write of a failed stream.
var ErrStreamFailed = errors.New("stream failed")

// streamGuard serializes the reads and writes of one stream and records
// the failure that made it unusable. Close does not take the lock, so it
// can interrupt a read in progress.
type streamGuard struct {
	mu     sync.Mutex
	failed atomic.Pointer[error]
}

// Fail records err. The first failure wins.
func (g *streamGuard) Fail(err error) {
	g.failed.CompareAndSwap(nil, &err)
}

func (g *streamGuard) failure() error {
	if p := g.failed.Load(); p != nil {
		return fmt.Errorf("%w: %w", ErrStreamFailed, *p)
	}
	return nil
}

// lock acquires the stream, or returns the recorded failure.
func (g *streamGuard) lock() error {
	if err := g.failure(); err != nil {
		return err
	}
	g.mu.Lock()
	if err := g.failure(); err != nil {
		g.mu.Unlock()
		return err
	}
	return nil
}

// PendingHTTPExchange is an http-call whose response head has not been
// collected yet.
type PendingHTTPExchange struct {
	cancel context.CancelFunc
	Method string
	URL    string
}

// NewPendingHTTPExchange records an exchange. cancel aborts the host fetch
// when the exchange is released without being collected.
func NewPendingHTTPExchange(method, url string, cancel context.CancelFunc) *PendingHTTPExchange {
	return &PendingHTTPExchange{Method: method, URL: url, cancel: cancel}
}

// Bind sets the cancel function once the exchange's handle is known.
func (p *PendingHTTPExchange) Bind(cancel context.CancelFunc) {
	p.cancel = cancel
}

func (p *PendingHTTPExchange) Kind() Kind { return KindPendingHTTPExchange }

func (p *PendingHTTPExchange) Close() error {
	if p.cancel != nil {
		p.cancel()
	}
	return nil
}

// ByteStream is a readable stream, typically an HTTP response body.
type ByteStream struct {
	r io.ReadCloser
	streamGuard
	eof bool
}

// NewByteStream wraps rc. The stream owns rc and closes it on Close.
func NewByteStream(rc io.ReadCloser) *ByteStream {
	return &ByteStream{r: rc}
}

func (s *ByteStream) Kind() Kind { return KindByteStream }

func (s *ByteStream) ReadChunk(max int) ([]byte, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	if s.eof || max <= 0 {
		return []byte{}, nil
	}
	data, eof, err := readChunk(s.r, max)
	s.eof = eof
	return data, err
}

func (s *ByteStream) Close() error {
	return s.r.Close()
}

// OpenFile is a file opened through the FileSystem capability.
type OpenFile struct {
	file ports.File
	Path string
	Mode entities.OpenOptions
	streamGuard
	eof bool
}

// NewOpenFile wraps an open file. The resource owns f.
func NewOpenFile(path string, mode entities.OpenOptions, f ports.File) *OpenFile {
	return &OpenFile{Path: path, Mode: mode, file: f}
}

func (f *OpenFile) Kind() Kind { return KindOpenFile }

func (f *OpenFile) ReadChunk(max int) ([]byte, error) {
	if err := f.lock(); err != nil {
		return nil, err
	}
	defer f.mu.Unlock()
	if f.eof || max <= 0 {
		return []byte{}, nil
	}
	data, eof, err := readChunk(f.file, max)
	f.eof = eof
	return data, err
}

func (f *OpenFile) WriteChunk(p []byte) (int, error) {
	if err := f.lock(); err != nil {
		return 0, err
	}
	defer f.mu.Unlock()
	return f.file.Write(p)
}

func (f *OpenFile) Close() error {
	return f.file.Close()
}

// readChunk performs reads until it has at least one byte, hits EOF, or
// fails, so that an empty result unambiguously means end of stream.
func readChunk(r io.Reader, max int) ([]byte, bool, error) {
	buf := make([]byte, max)
	for {
		n, err := r.Read(buf)
		switch {
		case errors.Is(err, io.EOF):
			return buf[:n], n == 0, nil
		case err != nil:
			return nil, false, err
		case n > 0:
			return buf[:n], false, nil
		}
	}
}
