// Package testutil provides fakes and helpers shared by the package tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/superfaceai/one-sdk-sub004/domain/entities"
	"github.com/superfaceai/one-sdk-sub004/domain/ports"
	"github.com/superfaceai/one-sdk-sub004/wireformat"
)

// Exchanger is anything that serves encoded envelopes.
type Exchanger interface {
	Exchange(ctx context.Context, payload []byte) []byte
}

// Roundtrip encodes req, sends it through ex, and decodes the response.
func Roundtrip(t *testing.T, ex Exchanger, codec wireformat.Codec, req wireformat.Request) wireformat.Response {
	t.Helper()
	payload, err := wireformat.EncodeRequest(codec, req)
	require.NoError(t, err)
	resp, err := wireformat.DecodeResponse(codec, ex.Exchange(context.Background(), payload))
	require.NoError(t, err)
	return resp
}

// RequireOK fails the test unless resp is an ok envelope.
func RequireOK(t *testing.T, resp wireformat.Response) {
	t.Helper()
	require.Equal(t, wireformat.ResponseOK, resp.Kind, "error: %s", resp.Error)
}

// NetworkFunc adapts a function to ports.Network.
type NetworkFunc func(ctx context.Context, req entities.HTTPRequest) (*entities.HTTPResponse, error)

func (f NetworkFunc) Fetch(ctx context.Context, req entities.HTTPRequest) (*entities.HTTPResponse, error) {
	return f(ctx, req)
}

// Body is a response body that records whether it was closed.
type Body struct {
	r      *bytes.Reader
	closed atomic.Int32
}

// NewBody returns a Body serving s.
func NewBody(s string) *Body {
	return &Body{r: bytes.NewReader([]byte(s))}
}

func (b *Body) Read(p []byte) (int, error) { return b.r.Read(p) }

func (b *Body) Close() error {
	b.closed.Add(1)
	return nil
}

// Closed returns how many times Close was called.
func (b *Body) Closed() int { return int(b.closed.Load()) }

// Response builds an HTTP response head with a tracked body.
func Response(status int, headers map[string]string, body string) (*entities.HTTPResponse, *Body) {
	b := NewBody(body)
	return &entities.HTTPResponse{Status: status, Headers: entities.HeadersFromSingle(headers), Body: b}, b
}

// MemFS is an in-memory ports.FileSystem.
type MemFS struct {
	files map[string][]byte
	mu    sync.Mutex
}

// NewMemFS returns a MemFS holding files.
func NewMemFS(files map[string]string) *MemFS {
	fs := &MemFS{files: make(map[string][]byte)}
	for name, content := range files {
		fs.files[name] = []byte(content)
	}
	return fs
}

// Open implements ports.FileSystem. Writes become visible on Close.
func (m *MemFS) Open(_ context.Context, path string, opts entities.OpenOptions) (ports.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[path]
	if !ok && !opts.Create {
		return nil, &fileNotFound{path: path}
	}
	if opts.Truncate {
		data = nil
	}
	f := &memFile{fs: m, path: path, write: opts.Writable()}
	f.buf.Write(data)
	return f, nil
}

// Contents returns the current contents of path.
func (m *MemFS) Contents(path string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[path]
	return string(data), ok
}

type fileNotFound struct{ path string }

func (e *fileNotFound) Error() string { return "open " + e.path + ": file does not exist" }

type memFile struct {
	fs    *MemFS
	path  string
	buf   bytes.Buffer
	write bool
}

func (f *memFile) Read(p []byte) (int, error) { return f.buf.Read(p) }

func (f *memFile) Write(p []byte) (int, error) {
	if !f.write {
		return 0, io.ErrClosedPipe
	}
	return f.buf.Write(p)
}

func (f *memFile) Close() error {
	if f.write {
		f.fs.mu.Lock()
		f.fs.files[f.path] = bytes.Clone(f.buf.Bytes())
		f.fs.mu.Unlock()
	}
	return nil
}

// AssertJSONEqual compares two JSON documents, ignoring formatting.
func AssertJSONEqual(t *testing.T, expected, actual string, msgAndArgs ...any) {
	t.Helper()

	var expectedJSON, actualJSON any
	require.NoError(t, json.Unmarshal([]byte(expected), &expectedJSON), "expected JSON is invalid")
	require.NoError(t, json.Unmarshal([]byte(actual), &actualJSON), "actual JSON is invalid")

	assert.Equal(t, expectedJSON, actualJSON, msgAndArgs...)
}

// Eventually waits for cond with the timing used across the test suite.
func Eventually(t *testing.T, cond func() bool, msgAndArgs ...any) {
	t.Helper()
	assert.Eventually(t, cond, 2*time.Second, 5*time.Millisecond, msgAndArgs...)
}
