// Package bytebuf provides a growable byte buffer whose uninitialized tail
// can be filled in place by a reader and then committed.
package bytebuf

import (
	"errors"
	"fmt"
	"io"

	sdkerrors "github.com/superfaceai/one-sdk-sub004/domain/errors"
	"github.com/superfaceai/one-sdk-sub004/domain/ports"
)

// Encodings understood by Decode and EncodeString.
const (
	EncodingUTF8   = "utf8"
	EncodingBase64 = "base64"
)

const minRead = 512

// Buffer is a contiguous byte buffer. The committed prefix is Data(); the
// rest of the storage is the uninitialized tail. len <= cap always holds.
type Buffer struct {
	storage []byte
	length  int
}

// WithCapacity returns an empty buffer able to hold n bytes without growing.
func WithCapacity(n int) *Buffer {
	if n < 0 {
		n = 0
	}
	return &Buffer{storage: make([]byte, n)}
}

// FromBytes returns a buffer holding a copy of data with len == cap.
func FromBytes(data []byte) *Buffer {
	storage := make([]byte, len(data))
	copy(storage, data)
	return &Buffer{storage: storage, length: len(data)}
}

// Len returns the number of committed bytes.
func (b *Buffer) Len() int { return b.length }

// Cap returns the total storage size.
func (b *Buffer) Cap() int { return len(b.storage) }

// Data returns the committed bytes. The slice aliases the buffer and is
// invalidated by the next growth.
func (b *Buffer) Data() []byte { return b.storage[:b.length] }

// UninitializedTail returns the writable storage past Data().
func (b *Buffer) UninitializedTail() []byte { return b.storage[b.length:] }

// Reserve guarantees room for additional bytes. When growth is needed the
// new capacity is max(2*cap, len+additional) and Data() is preserved.
func (b *Buffer) Reserve(additional int) {
	if additional <= 0 || b.length+additional <= len(b.storage) {
		return
	}
	newCap := max(2*len(b.storage), b.length+additional)
	grown := make([]byte, newCap)
	copy(grown, b.storage[:b.length])
	b.storage = grown
}

// Extend appends data, growing as needed.
func (b *Buffer) Extend(data []byte) {
	b.Reserve(len(data))
	copy(b.storage[b.length:], data)
	b.length += len(data)
}

// Commit adopts n bytes already written into UninitializedTail.
func (b *Buffer) Commit(n int) error {
	if n < 0 || n > len(b.storage)-b.length {
		return fmt.Errorf("commit %d bytes: only %d bytes of tail available", n, len(b.storage)-b.length)
	}
	b.length += n
	return nil
}

// Reset discards the committed bytes and keeps the storage.
func (b *Buffer) Reset() { b.length = 0 }

// ReadFrom fills the buffer from r until EOF, reading directly into the
// tail. It implements io.ReaderFrom.
func (b *Buffer) ReadFrom(r io.Reader) (int64, error) {
	var total int64
	for {
		if len(b.storage)-b.length < minRead {
			b.Reserve(minRead)
		}
		n, err := r.Read(b.UninitializedTail())
		if n > 0 {
			b.length += n
			total += int64(n)
		}
		if errors.Is(err, io.EOF) {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// Write implements io.Writer.
func (b *Buffer) Write(p []byte) (int, error) {
	b.Extend(p)
	return len(p), nil
}

// Decode renders Data() as text in the given encoding. base64 yields the
// standard padded alphabet.
func (b *Buffer) Decode(encoding string, coder ports.TextCoder) (string, error) {
	switch normalizeEncoding(encoding) {
	case EncodingUTF8:
		return coder.DecodeUTF8(b.Data())
	case EncodingBase64:
		return coder.EncodeBase64(b.Data()), nil
	default:
		return "", &sdkerrors.EncodingError{Encoding: encoding}
	}
}

// EncodeString builds a buffer from text in the given encoding.
func EncodeString(s, encoding string, coder ports.TextCoder) (*Buffer, error) {
	switch normalizeEncoding(encoding) {
	case EncodingUTF8:
		return FromBytes(coder.EncodeUTF8(s)), nil
	case EncodingBase64:
		data, err := coder.DecodeBase64(s)
		if err != nil {
			return nil, &sdkerrors.EncodingError{Encoding: encoding, Err: err}
		}
		return FromBytes(data), nil
	default:
		return nil, &sdkerrors.EncodingError{Encoding: encoding}
	}
}

func normalizeEncoding(encoding string) string {
	switch encoding {
	case "utf8", "utf-8", "UTF-8", "UTF8":
		return EncodingUTF8
	case "base64":
		return EncodingBase64
	}
	return encoding
}

var _ io.ReaderFrom = (*Buffer)(nil)
