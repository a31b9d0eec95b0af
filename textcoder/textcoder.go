// Package textcoder implements ports.TextCoder for UTF-8 and base64. It is
// shared by the host and guests, so it depends on nothing but x/text.
package textcoder

import (
	"encoding/base64"
	"errors"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	sdkerrors "github.com/superfaceai/one-sdk-sub004/domain/errors"
	"github.com/superfaceai/one-sdk-sub004/domain/ports"
)

// Coder decodes UTF-8 the way a lenient text decoder does: a leading
// BOM is dropped and invalid sequences become U+FFFD. With Fatal set,
// invalid input is an EncodingError instead.
type Coder struct {
	Fatal bool
}

var _ ports.TextCoder = (*Coder)(nil)

var errInvalidUTF8 = errors.New("invalid utf-8 sequence")

// New returns a lenient coder.
func New() *Coder {
	return &Coder{}
}

func (c *Coder) DecodeUTF8(data []byte) (string, error) {
	if c.Fatal && !utf8.Valid(data) {
		return "", &sdkerrors.EncodingError{Encoding: "utf8", Err: errInvalidUTF8}
	}
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return "", &sdkerrors.EncodingError{Encoding: "utf8", Err: err}
	}
	return string(out), nil
}

func (c *Coder) EncodeUTF8(s string) []byte {
	out, err := unicode.UTF8.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return []byte(s)
	}
	return out
}

func (c *Coder) EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

func (c *Coder) DecodeBase64(s string) ([]byte, error) {
	out, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, &sdkerrors.EncodingError{Encoding: "base64", Err: err}
	}
	return out, nil
}
