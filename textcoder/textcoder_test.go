package textcoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdkerrors "github.com/superfaceai/one-sdk-sub004/domain/errors"
)

func TestCoder_DecodeUTF8(t *testing.T) {
	coder := New()

	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"plain", []byte("hello"), "hello"},
		{"multibyte", []byte("žluťoučký"), "žluťoučký"},
		{"bom stripped", []byte("\xef\xbb\xbfhi"), "hi"},
		{"invalid replaced", []byte("a\xffb"), "a�b"},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := coder.DecodeUTF8(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCoder_Fatal(t *testing.T) {
	coder := &Coder{Fatal: true}

	_, err := coder.DecodeUTF8([]byte("a\xffb"))
	var encErr *sdkerrors.EncodingError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, "utf8", encErr.Encoding)

	got, err := coder.DecodeUTF8([]byte("ok"))
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestCoder_Base64(t *testing.T) {
	coder := New()

	assert.Equal(t, "aGk=", coder.EncodeBase64([]byte("hi")))
	data, err := coder.DecodeBase64("aGk=")
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), data)

	_, err = coder.DecodeBase64("***")
	var encErr *sdkerrors.EncodingError
	assert.ErrorAs(t, err, &encErr)
}

func TestCoder_EncodeUTF8(t *testing.T) {
	assert.Equal(t, []byte("héllo"), New().EncodeUTF8("héllo"))
}
