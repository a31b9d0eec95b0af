package hostfuncs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdkerrors "github.com/superfaceai/one-sdk-sub004/domain/errors"
	"github.com/superfaceai/one-sdk-sub004/wireformat"
)

func TestNewRegistry_Empty(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)
	assert.Empty(t, reg.Names())
	assert.False(t, reg.Has("anything"))
}

func TestNewRegistry_Rejects(t *testing.T) {
	noop := func(context.Context, []byte) ([]byte, error) { return nil, nil }

	tests := []struct {
		name string
		opts []RegistryOption
		want string
	}{
		{name: "empty name", opts: []RegistryOption{WithByteHandler("", noop)}, want: "cannot be empty"},
		{name: "duplicate", opts: []RegistryOption{WithByteHandler("x", noop), WithByteHandler("x", noop)}, want: "duplicate handler name"},
		{name: "built-in kind", opts: []RegistryOption{WithByteHandler("http-call", noop)}, want: "built-in kind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.opts...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestHandlerRegistry_Invoke(t *testing.T) {
	echo := func(_ context.Context, payload []byte) ([]byte, error) {
		return append([]byte("echo:"), payload...), nil
	}
	reg, err := NewRegistry(WithByteHandler("echo", echo), WithByteHandler("b", echo), WithByteHandler("a", echo))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "echo"}, reg.Names())

	resp, err := reg.Invoke(context.Background(), "echo", []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "echo:hello", string(resp))

	_, err = reg.Invoke(context.Background(), "missing", nil)
	var pe *sdkerrors.ProtocolError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "unknown kind: missing", err.Error())
}

func TestHandlerRegistry_InvokeSetsKind(t *testing.T) {
	var seen string
	reg, err := NewRegistry(WithByteHandler("probe", func(ctx context.Context, _ []byte) ([]byte, error) {
		seen = HostContextFrom(ctx, "").Kind()
		return nil, nil
	}))
	require.NoError(t, err)

	_, err = reg.Invoke(context.Background(), "probe", nil)
	require.NoError(t, err)
	assert.Equal(t, "probe", seen)
}

type greetRequest struct {
	Name string `json:"name"`
}

type greetResponse struct {
	Greeting string `json:"greeting"`
}

func TestWithHandler_Typed(t *testing.T) {
	reg, err := NewRegistry(WithHandler[greetRequest, greetResponse]("greet", func(_ context.Context, req greetRequest) (greetResponse, error) {
		if req.Name == "" {
			return greetResponse{}, errors.New("name is required")
		}
		return greetResponse{Greeting: "hello " + req.Name}, nil
	}))
	require.NoError(t, err)

	for _, codec := range []wireformat.Codec{wireformat.JSON, wireformat.CBOR} {
		t.Run(codec.Name(), func(t *testing.T) {
			ctx := WithCodec(context.Background(), codec)

			payload, err := codec.Marshal(map[string]any{"kind": "greet", "name": "ada"})
			require.NoError(t, err)
			out, err := reg.Invoke(ctx, "greet", payload)
			require.NoError(t, err)

			resp, err := wireformat.DecodeResponse(codec, out)
			require.NoError(t, err)
			require.True(t, resp.IsOK())
			var got greetResponse
			require.NoError(t, wireformat.Convert(codec, resp.Result, &got))
			assert.Equal(t, "hello ada", got.Greeting)

			payload, err = codec.Marshal(map[string]any{"kind": "greet"})
			require.NoError(t, err)
			out, err = reg.Invoke(ctx, "greet", payload)
			require.NoError(t, err)
			resp, err = wireformat.DecodeResponse(codec, out)
			require.NoError(t, err)
			assert.Equal(t, "name is required", resp.Error)
		})
	}
}

func TestWithHandler_MalformedRequest(t *testing.T) {
	reg, err := NewRegistry(WithHandler[greetRequest, greetResponse]("greet", func(_ context.Context, req greetRequest) (greetResponse, error) {
		return greetResponse{}, nil
	}))
	require.NoError(t, err)

	_, err = reg.Invoke(context.Background(), "greet", []byte(`{"name": 5}`))
	var pe *sdkerrors.ProtocolError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "greet", pe.Kind)
}
