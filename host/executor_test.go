package host_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/superfaceai/one-sdk-sub004/domain/entities"
	sdkerrors "github.com/superfaceai/one-sdk-sub004/domain/errors"
	"github.com/superfaceai/one-sdk-sub004/domain/ports"
	"github.com/superfaceai/one-sdk-sub004/host"
	"github.com/superfaceai/one-sdk-sub004/hostfuncs"
	"github.com/superfaceai/one-sdk-sub004/internal/abi"
	"github.com/superfaceai/one-sdk-sub004/internal/testutil"
	"github.com/superfaceai/one-sdk-sub004/wireformat"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type mockNetwork struct {
	mock.Mock
}

func (m *mockNetwork) Fetch(ctx context.Context, req entities.HTTPRequest) (*entities.HTTPResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*entities.HTTPResponse)
	return resp, args.Error(1)
}

func newExecutor(t *testing.T, opts ...host.Option) *host.Executor {
	t.Helper()
	ctx := context.Background()
	e, err := host.NewExecutor(ctx, append([]host.Option{host.WithLogger(quiet), host.WithCapabilities(ports.Capabilities{})}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close(ctx) })
	return e
}

// exchange drives one request through the guest's run export.
func exchange(t *testing.T, inst *host.Instance, codec wireformat.Codec, req wireformat.Request) (wireformat.Response, error) {
	t.Helper()
	ctx := context.Background()
	payload, err := wireformat.EncodeRequest(codec, req)
	require.NoError(t, err)

	res, err := inst.Call(ctx, "allocate", uint64(len(payload)))
	require.NoError(t, err)
	ptr := uint32(res[0])
	require.True(t, inst.Memory().Write(ptr, payload))

	res, err = inst.Call(ctx, "run", abi.PackPtrLen(ptr, uint32(len(payload))))
	if err != nil {
		return wireformat.Response{}, err
	}
	rp, rl := abi.UnpackPtrLen(res[0])
	out, ok := inst.Memory().Read(rp, rl)
	require.True(t, ok)
	resp, err := wireformat.DecodeResponse(codec, out)
	require.NoError(t, err)
	return resp, nil
}

func TestNewExecutor(t *testing.T) {
	ctx := context.Background()
	e, err := host.NewExecutor(ctx, host.WithLogger(quiet))
	require.NoError(t, err)
	assert.Zero(t, e.Instances())
	assert.NoError(t, e.Close(ctx))
}

func TestInstance_ContextAndOutput(t *testing.T) {
	e := newExecutor(t)
	inst, err := e.Instantiate(context.Background(), testutil.ExchangeGuest("sf_host_unstable"),
		host.WithInstanceID("inst-1"), host.WithInput(map[string]any{"id": "5"}))
	require.NoError(t, err)
	assert.Equal(t, "inst-1", inst.ID())
	assert.Equal(t, 1, e.Instances())

	resp, err := exchange(t, inst, wireformat.JSON, &wireformat.TakeContext{})
	require.NoError(t, err)
	require.True(t, resp.IsOK(), resp.Error)
	assert.Equal(t, map[string]any{"id": "5"}, resp.Context)

	resp, err = exchange(t, inst, wireformat.JSON, &wireformat.SetOutputSuccess{Output: "done"})
	require.NoError(t, err)
	require.True(t, resp.IsOK(), resp.Error)

	out, ok := inst.Output()
	require.True(t, ok)
	assert.Equal(t, hostfuncs.Output{Value: "done"}, out)
}

func TestInstance_HTTPWithMockNetwork(t *testing.T) {
	network := &mockNetwork{}
	body := testutil.NewBody(`{"id":5}`)
	network.On("Fetch", mock.Anything, mock.MatchedBy(func(r entities.HTTPRequest) bool {
		return r.Method == "GET" && r.URL == "https://api.test/items/5"
	})).Return(&entities.HTTPResponse{
		Status:  200,
		Headers: entities.HeadersFromSingle(map[string]string{"Content-Type": "application/json"}),
		Body:    body,
	}, nil).Once()

	e := newExecutor(t,
		host.WithCapabilities(ports.Capabilities{Network: network}),
		host.WithConfig(entities.NewHostConfig(entities.WithBaseURL("https://api.test"))),
	)
	inst, err := e.Instantiate(context.Background(), testutil.ExchangeGuest("sf_host_unstable"))
	require.NoError(t, err)

	started, err := exchange(t, inst, wireformat.JSON, &wireformat.HTTPCall{URL: "/items/5"})
	require.NoError(t, err)
	require.True(t, started.IsOK(), started.Error)

	head, err := exchange(t, inst, wireformat.JSON, &wireformat.HTTPCallHead{Handle: started.Handle})
	require.NoError(t, err)
	require.True(t, head.IsOK(), head.Error)
	assert.Equal(t, 200, head.Status)

	chunk, err := exchange(t, inst, wireformat.JSON, &wireformat.StreamRead{Handle: head.BodyStream, MaxLen: 64})
	require.NoError(t, err)
	assert.Equal(t, `{"id":5}`, string(chunk.Data))

	// Closing the instance releases the unread body stream.
	require.NoError(t, inst.Close(context.Background()))
	assert.Equal(t, 1, body.Closed())
	assert.Zero(t, e.Instances())
	network.AssertExpectations(t)
}

func TestInstance_Abort(t *testing.T) {
	e := newExecutor(t)
	inst, err := e.Instantiate(context.Background(), testutil.ExchangeGuest("sf_host_unstable"), host.WithInstanceID("inst-1"))
	require.NoError(t, err)

	_, err = exchange(t, inst, wireformat.JSON, &wireformat.Abort{})
	var ae *sdkerrors.AbortError
	require.ErrorAs(t, err, &ae)
	assert.EqualError(t, err, "guest inst-1 aborted")
	assert.True(t, sdkerrors.IsFatal(err))
	assert.True(t, inst.Dispatcher().Aborted())
}

func TestInstance_Isolation(t *testing.T) {
	e := newExecutor(t)
	guest := testutil.ExchangeGuest("sf_host_unstable")
	a, err := e.Instantiate(context.Background(), guest, host.WithInput("a"))
	require.NoError(t, err)
	b, err := e.Instantiate(context.Background(), guest, host.WithInput("b"))
	require.NoError(t, err)
	assert.NotEqual(t, a.ID(), b.ID())

	ra, err := exchange(t, a, wireformat.JSON, &wireformat.TakeContext{})
	require.NoError(t, err)
	rb, err := exchange(t, b, wireformat.JSON, &wireformat.TakeContext{})
	require.NoError(t, err)
	assert.Equal(t, "a", ra.Context)
	assert.Equal(t, "b", rb.Context)

	_, err = e.Instantiate(context.Background(), guest, host.WithInstanceID(a.ID()))
	assert.ErrorContains(t, err, "already exists")
}

func TestInstance_Errors(t *testing.T) {
	e := newExecutor(t)
	_, err := e.Instantiate(context.Background(), []byte("not wasm"))
	assert.ErrorContains(t, err, "failed to compile module")

	inst, err := e.Instantiate(context.Background(), testutil.ExchangeGuest("sf_host_unstable"))
	require.NoError(t, err)
	_, err = inst.Call(context.Background(), "missing")
	assert.EqualError(t, err, `export "missing" not found`)
	assert.Error(t, inst.Run(context.Background(), ""))

	require.NoError(t, inst.Close(context.Background()))
	require.NoError(t, inst.Close(context.Background()))
}

func TestExecutor_CloseClosesInstances(t *testing.T) {
	ctx := context.Background()
	e, err := host.NewExecutor(ctx, host.WithLogger(quiet), host.WithCapabilities(ports.Capabilities{}))
	require.NoError(t, err)

	inst, err := e.Instantiate(ctx, testutil.ExchangeGuest("sf_host_unstable"))
	require.NoError(t, err)
	require.NoError(t, e.Close(ctx))
	assert.Zero(t, e.Instances())
	assert.Zero(t, inst.Dispatcher().Resources())
}
