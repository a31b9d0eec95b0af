// Package guesttest runs guest code against an in-process host, without a
// WebAssembly runtime in between.
package guesttest

import (
	"context"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/superfaceai/one-sdk-sub004/domain/ports"
	"github.com/superfaceai/one-sdk-sub004/guest"
	"github.com/superfaceai/one-sdk-sub004/hostfuncs"
)

// Connect returns a client whose exchanges are served by a fresh
// dispatcher. The dispatcher is closed when the test ends. Logs are
// discarded unless opts set a logger.
func Connect(t testing.TB, caps ports.Capabilities, opts ...hostfuncs.DispatcherOption) (*guest.Client, *hostfuncs.Dispatcher) {
	t.Helper()
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	d, err := hostfuncs.NewDispatcher(context.Background(), caps, append([]hostfuncs.DispatcherOption{hostfuncs.WithLogger(quiet)}, opts...)...)
	if err != nil {
		t.Fatalf("failed to create dispatcher: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	client := guest.NewClient(guest.TransportFunc(func(req []byte) ([]byte, error) {
		return d.Exchange(context.Background(), req), nil
	}), guest.WithCodec(d.Codec()))
	return client, d
}

// TestCase defines one invocation of a handler.
type TestCase struct {
	Input    any
	Validate func(t *testing.T, out hostfuncs.Output)
	Name     string
	Caps     ports.Capabilities
	Options  []hostfuncs.DispatcherOption
	WantErr  bool
}

// RunHandlerTests invokes fn through guest.Handle once per test case, with
// the case's Input as the invocation context.
func RunHandlerTests[In, Out any](t *testing.T, fn func(In) (Out, error), tests []TestCase) {
	t.Helper()

	for _, tc := range tests {
		t.Run(tc.Name, func(t *testing.T) {
			opts := append([]hostfuncs.DispatcherOption{hostfuncs.WithContextValue(tc.Input)}, tc.Options...)
			client, d := Connect(t, tc.Caps, opts...)

			err := guest.Handle(client, fn)
			if tc.WantErr {
				if err == nil {
					t.Fatalf("expected an error from the handler")
				}
			} else if err != nil {
				t.Fatalf("handler failed: %v", err)
			}

			out, ok := d.Output()
			if !ok && !tc.WantErr {
				t.Fatalf("handler did not set an output")
			}
			if tc.Validate != nil {
				tc.Validate(t, out)
			}
		})
	}
}

// AssertSuccess asserts the output was set with set-output-success.
func AssertSuccess(t *testing.T, out hostfuncs.Output) {
	t.Helper()
	if out.Failure {
		t.Errorf("expected success, got failure: %v", out.Value)
	}
}

// AssertFailure asserts the output was set with set-output-failure.
func AssertFailure(t *testing.T, out hostfuncs.Output) {
	t.Helper()
	if !out.Failure {
		t.Errorf("expected failure, got success: %v", out.Value)
	}
}

// AssertField asserts a field of an object output matches expected.
// Numbers compare by value, since decoded outputs hold float64.
func AssertField(t *testing.T, out hostfuncs.Output, key string, expected any) {
	t.Helper()
	obj, ok := out.Value.(map[string]any)
	if !ok {
		t.Errorf("output is %T, not an object", out.Value)
		return
	}
	val, ok := obj[key]
	if !ok {
		t.Errorf("missing output field %q", key)
		return
	}

	if expectedNum, ok := toFloat64(expected); ok {
		if actualNum, ok := toFloat64(val); ok {
			if expectedNum != actualNum {
				t.Errorf("field %q: expected %v, got %v", key, expected, val)
			}
			return
		}
	}
	if !reflect.DeepEqual(val, expected) {
		t.Errorf("field %q: expected %v, got %v", key, expected, val)
	}
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
