package guest

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/superfaceai/one-sdk-sub004/domain/entities"
	sdkerrors "github.com/superfaceai/one-sdk-sub004/domain/errors"
)

// Handle runs one invocation: it takes the context into an In, calls fn,
// and records the result with set-output-success. An error from fn is
// recorded with set-output-failure as an ErrorDetail, unless it is fatal,
// in which case no output is set and the error is returned. A panic in fn
// is recorded as a failure of type "panic" and returned as an error.
func Handle[In, Out any](c *Client, fn func(In) (Out, error)) (err error) {
	var input In
	if err := c.TakeContext(&input); err != nil {
		return err
	}

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		detail := &entities.ErrorDetail{
			Message: fmt.Sprintf("guest panic: %v", r),
			Type:    "panic",
			Stack:   debug.Stack(),
		}
		slog.Error("guest: handler panic recovered", "error", detail.Message)
		if setErr := c.SetOutputFailure(detail); setErr != nil {
			err = setErr
			return
		}
		err = detail
	}()

	out, fnErr := fn(input)
	if fnErr != nil {
		if sdkerrors.IsFatal(fnErr) {
			return fnErr
		}
		return c.SetOutputFailure(sdkerrors.ToErrorDetail(fnErr))
	}
	return c.SetOutputSuccess(out)
}

// Main runs fn with the default client, for use from a guest's main.
func Main[In, Out any](fn func(In) (Out, error)) error {
	return Handle(Default(), fn)
}
