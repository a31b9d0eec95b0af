package hostfuncs

import (
	"fmt"

	"github.com/superfaceai/one-sdk-sub004/domain/entities"
)

// PanicError is a panic recovered while serving a request.
type PanicError struct {
	Value any
	Kind  string
	Stack []byte
}

func (e *PanicError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("internal error: handler panicked: %v", e.Value)
	}
	return fmt.Sprintf("internal error: %s handler panicked: %v", e.Kind, e.Value)
}

// ToErrorDetail implements errors.DetailedError. The stack stays on the
// host; only the message crosses into the guest.
func (e *PanicError) ToErrorDetail() *entities.ErrorDetail {
	d := entities.NewErrorDetail("panic", e.Error()).WithCode(e.Kind)
	d.Stack = e.Stack
	return d
}
