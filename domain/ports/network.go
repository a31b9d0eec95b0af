package ports

import (
	"context"

	"github.com/superfaceai/one-sdk-sub004/domain/entities"
)

// Network performs outgoing HTTP requests for the guest.
type Network interface {
	// Fetch sends req and returns once the response head is available. The
	// body is streamed: the caller owns resp.Body and must close it.
	Fetch(ctx context.Context, req entities.HTTPRequest) (*entities.HTTPResponse, error)
}
