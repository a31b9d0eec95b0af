//go:build !wasip1

package guest

import "errors"

var errNoHost = errors.New("no host: the host transport is only available in wasip1 builds")

type hostTransport struct{}

func (hostTransport) Exchange([]byte) ([]byte, error) {
	return nil, errNoHost
}
