package capabilities

import (
	"github.com/superfaceai/one-sdk-sub004/domain/ports"
	"github.com/superfaceai/one-sdk-sub004/textcoder"
)

// Default returns a full capability set backed by the real network,
// filesystem, and clock.
func Default(netOpts ...NetworkOption) ports.Capabilities {
	return ports.Capabilities{
		Network:    NewHTTPNetwork(netOpts...),
		FileSystem: NewOSFileSystem(),
		Timers:     NewTimers(),
		TextCoder:  textcoder.New(),
	}
}
