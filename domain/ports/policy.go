package ports

import "github.com/superfaceai/one-sdk-sub004/domain/entities"

// Policy enforces capability grants against runtime requests.
type Policy interface {
	CheckNetwork(req entities.NetworkRequest, grants *entities.GrantSet) bool
	CheckFileSystem(req entities.FileSystemRequest, grants *entities.GrantSet) bool
}
