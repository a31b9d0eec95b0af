package policy_test

import (
	"testing"

	"github.com/superfaceai/one-sdk-sub004/domain/entities"
	"github.com/superfaceai/one-sdk-sub004/domain/policy"
)

func FuzzCheckNetwork(f *testing.F) {
	p := policy.NewPolicy(policy.WithDenialHandler(&policy.NopDenialHandler{}))
	grants := &entities.GrantSet{
		Network: &entities.NetworkCapability{
			Rules: []entities.NetworkRule{
				{Hosts: []string{"example.com", "*.internal"}, Ports: []string{"80", "1000-2000"}},
			},
		},
	}
	f.Add("example.com", 80)
	f.Add("api.internal", 1500)
	f.Add("evil.com", -1)

	f.Fuzz(func(t *testing.T, host string, port int) {
		p.CheckNetwork(entities.NetworkRequest{Host: host, Port: port}, grants)
	})
}

func FuzzCheckFileSystem(f *testing.F) {
	p := policy.NewPolicy(
		policy.WithDenialHandler(&policy.NopDenialHandler{}),
		policy.WithSymlinkResolution(false),
	)
	grants := &entities.GrantSet{
		FS: &entities.FileSystemCapability{
			Rules: []entities.FileSystemRule{{Read: []string{"/data/**"}}},
		},
	}
	f.Add("/data/file")
	f.Add("../../etc/passwd")
	f.Add("")

	f.Fuzz(func(t *testing.T, path string) {
		p.CheckFileSystem(entities.FileSystemRequest{Path: path, Operation: "read"}, grants)
	})
}
