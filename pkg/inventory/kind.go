// Package inventory locates objects in the vCenter inventory tree by name or
// fingerprint and resolves their datacenter and cluster/host ancestors.
package inventory

import (
	"github.com/vmware/govmomi/vim25/types"
)

// Kind is the closed set of inventory types the resolver understands.
type Kind int

const (
	KindUnknown Kind = iota
	KindFolder
	KindDatacenter
	KindClusterComputeResource
	KindComputeResource
	KindHostSystem
	KindResourcePool
	KindDatastore
	KindNetwork
	KindDistributedVirtualPortgroup
	KindVirtualMachine
	KindVirtualApp
)

var kindNames = [...]string{
	KindUnknown:                     "Unknown",
	KindFolder:                      "Folder",
	KindDatacenter:                  "Datacenter",
	KindClusterComputeResource:      "ClusterComputeResource",
	KindComputeResource:             "ComputeResource",
	KindHostSystem:                  "HostSystem",
	KindResourcePool:                "ResourcePool",
	KindDatastore:                   "Datastore",
	KindNetwork:                     "Network",
	KindDistributedVirtualPortgroup: "DistributedVirtualPortgroup",
	KindVirtualMachine:              "VirtualMachine",
	KindVirtualApp:                  "VirtualApp",
}

// String returns the vSphere managed object type name.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return kindNames[KindUnknown]
	}
	return kindNames[k]
}

// KindOf derives the Kind from a reference's type string.
func KindOf(ref types.ManagedObjectReference) Kind {
	switch ref.Type {
	case "Folder":
		return KindFolder
	case "Datacenter":
		return KindDatacenter
	case "ClusterComputeResource":
		return KindClusterComputeResource
	case "ComputeResource":
		return KindComputeResource
	case "HostSystem":
		return KindHostSystem
	case "ResourcePool":
		return KindResourcePool
	case "Datastore":
		return KindDatastore
	case "Network", "OpaqueNetwork":
		return KindNetwork
	case "DistributedVirtualPortgroup":
		return KindDistributedVirtualPortgroup
	case "VirtualMachine":
		return KindVirtualMachine
	case "VirtualApp":
		return KindVirtualApp
	default:
		return KindUnknown
	}
}

// IsCompute reports whether k is a cluster or standalone compute resource.
func (k Kind) IsCompute() bool {
	switch k {
	case KindClusterComputeResource, KindComputeResource:
		return true
	}
	return false
}

// IsNetwork reports whether k can back a virtual NIC.
func (k Kind) IsNetwork() bool {
	switch k {
	case KindNetwork, KindDistributedVirtualPortgroup:
		return true
	}
	return false
}

// Object is a resolved inventory node.
type Object struct {
	Kind Kind
	Ref  types.ManagedObjectReference
	Name string
}
