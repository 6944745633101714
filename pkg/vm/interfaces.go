package vm

import (
	"context"

	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/vim25/types"
)

// compile-time interface compliance check
var _ LifecycleInterface = (*Lifecycle)(nil)

// LifecycleInterface abstracts VM lifecycle operations.
// The real implementation uses govmomi; tests inject a mock.
type LifecycleInterface interface {
	CreateSpec(ctx context.Context, cfg *Config, network object.NetworkReference) (*types.VirtualMachineConfigSpec, error)
	Create(ctx context.Context, folder *object.Folder, pool *object.ResourcePool, spec *types.VirtualMachineConfigSpec) (*object.VirtualMachine, error)
	CloneSpec(pool *object.ResourcePool, datastore types.ManagedObjectReference) *types.VirtualMachineCloneSpec
	Clone(ctx context.Context, src *object.VirtualMachine, folder *object.Folder, name string, spec *types.VirtualMachineCloneSpec) (*object.VirtualMachine, error)
	PowerOn(ctx context.Context, vm *object.VirtualMachine) error
	PowerOff(ctx context.Context, vm *object.VirtualMachine) error
	Destroy(ctx context.Context, vm *object.VirtualMachine) error
}
