// Package mocks provides testify-based mock implementations for testing
// without a real vCenter connection.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/vim25/types"

	vm "github.com/Bibi40k/vsphere-mcp/pkg/vm"
)

// LifecycleInterface is a mock for vm.LifecycleInterface.
type LifecycleInterface struct {
	mock.Mock
}

func (m *LifecycleInterface) CreateSpec(ctx context.Context, cfg *vm.Config, network object.NetworkReference) (*types.VirtualMachineConfigSpec, error) {
	args := m.Called(ctx, cfg, network)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.VirtualMachineConfigSpec), args.Error(1)
}

func (m *LifecycleInterface) Create(ctx context.Context, folder *object.Folder, pool *object.ResourcePool, spec *types.VirtualMachineConfigSpec) (*object.VirtualMachine, error) {
	args := m.Called(ctx, folder, pool, spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*object.VirtualMachine), args.Error(1)
}

func (m *LifecycleInterface) CloneSpec(pool *object.ResourcePool, datastore types.ManagedObjectReference) *types.VirtualMachineCloneSpec {
	args := m.Called(pool, datastore)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*types.VirtualMachineCloneSpec)
}

func (m *LifecycleInterface) Clone(ctx context.Context, src *object.VirtualMachine, folder *object.Folder, name string, spec *types.VirtualMachineCloneSpec) (*object.VirtualMachine, error) {
	args := m.Called(ctx, src, folder, name, spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*object.VirtualMachine), args.Error(1)
}

func (m *LifecycleInterface) PowerOn(ctx context.Context, v *object.VirtualMachine) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *LifecycleInterface) PowerOff(ctx context.Context, v *object.VirtualMachine) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *LifecycleInterface) Destroy(ctx context.Context, v *object.VirtualMachine) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

// compile-time interface compliance check
var _ vm.LifecycleInterface = (*LifecycleInterface)(nil)
