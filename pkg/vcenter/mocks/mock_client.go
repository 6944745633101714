// Package mocks provides testify-based mock implementations for testing
// without a real vCenter connection.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vmware/govmomi/object"

	"github.com/Bibi40k/vsphere-mcp/pkg/vcenter"
)

// ClientInterface is a mock for vcenter.ClientInterface.
type ClientInterface struct {
	mock.Mock
}

func (m *ClientInterface) FindDatacenter(ctx context.Context, name string) (*object.Datacenter, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*object.Datacenter), args.Error(1)
}

func (m *ClientInterface) FindDatastore(ctx context.Context, dc *object.Datacenter, name string) (*object.Datastore, error) {
	args := m.Called(ctx, dc, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*object.Datastore), args.Error(1)
}

func (m *ClientInterface) FindNetwork(ctx context.Context, dc *object.Datacenter, name string) (object.NetworkReference, error) {
	args := m.Called(ctx, dc, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(object.NetworkReference), args.Error(1)
}

func (m *ClientInterface) FindComputeResource(ctx context.Context, dc *object.Datacenter, name string) (*object.ComputeResource, error) {
	args := m.Called(ctx, dc, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*object.ComputeResource), args.Error(1)
}

func (m *ClientInterface) ListDatastores(ctx context.Context, datacenter string) ([]vcenter.DatastoreInfo, error) {
	args := m.Called(ctx, datacenter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]vcenter.DatastoreInfo), args.Error(1)
}

func (m *ClientInterface) ListNetworks(ctx context.Context, datacenter string) ([]vcenter.NetworkInfo, error) {
	args := m.Called(ctx, datacenter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]vcenter.NetworkInfo), args.Error(1)
}

func (m *ClientInterface) ResolvePlacement(ctx context.Context, cfg vcenter.PlacementConfig) (*vcenter.Placement, error) {
	args := m.Called(ctx, cfg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vcenter.Placement), args.Error(1)
}

func (m *ClientInterface) Disconnect(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// compile-time interface compliance check
var _ vcenter.ClientInterface = (*ClientInterface)(nil)
