package vcenter

import (
	"context"

	"github.com/vmware/govmomi/object"
)

// ClientInterface abstracts vCenter operations.
// The real implementation uses govmomi; tests inject a mock.
type ClientInterface interface {
	FindDatacenter(ctx context.Context, name string) (*object.Datacenter, error)
	FindDatastore(ctx context.Context, dc *object.Datacenter, name string) (*object.Datastore, error)
	FindNetwork(ctx context.Context, dc *object.Datacenter, name string) (object.NetworkReference, error)
	FindComputeResource(ctx context.Context, dc *object.Datacenter, name string) (*object.ComputeResource, error)
	ListDatastores(ctx context.Context, datacenter string) ([]DatastoreInfo, error)
	ListNetworks(ctx context.Context, datacenter string) ([]NetworkInfo, error)
	ResolvePlacement(ctx context.Context, cfg PlacementConfig) (*Placement, error)
	Disconnect(ctx context.Context) error
}

// compile-time interface compliance check
var _ ClientInterface = (*Client)(nil)
