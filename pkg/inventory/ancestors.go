package inventory

import (
	"context"

	"github.com/vmware/govmomi/property"
	"github.com/vmware/govmomi/vim25/mo"
	"github.com/vmware/govmomi/vim25/types"
)

// Unknown is reported for an ancestor that cannot be resolved.
const Unknown = "Unknown"

// Ancestors is the location of an inventory object.
type Ancestors struct {
	Datacenter    string
	ClusterOrHost string
}

// Entity is the subset of a managed entity needed for ancestor walks.
type Entity struct {
	Self   types.ManagedObjectReference
	Name   string
	Parent *types.ManagedObjectReference
	Host   *types.ManagedObjectReference // runtime.host; virtual machines only
}

// EntityReader reads one entity's name and links.
type EntityReader interface {
	ReadEntity(ctx context.Context, ref types.ManagedObjectReference) (*Entity, error)
}

// CollectorReader reads entities through a property collector.
type CollectorReader struct {
	pc *property.Collector
}

// NewCollectorReader returns an EntityReader backed by pc.
func NewCollectorReader(pc *property.Collector) *CollectorReader {
	return &CollectorReader{pc: pc}
}

// ReadEntity implements EntityReader.
func (c *CollectorReader) ReadEntity(ctx context.Context, ref types.ManagedObjectReference) (*Entity, error) {
	if KindOf(ref) == KindVirtualMachine {
		var vm mo.VirtualMachine
		if err := c.pc.RetrieveOne(ctx, ref, []string{"name", "parent", "runtime.host"}, &vm); err != nil {
			return nil, err
		}
		return &Entity{Self: ref, Name: vm.Name, Parent: vm.Parent, Host: vm.Runtime.Host}, nil
	}

	var me mo.ManagedEntity
	if err := c.pc.RetrieveOne(ctx, ref, []string{"name", "parent"}, &me); err != nil {
		return nil, err
	}
	return &Entity{Self: ref, Name: me.Name, Parent: me.Parent}, nil
}

// Ancestors resolves the datacenter and cluster (or standalone host) of ref.
// Anything that cannot be read is reported as Unknown. The datacenter walk
// stops after the configured hop limit or on a repeated reference.
func (r *Resolver) Ancestors(ctx context.Context, ref types.ManagedObjectReference) Ancestors {
	out := Ancestors{Datacenter: Unknown, ClusterOrHost: Unknown}

	self, err := r.reader.ReadEntity(ctx, ref)
	if err != nil {
		r.log.Debug("Cannot read entity for ancestor resolution", "ref", ref.Value, "error", err)
		return out
	}

	out.ClusterOrHost = r.clusterOrHost(ctx, self.Host)
	out.Datacenter = r.datacenter(ctx, self.Parent)
	return out
}

func (r *Resolver) clusterOrHost(ctx context.Context, hostRef *types.ManagedObjectReference) string {
	if hostRef == nil {
		return Unknown
	}

	host, err := r.reader.ReadEntity(ctx, *hostRef)
	if err != nil {
		r.log.Debug("Cannot read host", "ref", hostRef.Value, "error", err)
		return Unknown
	}

	if host.Parent != nil && KindOf(*host.Parent) == KindClusterComputeResource {
		cluster, err := r.reader.ReadEntity(ctx, *host.Parent)
		if err == nil {
			return cluster.Name
		}
		r.log.Debug("Cannot read cluster", "ref", host.Parent.Value, "error", err)
	}
	return host.Name
}

func (r *Resolver) datacenter(ctx context.Context, start *types.ManagedObjectReference) string {
	seen := make(map[types.ManagedObjectReference]struct{})
	cur := start

	for hops := 0; cur != nil && hops < r.maxHops; hops++ {
		if _, dup := seen[*cur]; dup {
			r.log.Warn("Cyclic parent chain", "ref", cur.Value)
			return Unknown
		}
		seen[*cur] = struct{}{}

		e, err := r.reader.ReadEntity(ctx, *cur)
		if err != nil {
			r.log.Debug("Cannot read parent", "ref", cur.Value, "error", err)
			return Unknown
		}
		if KindOf(*cur) == KindDatacenter {
			return e.Name
		}
		cur = e.Parent
	}

	if cur != nil {
		r.log.Warn("Parent chain exceeds hop limit", "limit", r.maxHops)
	}
	return Unknown
}
