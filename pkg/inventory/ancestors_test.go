package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vmware/govmomi/vim25/types"
)

// fakeReader serves entities from a map and counts reads.
type fakeReader struct {
	entities map[string]*Entity
	reads    int
}

func ref(kind, id string) types.ManagedObjectReference {
	return types.ManagedObjectReference{Type: kind, Value: id}
}

func refPtr(kind, id string) *types.ManagedObjectReference {
	r := ref(kind, id)
	return &r
}

func (f *fakeReader) add(e *Entity) {
	if f.entities == nil {
		f.entities = make(map[string]*Entity)
	}
	f.entities[e.Self.Value] = e
}

func (f *fakeReader) ReadEntity(_ context.Context, r types.ManagedObjectReference) (*Entity, error) {
	f.reads++
	e, ok := f.entities[r.Value]
	if !ok {
		return nil, fmt.Errorf("no entity %s", r.Value)
	}
	return e, nil
}

func newTestResolver(fr *fakeReader, maxHops int) *Resolver {
	return &Resolver{
		reader:  fr,
		maxHops: maxHops,
		log:     slog.New(slog.DiscardHandler),
	}
}

func TestAncestors_ClusteredHost(t *testing.T) {
	fr := &fakeReader{}
	fr.add(&Entity{Self: ref("VirtualMachine", "vm-1"), Name: "web", Parent: refPtr("Folder", "f-2"), Host: refPtr("HostSystem", "h-1")})
	fr.add(&Entity{Self: ref("HostSystem", "h-1"), Name: "esx01", Parent: refPtr("ClusterComputeResource", "c-1")})
	fr.add(&Entity{Self: ref("ClusterComputeResource", "c-1"), Name: "Prod", Parent: refPtr("Folder", "hf")})
	fr.add(&Entity{Self: ref("Folder", "f-2"), Name: "Web", Parent: refPtr("Folder", "f-1")})
	fr.add(&Entity{Self: ref("Folder", "f-1"), Name: "vm", Parent: refPtr("Datacenter", "dc-1")})
	fr.add(&Entity{Self: ref("Datacenter", "dc-1"), Name: "DC-East", Parent: refPtr("Folder", "root")})

	got := newTestResolver(fr, 64).Ancestors(context.Background(), ref("VirtualMachine", "vm-1"))
	assert.Equal(t, Ancestors{Datacenter: "DC-East", ClusterOrHost: "Prod"}, got)
}

func TestAncestors_StandaloneHost(t *testing.T) {
	fr := &fakeReader{}
	fr.add(&Entity{Self: ref("VirtualMachine", "vm-1"), Name: "db", Parent: refPtr("Datacenter", "dc-1"), Host: refPtr("HostSystem", "h-1")})
	fr.add(&Entity{Self: ref("HostSystem", "h-1"), Name: "esx-standalone", Parent: refPtr("ComputeResource", "cr-1")})
	fr.add(&Entity{Self: ref("Datacenter", "dc-1"), Name: "DC1"})

	got := newTestResolver(fr, 64).Ancestors(context.Background(), ref("VirtualMachine", "vm-1"))
	assert.Equal(t, Ancestors{Datacenter: "DC1", ClusterOrHost: "esx-standalone"}, got)
}

func TestAncestors_NoHostAssignment(t *testing.T) {
	fr := &fakeReader{}
	fr.add(&Entity{Self: ref("VirtualMachine", "vm-1"), Name: "orphan", Parent: refPtr("Datacenter", "dc-1")})
	fr.add(&Entity{Self: ref("Datacenter", "dc-1"), Name: "DC1"})

	got := newTestResolver(fr, 64).Ancestors(context.Background(), ref("VirtualMachine", "vm-1"))
	assert.Equal(t, Ancestors{Datacenter: "DC1", ClusterOrHost: Unknown}, got)
}

func TestAncestors_NoParentChain(t *testing.T) {
	fr := &fakeReader{}
	fr.add(&Entity{Self: ref("VirtualMachine", "vm-1"), Name: "lonely"})

	got := newTestResolver(fr, 64).Ancestors(context.Background(), ref("VirtualMachine", "vm-1"))
	assert.Equal(t, Ancestors{Datacenter: Unknown, ClusterOrHost: Unknown}, got)
}

func TestAncestors_UnreadableObject(t *testing.T) {
	fr := &fakeReader{}

	got := newTestResolver(fr, 64).Ancestors(context.Background(), ref("VirtualMachine", "missing"))
	assert.Equal(t, Ancestors{Datacenter: Unknown, ClusterOrHost: Unknown}, got)
	assert.Equal(t, 1, fr.reads)
}

func TestAncestors_CyclicChainTerminates(t *testing.T) {
	fr := &fakeReader{}
	fr.add(&Entity{Self: ref("VirtualMachine", "vm-1"), Name: "loop", Parent: refPtr("Folder", "a")})
	fr.add(&Entity{Self: ref("Folder", "a"), Name: "a", Parent: refPtr("Folder", "b")})
	fr.add(&Entity{Self: ref("Folder", "b"), Name: "b", Parent: refPtr("Folder", "a")})

	got := newTestResolver(fr, 64).Ancestors(context.Background(), ref("VirtualMachine", "vm-1"))
	assert.Equal(t, Ancestors{Datacenter: Unknown, ClusterOrHost: Unknown}, got)
	assert.LessOrEqual(t, fr.reads, 64)
}

func TestAncestors_HopLimit(t *testing.T) {
	const depth = 100
	fr := &fakeReader{}
	fr.add(&Entity{Self: ref("VirtualMachine", "vm-1"), Name: "deep", Parent: refPtr("Folder", "f-0")})
	for i := 0; i < depth; i++ {
		fr.add(&Entity{
			Self:   ref("Folder", fmt.Sprintf("f-%d", i)),
			Name:   fmt.Sprintf("f-%d", i),
			Parent: refPtr("Folder", fmt.Sprintf("f-%d", i+1)),
		})
	}
	fr.add(&Entity{Self: ref("Folder", fmt.Sprintf("f-%d", depth)), Name: "last", Parent: refPtr("Datacenter", "dc-1")})
	fr.add(&Entity{Self: ref("Datacenter", "dc-1"), Name: "TooFar"})

	got := newTestResolver(fr, 64).Ancestors(context.Background(), ref("VirtualMachine", "vm-1"))
	assert.Equal(t, Unknown, got.Datacenter)
	// one read for the VM itself plus at most maxHops for the walk
	assert.LessOrEqual(t, fr.reads, 1+64)

	fr.reads = 0
	got = newTestResolver(fr, depth+5).Ancestors(context.Background(), ref("VirtualMachine", "vm-1"))
	assert.Equal(t, "TooFar", got.Datacenter)
}
