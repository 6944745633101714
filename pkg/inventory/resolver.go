package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vmware/govmomi/property"
	"github.com/vmware/govmomi/view"
	"github.com/vmware/govmomi/vim25"
	"github.com/vmware/govmomi/vim25/mo"
	"github.com/vmware/govmomi/vim25/types"

	"github.com/Bibi40k/vsphere-mcp/configs"
)

// Resolver finds inventory objects using server-side recursive container
// views rooted at a scope folder. Lookups return (nil, nil) when nothing
// matches; errors are reserved for transport and server failures.
//
// When several objects match, the first one in server-returned order wins.
// That order is not sorted and not guaranteed stable across calls.
type Resolver struct {
	client  *vim25.Client
	root    types.ManagedObjectReference
	reader  EntityReader
	maxHops int
	log     *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.log = l }
}

// WithRoot overrides the traversal scope (defaults to the root folder).
func WithRoot(ref types.ManagedObjectReference) Option {
	return func(r *Resolver) { r.root = ref }
}

// WithEntityReader overrides how parent links are read during ancestor walks.
func WithEntityReader(er EntityReader) Option {
	return func(r *Resolver) { r.reader = er }
}

// WithMaxParentHops caps the datacenter walk.
func WithMaxParentHops(n int) Option {
	return func(r *Resolver) { r.maxHops = n }
}

// NewResolver creates a Resolver scoped to the client's root folder.
func NewResolver(c *vim25.Client, opts ...Option) *Resolver {
	r := &Resolver{
		client:  c,
		root:    c.ServiceContent.RootFolder,
		maxHops: configs.Defaults.Inventory.MaxParentHops,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.reader == nil {
		r.reader = NewCollectorReader(property.DefaultCollector(c))
	}
	if r.maxHops <= 0 {
		r.maxHops = configs.Defaults.Inventory.MaxParentHops
	}
	return r
}

// retrieve lists every object of kind below the scope and loads props into dst.
// The container view is destroyed before returning, on success or failure.
func (r *Resolver) retrieve(ctx context.Context, kind Kind, props []string, dst any) error {
	if kind == KindUnknown {
		return errors.New("cannot list objects of unknown kind")
	}

	m := view.NewManager(r.client)
	v, err := m.CreateContainerView(ctx, r.root, []string{kind.String()}, true)
	if err != nil {
		return fmt.Errorf("failed to create container view for %s: %w", kind, err)
	}
	defer func() {
		// ctx may already be done here; the view must still be released.
		if err := v.Destroy(context.WithoutCancel(ctx)); err != nil {
			r.log.Warn("Failed to destroy container view", "kind", kind.String(), "error", err)
		}
	}()

	if err := v.Retrieve(ctx, []string{kind.String()}, props, dst); err != nil {
		return fmt.Errorf("failed to retrieve %s objects: %w", kind, err)
	}
	return nil
}

// FindByName returns the first object of kind whose name equals name exactly,
// or nil when there is none. KindNetwork also matches distributed port groups
// and opaque networks.
func (r *Resolver) FindByName(ctx context.Context, kind Kind, name string) (*Object, error) {
	var entities []mo.ManagedEntity
	if err := r.retrieve(ctx, kind, []string{"name"}, &entities); err != nil {
		return nil, err
	}

	for _, e := range entities {
		if e.Name == name {
			return &Object{Kind: KindOf(e.Self), Ref: e.Self, Name: e.Name}, nil
		}
	}
	return nil, nil
}

// ListNames returns the names of every object of kind, in server order.
func (r *Resolver) ListNames(ctx context.Context, kind Kind) ([]string, error) {
	var entities []mo.ManagedEntity
	if err := r.retrieve(ctx, kind, []string{"name"}, &entities); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entities))
	for _, e := range entities {
		names = append(names, e.Name)
	}
	return names, nil
}

// FindVM returns the first virtual machine, with props loaded, for which match
// returns true, or nil when none does.
func (r *Resolver) FindVM(ctx context.Context, props []string, match func(*mo.VirtualMachine) bool) (*mo.VirtualMachine, error) {
	var vms []mo.VirtualMachine
	if err := r.retrieve(ctx, KindVirtualMachine, props, &vms); err != nil {
		return nil, err
	}

	for i := range vms {
		if match(&vms[i]) {
			return &vms[i], nil
		}
	}
	return nil, nil
}

// FindVMByName returns the first virtual machine named name with props loaded.
func (r *Resolver) FindVMByName(ctx context.Context, name string, props ...string) (*mo.VirtualMachine, error) {
	return r.FindVM(ctx, withName(props), func(vm *mo.VirtualMachine) bool {
		return vm.Name == name
	})
}

// MACMatch is a virtual machine found by one of its NIC hardware addresses.
type MACMatch struct {
	VM        Object
	MAC       string // as reported by the server, not normalized
	Ancestors Ancestors
}

// FindVMByMAC returns the first virtual machine owning a NIC whose address
// normalizes to the same value as mac, with its ancestors resolved.
func (r *Resolver) FindVMByMAC(ctx context.Context, mac string) (*MACMatch, error) {
	target := NormalizeMAC(mac)
	if target == "" {
		return nil, nil
	}

	var found string
	vm, err := r.FindVM(ctx, []string{"name", "config.hardware.device"}, func(vm *mo.VirtualMachine) bool {
		if vm.Config == nil {
			return false
		}
		for _, dev := range vm.Config.Hardware.Device {
			nic, ok := dev.(types.BaseVirtualEthernetCard)
			if !ok {
				continue
			}
			addr := nic.GetVirtualEthernetCard().MacAddress
			if NormalizeMAC(addr) == target {
				found = addr
				return true
			}
		}
		return false
	})
	if err != nil || vm == nil {
		return nil, err
	}

	return &MACMatch{
		VM:        Object{Kind: KindVirtualMachine, Ref: vm.Self, Name: vm.Name},
		MAC:       found,
		Ancestors: r.Ancestors(ctx, vm.Self),
	}, nil
}

func withName(props []string) []string {
	for _, p := range props {
		if p == "name" {
			return props
		}
	}
	return append([]string{"name"}, props...)
}
