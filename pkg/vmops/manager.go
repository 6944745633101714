// Package vmops composes inventory resolution, VM lifecycle tasks and stats
// into the operations exposed as tools.
package vmops

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/vim25"
	"github.com/vmware/govmomi/vim25/mo"
	"github.com/vmware/govmomi/vim25/types"

	"github.com/Bibi40k/vsphere-mcp/pkg/inventory"
	"github.com/Bibi40k/vsphere-mcp/pkg/stats"
	"github.com/Bibi40k/vsphere-mcp/pkg/task"
	"github.com/Bibi40k/vsphere-mcp/pkg/vcenter"
	"github.com/Bibi40k/vsphere-mcp/pkg/vm"
)

// Resolver is the subset of *inventory.Resolver the Manager uses.
type Resolver interface {
	FindByName(ctx context.Context, kind inventory.Kind, name string) (*inventory.Object, error)
	FindVMByName(ctx context.Context, name string, props ...string) (*mo.VirtualMachine, error)
	FindVMByMAC(ctx context.Context, mac string) (*inventory.MACMatch, error)
	ListNames(ctx context.Context, kind inventory.Kind) ([]string, error)
}

var _ Resolver = (*inventory.Resolver)(nil)

// Deps are the collaborators of a Manager.
type Deps struct {
	Vim25     *vim25.Client // used only to build object handles; may be nil in tests
	VCenter   vcenter.ClientInterface
	Placement *vcenter.Placement
	Resolver  Resolver
	// Placed resolves datastores and networks inside the placement
	// datacenter. Resolver is used when nil.
	Placed    Resolver
	Lifecycle vm.LifecycleInterface
	Sampler   stats.NetworkSampler
	Logger    *slog.Logger
}

// Manager implements the VM operations. It is safe for concurrent use; it
// does not serialize operations on the same VM.
type Manager struct {
	vim       *vim25.Client
	vc        vcenter.ClientInterface
	placement *vcenter.Placement
	resolver  Resolver
	placed    Resolver
	life      vm.LifecycleInterface
	sampler   stats.NetworkSampler
	log       *slog.Logger
}

// New creates a Manager from explicit dependencies.
func New(d Deps) *Manager {
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}
	placed := d.Placed
	if placed == nil {
		placed = d.Resolver
	}
	return &Manager{
		vim:       d.Vim25,
		vc:        d.VCenter,
		placement: d.Placement,
		resolver:  d.Resolver,
		placed:    placed,
		life:      d.Lifecycle,
		sampler:   d.Sampler,
		log:       log,
	}
}

// NewFromClient wires a Manager with the production resolver, lifecycle and
// performance sampler for an established session.
func NewFromClient(c *vcenter.Client, p *vcenter.Placement, driver *task.Driver, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return New(Deps{
		Vim25:     c.Vim25(),
		VCenter:   c,
		Placement: p,
		Resolver:  inventory.NewResolver(c.Vim25(), inventory.WithRoot(c.RootFolder()), inventory.WithLogger(log)),
		Placed:    inventory.NewResolver(c.Vim25(), inventory.WithRoot(p.Datacenter.Reference()), inventory.WithLogger(log)),
		Lifecycle: vm.NewLifecycle(driver, log),
		Sampler:   stats.NewPerfSampler(c.Vim25()),
		Logger:    log,
	})
}

// CreateRequest describes a new VM. Empty Datastore and Network select the
// placement defaults.
type CreateRequest struct {
	Name      string `json:"name" validate:"required"`
	CPU       int32  `json:"cpu" validate:"min=1"`
	MemoryMB  int64  `json:"memory" validate:"min=4"`
	Datastore string `json:"datastore,omitempty"`
	Network   string `json:"network,omitempty"`
}

type nameRequest struct {
	Name string `json:"name" validate:"required"`
}

type cloneRequest struct {
	Template string `json:"template_name" validate:"required"`
	NewName  string `json:"new_name" validate:"required"`
}

type macRequest struct {
	MAC string `json:"mac_address" validate:"required"`
}

// VMStats is the result of GetVMStats. Network fields are nil when the
// performance manager could not be queried.
type VMStats struct {
	CPUMHz    int32   `json:"cpu_mhz"`
	MemoryMB  int32   `json:"memory_mb"`
	StorageGB float64 `json:"storage_gb"`
	NetTxKBps *int64  `json:"net_tx_kbps"`
	NetRxKBps *int64  `json:"net_rx_kbps"`
}

// ListVMs returns the names of all virtual machines in server order.
func (m *Manager) ListVMs(ctx context.Context) ([]string, error) {
	names, err := m.resolver.ListNames(ctx, inventory.KindVirtualMachine)
	if err != nil {
		return nil, fmt.Errorf("failed to list VMs: %w", err)
	}
	return names, nil
}

// FindVMByMAC returns a formatted description of the VM owning mac, or a
// not-found message. Not finding a VM is not an error.
func (m *Manager) FindVMByMAC(ctx context.Context, mac string) (string, error) {
	if err := validateStruct(macRequest{MAC: mac}); err != nil {
		return "", err
	}

	match, err := m.resolver.FindVMByMAC(ctx, mac)
	if err != nil {
		return "", fmt.Errorf("failed to search VMs by MAC address: %w", err)
	}
	if match == nil {
		return fmt.Sprintf("No VM found with MAC address %s", mac), nil
	}

	return fmt.Sprintf("Found VM: %s\nDatacenter: %s\nCluster/Host: %s\nMAC Address: %s",
		match.VM.Name, match.Ancestors.Datacenter, match.Ancestors.ClusterOrHost, match.MAC), nil
}

// CreateVM creates a VM on the placement folder and pool. Named datastores and
// networks are looked up in the placement datacenter only. An unknown datastore
// or network fails with *NotFoundError before any task is submitted.
func (m *Manager) CreateVM(ctx context.Context, req CreateRequest) (string, error) {
	if err := validateStruct(req); err != nil {
		return "", err
	}

	dsName := m.placement.Datastore.Name()
	dsRef := m.placement.Datastore.Reference()
	if req.Datastore != "" {
		obj, err := m.placed.FindByName(ctx, inventory.KindDatastore, req.Datastore)
		if err != nil {
			return "", fmt.Errorf("failed to look up datastore: %w", err)
		}
		if obj == nil {
			return "", &NotFoundError{Kind: "datastore", Name: req.Datastore}
		}
		dsName, dsRef = obj.Name, obj.Ref
	}

	network := m.placement.Network
	if req.Network != "" {
		obj, err := m.placed.FindByName(ctx, inventory.KindNetwork, req.Network)
		if err != nil {
			return "", fmt.Errorf("failed to look up network: %w", err)
		}
		if obj == nil {
			return "", &NotFoundError{Kind: "network", Name: req.Network}
		}
		ref, ok := object.NewReference(m.vim, obj.Ref).(object.NetworkReference)
		if !ok {
			return "", fmt.Errorf("object %q of type %s cannot back a network adapter", obj.Name, obj.Ref.Type)
		}
		network = ref
	}

	spec, err := m.life.CreateSpec(ctx, &vm.Config{
		Name:         req.Name,
		CPUs:         req.CPU,
		MemoryMB:     req.MemoryMB,
		Datastore:    dsName,
		DatastoreRef: dsRef,
	}, network)
	if err != nil {
		return "", err
	}

	if _, err := m.life.Create(ctx, m.placement.Folder, m.placement.Pool, spec); err != nil {
		m.log.Error("Failed to create VM", "vm", req.Name, "error", err)
		return "", err
	}

	m.log.Info("Created VM", "vm", req.Name, "datastore", dsName)
	return fmt.Sprintf("VM '%s' created.", req.Name), nil
}

// CloneVM clones template into the template's folder and resource pool,
// falling back to the placement ones, on the placement datastore. The clone
// is left powered off.
func (m *Manager) CloneVM(ctx context.Context, template, newName string) (string, error) {
	if err := validateStruct(cloneRequest{Template: template, NewName: newName}); err != nil {
		return "", err
	}

	src, err := m.resolver.FindVMByName(ctx, template, "parent", "resourcePool")
	if err != nil {
		return "", fmt.Errorf("failed to look up template: %w", err)
	}
	if src == nil {
		return "", &NotFoundError{Kind: "template", Name: template}
	}

	folder := m.placement.Folder
	if src.Parent != nil && inventory.KindOf(*src.Parent) == inventory.KindFolder {
		folder = object.NewFolder(m.vim, *src.Parent)
	}
	pool := m.placement.Pool
	if src.ResourcePool != nil {
		pool = object.NewResourcePool(m.vim, *src.ResourcePool)
	}

	spec := m.life.CloneSpec(pool, m.placement.Datastore.Reference())
	if _, err := m.life.Clone(ctx, object.NewVirtualMachine(m.vim, src.Self), folder, newName, spec); err != nil {
		m.log.Error("Failed to clone VM", "template", template, "vm", newName, "error", err)
		return "", err
	}

	m.log.Info("Cloned VM", "template", template, "vm", newName)
	return fmt.Sprintf("VM '%s' cloned from '%s'.", newName, template), nil
}

// DeleteVM destroys the VM. A powered-on VM is not powered off first.
func (m *Manager) DeleteVM(ctx context.Context, name string) (string, error) {
	v, err := m.findVM(ctx, name)
	if err != nil {
		return "", err
	}

	if err := m.life.Destroy(ctx, object.NewVirtualMachine(m.vim, v.Self)); err != nil {
		m.log.Error("Failed to delete VM", "vm", name, "error", err)
		return "", err
	}

	m.log.Info("Deleted VM", "vm", name)
	return fmt.Sprintf("VM '%s' deleted.", name), nil
}

// PowerOn powers on the VM unless it already is.
func (m *Manager) PowerOn(ctx context.Context, name string) (string, error) {
	return m.setPower(ctx, name, types.VirtualMachinePowerStatePoweredOn)
}

// PowerOff powers off the VM unless it already is.
func (m *Manager) PowerOff(ctx context.Context, name string) (string, error) {
	return m.setPower(ctx, name, types.VirtualMachinePowerStatePoweredOff)
}

// setPower is check-then-act; a concurrent external power change can race it.
func (m *Manager) setPower(ctx context.Context, name string, want types.VirtualMachinePowerState) (string, error) {
	label := "powered on"
	if want == types.VirtualMachinePowerStatePoweredOff {
		label = "powered off"
	}

	v, err := m.findVM(ctx, name, "runtime.powerState")
	if err != nil {
		return "", err
	}
	if v.Runtime.PowerState == want {
		return fmt.Sprintf("VM '%s' is already %s.", name, label), nil
	}

	obj := object.NewVirtualMachine(m.vim, v.Self)
	if want == types.VirtualMachinePowerStatePoweredOn {
		err = m.life.PowerOn(ctx, obj)
	} else {
		err = m.life.PowerOff(ctx, obj)
	}
	if err != nil {
		m.log.Error("Failed to change power state", "vm", name, "want", string(want), "error", err)
		return "", err
	}

	m.log.Info("Changed power state", "vm", name, "state", string(want))
	return fmt.Sprintf("VM '%s' %s.", name, label), nil
}

// GetVMStats returns quick stats and, best effort, network throughput.
func (m *Manager) GetVMStats(ctx context.Context, name string) (*VMStats, error) {
	v, err := m.findVM(ctx, name, stats.SummaryProperties...)
	if err != nil {
		return nil, err
	}

	qs := stats.FromSummary(v)
	out := &VMStats{
		CPUMHz:    qs.CPUMHz,
		MemoryMB:  qs.MemoryMB,
		StorageGB: qs.StorageGB,
	}

	rates, err := m.sampler.SampleNetwork(ctx, v.Self)
	if err != nil {
		m.log.Warn("Failed to retrieve network performance data", "vm", name, "error", err)
		return out, nil
	}
	out.NetTxKBps = &rates.TxKBps
	out.NetRxKBps = &rates.RxKBps
	return out, nil
}

// ListDatastores lists the datastores of the placement datacenter.
func (m *Manager) ListDatastores(ctx context.Context) ([]vcenter.DatastoreInfo, error) {
	return m.vc.ListDatastores(ctx, m.placement.Datacenter.Name())
}

// ListNetworks lists the networks of the placement datacenter.
func (m *Manager) ListNetworks(ctx context.Context) ([]vcenter.NetworkInfo, error) {
	return m.vc.ListNetworks(ctx, m.placement.Datacenter.Name())
}

func (m *Manager) findVM(ctx context.Context, name string, props ...string) (*mo.VirtualMachine, error) {
	if err := validateStruct(nameRequest{Name: name}); err != nil {
		return nil, err
	}

	v, err := m.resolver.FindVMByName(ctx, name, props...)
	if err != nil {
		return nil, fmt.Errorf("failed to look up VM: %w", err)
	}
	if v == nil {
		return nil, &NotFoundError{Kind: "virtual machine", Name: name}
	}
	return v, nil
}
