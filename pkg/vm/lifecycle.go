// Package vm builds virtual machine create and clone specs and drives
// lifecycle tasks (create, clone, power, destroy) to completion.
package vm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/vim25/types"

	"github.com/Bibi40k/vsphere-mcp/configs"
	"github.com/Bibi40k/vsphere-mcp/pkg/task"
)

// TaskRunner submits a task and waits for its outcome.
type TaskRunner interface {
	Run(ctx context.Context, op string, submit func(context.Context) (*object.Task, error)) (*task.Result, error)
}

// Lifecycle handles VM creation, cloning, power and removal.
type Lifecycle struct {
	tasks TaskRunner
	log   *slog.Logger
}

// NewLifecycle creates a Lifecycle that waits on tasks through tasks.
func NewLifecycle(tasks TaskRunner, log *slog.Logger) *Lifecycle {
	if log == nil {
		log = slog.Default()
	}
	return &Lifecycle{tasks: tasks, log: log}
}

// Config holds VM hardware configuration.
type Config struct {
	Name         string                       // VM name
	CPUs         int32                        // Number of CPUs
	MemoryMB     int64                        // Memory in MB
	GuestID      string                       // Guest OS identifier (default from defaults.yaml)
	DiskSizeGB   int64                        // Thin OS disk size in GB (default from defaults.yaml)
	Datastore    string                       // Datastore name, used for the VM path
	DatastoreRef types.ManagedObjectReference // Datastore holding the disk
}

// Temporary keys tie the disk to the controller inside one config spec.
const (
	scsiControllerKey int32 = -101
	diskKey           int32 = -102
	nicKey            int32 = -103
)

// CreateSpec builds a VirtualMachineConfigSpec with a paravirtual SCSI
// controller, one thin disk and, when network is non-nil, one NIC.
// Standard and distributed port group backings are both supported.
func (l *Lifecycle) CreateSpec(ctx context.Context, cfg *Config, network object.NetworkReference) (*types.VirtualMachineConfigSpec, error) {
	guestID := cfg.GuestID
	if guestID == "" {
		guestID = configs.Defaults.VM.GuestID
	}
	diskGB := cfg.DiskSizeGB
	if diskGB == 0 {
		diskGB = configs.Defaults.VM.DiskSizeGB
	}

	spec := &types.VirtualMachineConfigSpec{
		Name:     cfg.Name,
		NumCPUs:  cfg.CPUs,
		MemoryMB: cfg.MemoryMB,
		GuestId:  guestID,
		Files: &types.VirtualMachineFileInfo{
			VmPathName: fmt.Sprintf("[%s]", cfg.Datastore),
		},
	}

	var devices object.VirtualDeviceList

	scsi, err := devices.CreateSCSIController(configs.Defaults.VM.SCSIType)
	if err != nil {
		return nil, fmt.Errorf("failed to create SCSI controller: %w", err)
	}
	ctrl := scsi.(types.BaseVirtualSCSIController).GetVirtualSCSIController()
	ctrl.Key = scsiControllerKey
	ctrl.BusNumber = 0
	ctrl.SharedBus = types.VirtualSCSISharingNoSharing
	devices = append(devices, scsi)

	// Leave the disk file name empty so vCenter generates one next to the VM.
	disk := devices.CreateDisk(scsi.(types.BaseVirtualController), cfg.DatastoreRef, "")
	disk.Key = diskKey
	disk.CapacityInKB = diskGB * 1024 * 1024
	if backing, ok := disk.Backing.(*types.VirtualDiskFlatVer2BackingInfo); ok {
		backing.ThinProvisioned = types.NewBool(true)
		backing.DiskMode = string(types.VirtualDiskModePersistent)
	}
	devices = append(devices, disk)

	if network != nil {
		nic, err := createNIC(ctx, devices, network)
		if err != nil {
			return nil, err
		}
		devices = append(devices, nic)
	}

	changes, err := devices.ConfigSpec(types.VirtualDeviceConfigSpecOperationAdd)
	if err != nil {
		return nil, fmt.Errorf("failed to build device changes: %w", err)
	}
	for _, change := range changes {
		dc := change.GetVirtualDeviceConfigSpec()
		if _, ok := dc.Device.(*types.VirtualDisk); ok {
			dc.FileOperation = types.VirtualDeviceConfigSpecFileOperationCreate
		}
	}
	spec.DeviceChange = changes

	return spec, nil
}

func createNIC(ctx context.Context, devices object.VirtualDeviceList, network object.NetworkReference) (types.BaseVirtualDevice, error) {
	backing, err := network.EthernetCardBackingInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get network backing info: %w", err)
	}

	nic, err := devices.CreateEthernetCard(configs.Defaults.VM.NICType, backing)
	if err != nil {
		return nil, fmt.Errorf("failed to create network adapter: %w", err)
	}

	dev := nic.GetVirtualDevice()
	dev.Key = nicKey
	dev.Connectable = &types.VirtualDeviceConnectInfo{
		StartConnected:    true,
		AllowGuestControl: true,
		Connected:         true,
	}
	return nic, nil
}

// Create creates a VM in folder on pool and returns it once the task succeeds.
func (l *Lifecycle) Create(ctx context.Context, folder *object.Folder, pool *object.ResourcePool, spec *types.VirtualMachineConfigSpec) (*object.VirtualMachine, error) {
	res, err := l.tasks.Run(ctx, "create VM "+spec.Name, func(ctx context.Context) (*object.Task, error) {
		return folder.CreateVM(ctx, *spec, pool, nil)
	})
	if err != nil {
		return nil, err
	}

	ref, ok := res.Value.(types.ManagedObjectReference)
	if !ok {
		return nil, fmt.Errorf("create VM %s: unexpected task result %T", spec.Name, res.Value)
	}
	l.log.Info("VM created", "vm", spec.Name, "ref", ref.Value)
	return object.NewVirtualMachine(folder.Client(), ref), nil
}

// CloneSpec places a clone on pool and datastore, powered off and not a template.
func (l *Lifecycle) CloneSpec(pool *object.ResourcePool, datastore types.ManagedObjectReference) *types.VirtualMachineCloneSpec {
	poolRef := pool.Reference()
	return &types.VirtualMachineCloneSpec{
		Location: types.VirtualMachineRelocateSpec{
			Pool:      &poolRef,
			Datastore: &datastore,
		},
		PowerOn:  false,
		Template: false,
	}
}

// Clone clones src into folder under name and returns the new VM.
func (l *Lifecycle) Clone(ctx context.Context, src *object.VirtualMachine, folder *object.Folder, name string, spec *types.VirtualMachineCloneSpec) (*object.VirtualMachine, error) {
	res, err := l.tasks.Run(ctx, "clone VM "+name, func(ctx context.Context) (*object.Task, error) {
		return src.Clone(ctx, folder, name, *spec)
	})
	if err != nil {
		return nil, err
	}

	ref, ok := res.Value.(types.ManagedObjectReference)
	if !ok {
		return nil, fmt.Errorf("clone VM %s: unexpected task result %T", name, res.Value)
	}
	l.log.Info("VM cloned", "vm", name, "ref", ref.Value)
	return object.NewVirtualMachine(folder.Client(), ref), nil
}

// PowerOn powers on the VM.
func (l *Lifecycle) PowerOn(ctx context.Context, vm *object.VirtualMachine) error {
	_, err := l.tasks.Run(ctx, "power on VM "+vm.Reference().Value, vm.PowerOn)
	return err
}

// PowerOff powers off the VM (hard power off, not a guest shutdown).
func (l *Lifecycle) PowerOff(ctx context.Context, vm *object.VirtualMachine) error {
	_, err := l.tasks.Run(ctx, "power off VM "+vm.Reference().Value, vm.PowerOff)
	return err
}

// Destroy removes the VM from inventory and deletes its files. The VM is not
// powered off first; the server rejects destroying a running VM.
func (l *Lifecycle) Destroy(ctx context.Context, vm *object.VirtualMachine) error {
	_, err := l.tasks.Run(ctx, "destroy VM "+vm.Reference().Value, vm.Destroy)
	return err
}
