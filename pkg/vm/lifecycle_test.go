package vm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/vim25/types"

	"github.com/Bibi40k/vsphere-mcp/configs"
)

var dsRef = types.ManagedObjectReference{Type: "Datastore", Value: "datastore-1"}

type fakeNetwork struct {
	ref     types.ManagedObjectReference
	backing types.BaseVirtualDeviceBackingInfo
	err     error
}

func (f fakeNetwork) Reference() types.ManagedObjectReference { return f.ref }
func (f fakeNetwork) GetInventoryPath() string                { return "/DC0/network/" + f.ref.Value }
func (f fakeNetwork) EthernetCardBackingInfo(context.Context) (types.BaseVirtualDeviceBackingInfo, error) {
	return f.backing, f.err
}

func devicesOf(t *testing.T, spec *types.VirtualMachineConfigSpec) []types.BaseVirtualDevice {
	t.Helper()
	var out []types.BaseVirtualDevice
	for _, c := range spec.DeviceChange {
		dc := c.GetVirtualDeviceConfigSpec()
		assert.Equal(t, types.VirtualDeviceConfigSpecOperationAdd, dc.Operation)
		out = append(out, dc.Device)
	}
	return out
}

func TestCreateSpec_Fields(t *testing.T) {
	l := NewLifecycle(nil, nil)

	spec, err := l.CreateSpec(context.Background(), &Config{
		Name:         "web-01",
		CPUs:         4,
		MemoryMB:     8192,
		GuestID:      "ubuntu64Guest",
		DiskSizeGB:   20,
		Datastore:    "SSD-Storage-01",
		DatastoreRef: dsRef,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "web-01", spec.Name)
	assert.Equal(t, int32(4), spec.NumCPUs)
	assert.Equal(t, int64(8192), spec.MemoryMB)
	assert.Equal(t, "ubuntu64Guest", spec.GuestId)
	require.NotNil(t, spec.Files)
	assert.Equal(t, "[SSD-Storage-01]", spec.Files.VmPathName)

	devs := devicesOf(t, spec)
	require.Len(t, devs, 2, "controller and disk only, no NIC without a network")

	scsi, ok := devs[0].(*types.ParaVirtualSCSIController)
	require.True(t, ok, "first device should be a paravirtual SCSI controller, got %T", devs[0])
	assert.Equal(t, int32(0), scsi.BusNumber)
	assert.Equal(t, types.VirtualSCSISharingNoSharing, scsi.SharedBus)

	disk, ok := devs[1].(*types.VirtualDisk)
	require.True(t, ok)
	assert.Equal(t, scsi.Key, disk.ControllerKey)
	assert.Equal(t, int64(20*1024*1024), disk.CapacityInKB)

	backing, ok := disk.Backing.(*types.VirtualDiskFlatVer2BackingInfo)
	require.True(t, ok)
	require.NotNil(t, backing.ThinProvisioned)
	assert.True(t, *backing.ThinProvisioned)
	assert.Equal(t, string(types.VirtualDiskModePersistent), backing.DiskMode)
	require.NotNil(t, backing.Datastore)
	assert.Equal(t, dsRef, *backing.Datastore)

	assert.Equal(t, types.VirtualDeviceConfigSpecFileOperationCreate,
		spec.DeviceChange[1].GetVirtualDeviceConfigSpec().FileOperation)
}

func TestCreateSpec_Defaults(t *testing.T) {
	l := NewLifecycle(nil, nil)

	spec, err := l.CreateSpec(context.Background(), &Config{Name: "vm", CPUs: 1, MemoryMB: 512, Datastore: "ds", DatastoreRef: dsRef}, nil)
	require.NoError(t, err)

	assert.Equal(t, configs.Defaults.VM.GuestID, spec.GuestId)
	disk := devicesOf(t, spec)[1].(*types.VirtualDisk)
	assert.Equal(t, configs.Defaults.VM.DiskSizeGB*1024*1024, disk.CapacityInKB)
}

func TestCreateSpec_NetworkBackings(t *testing.T) {
	tests := []struct {
		name    string
		network fakeNetwork
	}{
		{
			name: "standard port group",
			network: fakeNetwork{
				ref:     types.ManagedObjectReference{Type: "Network", Value: "network-1"},
				backing: &types.VirtualEthernetCardNetworkBackingInfo{VirtualDeviceDeviceBackingInfo: types.VirtualDeviceDeviceBackingInfo{DeviceName: "VM Network"}},
			},
		},
		{
			name: "distributed port group",
			network: fakeNetwork{
				ref: types.ManagedObjectReference{Type: "DistributedVirtualPortgroup", Value: "dvportgroup-1"},
				backing: &types.VirtualEthernetCardDistributedVirtualPortBackingInfo{
					Port: types.DistributedVirtualSwitchPortConnection{SwitchUuid: "50 2a", PortgroupKey: "dvportgroup-1"},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLifecycle(nil, nil)
			spec, err := l.CreateSpec(context.Background(), &Config{Name: "vm", CPUs: 1, MemoryMB: 512, Datastore: "ds", DatastoreRef: dsRef}, tt.network)
			require.NoError(t, err)

			devs := devicesOf(t, spec)
			require.Len(t, devs, 3)

			nic, ok := devs[2].(*types.VirtualVmxnet3)
			require.True(t, ok, "expected vmxnet3, got %T", devs[2])
			assert.Equal(t, tt.network.backing, nic.Backing)
			require.NotNil(t, nic.Connectable)
			assert.True(t, nic.Connectable.StartConnected)
		})
	}
}

func TestCreateSpec_NetworkBackingError(t *testing.T) {
	l := NewLifecycle(nil, nil)
	_, err := l.CreateSpec(context.Background(), &Config{Name: "vm", Datastore: "ds", DatastoreRef: dsRef},
		fakeNetwork{err: errors.New("backing info failed")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backing info failed")
}

func TestCloneSpec(t *testing.T) {
	l := NewLifecycle(nil, nil)
	pool := object.NewResourcePool(nil, types.ManagedObjectReference{Type: "ResourcePool", Value: "resgroup-9"})

	spec := l.CloneSpec(pool, dsRef)
	require.NotNil(t, spec.Location.Pool)
	assert.Equal(t, "resgroup-9", spec.Location.Pool.Value)
	require.NotNil(t, spec.Location.Datastore)
	assert.Equal(t, dsRef, *spec.Location.Datastore)
	assert.False(t, spec.PowerOn)
	assert.False(t, spec.Template)
}
