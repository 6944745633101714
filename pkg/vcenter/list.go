package vcenter

import (
	"context"
	"path"
	"strings"

	"github.com/vmware/govmomi/vim25/mo"
	"github.com/vmware/govmomi/vim25/types"
)

const bytesPerGB = 1024 * 1024 * 1024

// DatastoreInfo holds information about a vCenter datastore.
type DatastoreInfo struct {
	Ref         types.ManagedObjectReference `json:"-"`
	Name        string                       `json:"name"`
	CapacityGB  float64                      `json:"capacity_gb"`
	FreeSpaceGB float64                      `json:"free_space_gb"`
	FreeBytes   int64                        `json:"-"`
	Accessible  bool                         `json:"accessible"`
	Type        string                       `json:"type"` // "SSD" or "HDD" (inferred from name)
}

// NetworkInfo holds information about a vCenter network/port group.
type NetworkInfo struct {
	Name string `json:"name"`
	Type string `json:"type"` // Network, DistributedVirtualPortgroup or OpaqueNetwork
}

// ListDatastores returns all datastores in a datacenter. An empty name selects
// the first datacenter.
func (c *Client) ListDatastores(ctx context.Context, datacenter string) ([]DatastoreInfo, error) {
	dc, err := c.FindDatacenter(ctx, datacenter)
	if err != nil {
		return nil, err
	}

	dsList, err := c.finder(dc).DatastoreList(ctx, "*")
	if err != nil {
		return nil, err
	}

	var result []DatastoreInfo
	for _, ds := range dsList {
		var moDS mo.Datastore
		if err := ds.Properties(ctx, ds.Reference(), []string{"summary"}, &moDS); err != nil {
			c.log.Debug("Skipping datastore without summary", "datastore", ds.Name(), "error", err)
			continue
		}
		s := moDS.Summary
		result = append(result, DatastoreInfo{
			Ref:         ds.Reference(),
			Name:        s.Name,
			CapacityGB:  float64(s.Capacity) / bytesPerGB,
			FreeSpaceGB: float64(s.FreeSpace) / bytesPerGB,
			FreeBytes:   s.FreeSpace,
			Accessible:  s.Accessible,
			Type:        inferStorageType(s.Name),
		})
	}
	return result, nil
}

// ListNetworks returns all networks/port groups in a datacenter. An empty name
// selects the first datacenter.
func (c *Client) ListNetworks(ctx context.Context, datacenter string) ([]NetworkInfo, error) {
	dc, err := c.FindDatacenter(ctx, datacenter)
	if err != nil {
		return nil, err
	}

	nets, err := c.finder(dc).NetworkList(ctx, "*")
	if err != nil {
		return nil, err
	}

	var result []NetworkInfo
	for _, n := range nets {
		result = append(result, NetworkInfo{
			Name: path.Base(n.GetInventoryPath()),
			Type: n.Reference().Type,
		})
	}
	return result, nil
}

// mostFreeDatastore picks the accessible datastore with the most free space.
// The first one wins on a tie.
func mostFreeDatastore(list []DatastoreInfo) (DatastoreInfo, bool) {
	var best DatastoreInfo
	found := false
	for _, ds := range list {
		if !ds.Accessible {
			continue
		}
		if !found || ds.FreeBytes > best.FreeBytes {
			best = ds
			found = true
		}
	}
	return best, found
}

// inferStorageType infers SSD vs HDD from the datastore name.
func inferStorageType(name string) string {
	lower := strings.ToLower(name)
	if strings.Contains(lower, "ssd") || strings.Contains(lower, "nvme") {
		return "SSD"
	}
	return "HDD"
}
