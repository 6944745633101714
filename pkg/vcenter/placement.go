package vcenter

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/vmware/govmomi/object"
)

// PlacementConfig names the inventory objects new VMs land on. Empty fields
// select a default.
type PlacementConfig struct {
	Datacenter string
	Cluster    string
	Datastore  string
	Network    string
}

// Placement is the resolved process-wide default location for new VMs.
type Placement struct {
	Datacenter *object.Datacenter
	Folder     *object.Folder // the datacenter's vm folder
	Pool       *object.ResourcePool
	Datastore  *object.Datastore
	Network    object.NetworkReference // nil: VMs are created without a NIC
}

// ResolvePlacement resolves the datacenter, compute resource pool, datastore,
// network and VM folder once at startup.
func (c *Client) ResolvePlacement(ctx context.Context, cfg PlacementConfig) (*Placement, error) {
	dc, err := c.FindDatacenter(ctx, cfg.Datacenter)
	if err != nil {
		return nil, err
	}

	folders, err := dc.Folders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read folders of datacenter %q: %w", dc.Name(), err)
	}

	cr, err := c.FindComputeResource(ctx, dc, cfg.Cluster)
	if err != nil {
		return nil, err
	}
	pool, err := cr.ResourcePool(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get resource pool of %q: %w", cr.Name(), err)
	}

	p := &Placement{
		Datacenter: dc,
		Folder:     folders.VmFolder,
		Pool:       pool,
	}

	if cfg.Datastore != "" {
		p.Datastore, err = c.FindDatastore(ctx, dc, cfg.Datastore)
		if err != nil {
			return nil, err
		}
	} else {
		list, err := c.ListDatastores(ctx, dc.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to list datastores: %w", err)
		}
		best, ok := mostFreeDatastore(list)
		if !ok {
			return nil, errors.New("no accessible datastore found")
		}
		p.Datastore = object.NewDatastore(c.conn.Client, best.Ref)
		p.Datastore.InventoryPath = best.Name
	}

	if cfg.Network != "" {
		p.Network, err = c.FindNetwork(ctx, dc, cfg.Network)
		if err != nil {
			return nil, err
		}
	}

	c.log.Info("Resolved placement",
		"datacenter", dc.Name(),
		"compute", cr.Name(),
		"datastore", p.Datastore.Name(),
		"network", p.NetworkName())

	return p, nil
}

// NetworkName returns the default network's name, or "" when there is none.
func (p *Placement) NetworkName() string {
	if p.Network == nil {
		return ""
	}
	return path.Base(p.Network.GetInventoryPath())
}
