package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
)

// runCheck connects, resolves the placement and prints it.
func runCheck(ctx context.Context, out io.Writer) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := setupLogger(cfg)

	client, placement, err := connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.WithoutCancel(ctx)) }()

	network := placement.NetworkName()
	if network == "" {
		network = "(none, VMs are created without a NIC)"
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "vCenter:\t%s\n", cfg.VCenter.Host)
	fmt.Fprintf(tw, "Datacenter:\t%s\n", placement.Datacenter.Name())
	fmt.Fprintf(tw, "VM folder:\t%s\n", placement.Folder.InventoryPath)
	fmt.Fprintf(tw, "Resource pool:\t%s\n", placement.Pool.InventoryPath)
	fmt.Fprintf(tw, "Datastore:\t%s\n", placement.Datastore.Name())
	fmt.Fprintf(tw, "Network:\t%s\n", network)
	fmt.Fprintf(tw, "Transport:\t%s\n", cfg.Server.Transport)
	return tw.Flush()
}
