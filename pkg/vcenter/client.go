// Package vcenter provides a wrapper around the govmomi library for vCenter operations.
package vcenter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/vmware/govmomi"
	"github.com/vmware/govmomi/find"
	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/property"
	"github.com/vmware/govmomi/vim25"
	"github.com/vmware/govmomi/vim25/types"

	"github.com/Bibi40k/vsphere-mcp/configs"
)

// Client wraps one authenticated govmomi session. It is safe for concurrent
// use and is never mutated after NewClient returns.
type Client struct {
	conn *govmomi.Client
	log  *slog.Logger
}

// Config holds vCenter connection parameters.
type Config struct {
	Host     string // vCenter hostname, IP or https:// URL
	Username string // vCenter username
	Password string // vCenter password
	Port     int    // vCenter port (default: 443)
	Insecure bool   // Skip TLS chain and hostname verification
	Logger   *slog.Logger
}

// AuthError is returned when the session cannot be established. The remote
// message is kept in Err.
type AuthError struct {
	Host string
	Err  error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("failed to connect to vCenter %s: %v", e.Host, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// NewClient creates a new vCenter client and logs in.
// Connection and login failures are returned as *AuthError.
func NewClient(ctx context.Context, cfg *Config) (*Client, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	vcURL, err := buildURL(cfg)
	if err != nil {
		return nil, err
	}
	vcURL.User = url.UserPassword(cfg.Username, cfg.Password)

	if cfg.Insecure {
		log.Warn("TLS certificate verification disabled for vCenter", "host", vcURL.Host)
	}

	client, err := govmomi.NewClient(ctx, vcURL, cfg.Insecure)
	if err != nil {
		return nil, &AuthError{Host: vcURL.Host, Err: err}
	}

	log.Info("Connected to vCenter", "host", vcURL.Host, "user", cfg.Username)

	return &Client{
		conn: client,
		log:  log,
	}, nil
}

// buildURL turns a bare host or an https:// URL into the SDK endpoint URL.
func buildURL(cfg *Config) (*url.URL, error) {
	port := cfg.Port
	if port == 0 {
		port = configs.Defaults.VCenter.Port
	}

	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		return nil, errors.New("vCenter host is empty")
	}

	if !strings.Contains(host, "://") {
		return &url.URL{
			Scheme: "https",
			Host:   fmt.Sprintf("%s:%d", host, port),
			Path:   "/sdk",
		}, nil
	}

	parsed, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid vCenter URL %q: %w", host, err)
	}
	if parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported vCenter URL scheme %q (https required)", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("invalid vCenter URL (missing host): %q", host)
	}
	if parsed.Path == "" || parsed.Path == "/" {
		parsed.Path = "/sdk"
	}
	if parsed.Port() == "" {
		parsed.Host = fmt.Sprintf("%s:%d", parsed.Hostname(), port)
	}
	parsed.User = nil
	return parsed, nil
}

// Disconnect logs out of the session.
func (c *Client) Disconnect(ctx context.Context) error {
	if c.conn != nil {
		return c.conn.Logout(ctx)
	}
	return nil
}

// Vim25 returns the underlying SOAP client.
func (c *Client) Vim25() *vim25.Client {
	return c.conn.Client
}

// RootFolder returns the reference of the inventory root folder.
func (c *Client) RootFolder() types.ManagedObjectReference {
	return c.conn.ServiceContent.RootFolder
}

// PropertyCollector returns the session's default property collector.
func (c *Client) PropertyCollector() *property.Collector {
	return property.DefaultCollector(c.conn.Client)
}

// finder returns a fresh finder scoped to dc, so concurrent callers never
// share finder state.
func (c *Client) finder(dc *object.Datacenter) *find.Finder {
	f := find.NewFinder(c.conn.Client, true)
	if dc != nil {
		f.SetDatacenter(dc)
	}
	return f
}

// FindDatacenter locates a datacenter by name. An empty name selects the first
// datacenter in inventory order.
func (c *Client) FindDatacenter(ctx context.Context, name string) (*object.Datacenter, error) {
	f := c.finder(nil)
	if name == "" {
		dcs, err := f.DatacenterList(ctx, "*")
		if err != nil {
			return nil, fmt.Errorf("no datacenter found: %w", err)
		}
		return dcs[0], nil
	}

	dc, err := f.Datacenter(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("datacenter %q not found: %w", name, err)
	}
	return dc, nil
}

// FindDatastore locates a datastore by name within a datacenter.
func (c *Client) FindDatastore(ctx context.Context, dc *object.Datacenter, name string) (*object.Datastore, error) {
	ds, err := c.finder(dc).Datastore(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("datastore %q not found: %w", name, err)
	}
	return ds, nil
}

// FindNetwork locates a network or port group by name within a datacenter.
func (c *Client) FindNetwork(ctx context.Context, dc *object.Datacenter, name string) (object.NetworkReference, error) {
	net, err := c.finder(dc).Network(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("network %q not found: %w", name, err)
	}
	return net, nil
}

// FindComputeResource locates a cluster by name, or the first compute resource
// of the datacenter when name is empty.
func (c *Client) FindComputeResource(ctx context.Context, dc *object.Datacenter, name string) (*object.ComputeResource, error) {
	f := c.finder(dc)
	if name != "" {
		cluster, err := f.ClusterComputeResource(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("cluster %q not found: %w", name, err)
		}
		return &cluster.ComputeResource, nil
	}

	crs, err := f.ComputeResourceList(ctx, "*")
	if err != nil {
		return nil, fmt.Errorf("no compute resource found: %w", err)
	}
	return crs[0], nil
}

// Client returns the underlying govmomi client for advanced operations.
func (c *Client) Client() *govmomi.Client {
	return c.conn
}
