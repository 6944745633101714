// Package configs provides library defaults loaded from an embedded YAML file.
// All hardcoded values live in defaults.yaml.
package configs

import (
	_ "embed"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Defaults holds all library default values (loaded from defaults.yaml at startup).
var Defaults LibDefaults

func init() {
	if err := yaml.Unmarshal(defaultsYAML, &Defaults); err != nil {
		panic("vsphere-mcp: invalid defaults.yaml: " + err.Error())
	}
}

// LibDefaults holds all configurable library defaults.
type LibDefaults struct {
	VCenter   VCenterDefaults   `yaml:"vcenter"`
	VM        VMDefaults        `yaml:"vm"`
	Tasks     TaskDefaults      `yaml:"tasks"`
	Inventory InventoryDefaults `yaml:"inventory"`
	Server    ServerDefaults    `yaml:"server"`
	Logging   LoggingDefaults   `yaml:"logging"`
}

// VCenterDefaults holds vCenter connection defaults.
type VCenterDefaults struct {
	Port int `yaml:"port"`
}

// VMDefaults holds hardware defaults for newly created VMs.
type VMDefaults struct {
	GuestID    string `yaml:"guest_id"`
	DiskSizeGB int64  `yaml:"disk_size_gb"`
	NICType    string `yaml:"nic_type"`
	SCSIType   string `yaml:"scsi_type"`
}

// TaskDefaults holds the remote task polling cadence and upper bound.
type TaskDefaults struct {
	PollIntervalMS int `yaml:"poll_interval_ms"`
	TimeoutMinutes int `yaml:"timeout_minutes"`
}

// PollInterval returns the task poll cadence.
func (t TaskDefaults) PollInterval() time.Duration {
	return time.Duration(t.PollIntervalMS) * time.Millisecond
}

// Timeout returns the overall task wait limit.
func (t TaskDefaults) Timeout() time.Duration {
	return time.Duration(t.TimeoutMinutes) * time.Minute
}

// InventoryDefaults holds inventory traversal limits.
type InventoryDefaults struct {
	MaxParentHops int `yaml:"max_parent_hops"`
}

// ServerDefaults holds MCP server identity and HTTP transport defaults.
type ServerDefaults struct {
	Name            string `yaml:"name"`
	Version         string `yaml:"version"`
	HTTPAddr        string `yaml:"http_addr"`
	EndpointPath    string `yaml:"endpoint_path"`
	ShutdownSeconds int    `yaml:"shutdown_seconds"`
}

// ShutdownTimeout returns the graceful HTTP shutdown limit.
func (s ServerDefaults) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownSeconds) * time.Second
}

// LoggingDefaults holds log level and format defaults.
type LoggingDefaults struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}
