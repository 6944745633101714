package configs

import (
	"testing"
	"time"
)

func TestDefaultsLoaded(t *testing.T) {
	tests := []struct {
		name string
		got  any
		want any
	}{
		{"VCenter.Port", Defaults.VCenter.Port, 443},
		{"VM.GuestID", Defaults.VM.GuestID, "otherGuest"},
		{"VM.DiskSizeGB", Defaults.VM.DiskSizeGB, int64(10)},
		{"VM.NICType", Defaults.VM.NICType, "vmxnet3"},
		{"VM.SCSIType", Defaults.VM.SCSIType, "pvscsi"},
		{"Inventory.MaxParentHops", Defaults.Inventory.MaxParentHops, 64},
		{"Server.Name", Defaults.Server.Name, "VMware-MCP-Server"},
		{"Server.EndpointPath", Defaults.Server.EndpointPath, "/mcp"},
		{"Logging.Level", Defaults.Logging.Level, "INFO"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestTaskDurations(t *testing.T) {
	d := Defaults.Tasks

	if d.PollInterval() != 250*time.Millisecond {
		t.Errorf("PollInterval() = %v, want 250ms", d.PollInterval())
	}
	if d.Timeout() != 30*time.Minute {
		t.Errorf("Timeout() = %v, want 30m", d.Timeout())
	}
	if d.PollInterval() >= d.Timeout() {
		t.Error("poll interval must be shorter than the task timeout")
	}
}

func TestShutdownTimeoutPositive(t *testing.T) {
	if Defaults.Server.ShutdownTimeout() <= 0 {
		t.Errorf("ShutdownTimeout() = %v, want > 0", Defaults.Server.ShutdownTimeout())
	}
}
