package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate clears every bound variable and moves into an empty directory so a
// developer's .env cannot leak into the test.
func isolate(t *testing.T) {
	t.Helper()
	for _, env := range envBindings {
		t.Setenv(env, "")
	}
	t.Chdir(t.TempDir())
}

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("VCENTER_HOST", "vcenter.example.com")
	t.Setenv("VCENTER_USER", "administrator@vsphere.local")
	t.Setenv("VCENTER_PASSWORD", "secret")
}

func TestLoad_MissingRequired(t *testing.T) {
	isolate(t)
	t.Setenv("VCENTER_USER", "admin")

	cfg, err := Load("")
	require.Error(t, err)
	assert.Nil(t, cfg)

	var cfgErr *Error
	require.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, err.Error(), "VCENTER_HOST")
	assert.Contains(t, err.Error(), "VCENTER_PASSWORD")
	assert.NotContains(t, err.Error(), "VCENTER_USER")
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)
	setRequired(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "vcenter.example.com", cfg.VCenter.Host)
	assert.False(t, cfg.VCenter.Insecure)
	assert.Empty(t, cfg.Placement.Datacenter)
	assert.Empty(t, cfg.Placement.Network)
	assert.Equal(t, 250*time.Millisecond, cfg.Tasks.PollInterval)
	assert.Equal(t, 30*time.Minute, cfg.Tasks.Timeout)
	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "stdio", cfg.Server.Transport)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.HTTPAddr)
}

func TestLoad_Overrides(t *testing.T) {
	isolate(t)
	setRequired(t)
	t.Setenv("VCENTER_DATACENTER", "DC1")
	t.Setenv("VCENTER_CLUSTER", "Cluster-A")
	t.Setenv("VCENTER_DATASTORE", "ds-fast")
	t.Setenv("VCENTER_NETWORK", "VM Network")
	t.Setenv("VCENTER_INSECURE", "yes")
	t.Setenv("VCENTER_TASK_POLL_INTERVAL", "1s")
	t.Setenv("VCENTER_TASK_TIMEOUT", "5m")
	t.Setenv("MCP_LOG_LEVEL", "debug")
	t.Setenv("MCP_TRANSPORT", "HTTP")
	t.Setenv("MCP_HTTP_ADDR", ":9090")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, PlacementConfig{
		Datacenter: "DC1",
		Cluster:    "Cluster-A",
		Datastore:  "ds-fast",
		Network:    "VM Network",
	}, cfg.Placement)
	assert.True(t, cfg.VCenter.Insecure)
	assert.Equal(t, time.Second, cfg.Tasks.PollInterval)
	assert.Equal(t, 5*time.Minute, cfg.Tasks.Timeout)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, "http", cfg.Server.Transport)
	assert.Equal(t, ":9090", cfg.Server.HTTPAddr)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  string
		val  string
	}{
		{"unknown log level", "MCP_LOG_LEVEL", "VERBOSE"},
		{"unknown log format", "MCP_LOG_FORMAT", "xml"},
		{"unknown transport", "MCP_TRANSPORT", "grpc"},
		{"timeout shorter than poll", "VCENTER_TASK_TIMEOUT", "100ms"},
		{"poll interval without unit", "VCENTER_TASK_POLL_INTERVAL", "500"},
		{"poll interval below floor", "VCENTER_TASK_POLL_INTERVAL", "1ms"},
		{"timeout without unit", "VCENTER_TASK_TIMEOUT", "600"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			setRequired(t)
			t.Setenv(tt.env, tt.val)

			_, err := Load("")
			require.Error(t, err)
			var cfgErr *Error
			assert.True(t, errors.As(err, &cfgErr))
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	isolate(t)

	content := "VCENTER_HOST=file-host\nVCENTER_USER=file-user\nVCENTER_PASSWORD=file-pass\nVCENTER_DATASTORE=ds-file\n"
	require.NoError(t, os.WriteFile(DefaultEnvFile, []byte(content), 0o600))

	t.Run("default file is picked up", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "file-host", cfg.VCenter.Host)
		assert.Equal(t, "ds-file", cfg.Placement.Datastore)
	})

	t.Run("environment wins over file", func(t *testing.T) {
		t.Setenv("VCENTER_HOST", "env-host")
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "env-host", cfg.VCenter.Host)
		assert.Equal(t, "file-user", cfg.VCenter.User)
	})
}

func TestLoad_ExplicitEnvFileMissing(t *testing.T) {
	isolate(t)
	setRequired(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	var cfgErr *Error
	assert.True(t, errors.As(err, &cfgErr))
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"1", true},
		{"true", true},
		{"TRUE", true},
		{"Yes", true},
		{" yes ", true},
		{"0", false},
		{"false", false},
		{"no", false},
		{"on", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseBool(tt.in))
		})
	}
}
