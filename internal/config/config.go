// Package config loads the server configuration from the environment and an
// optional dotenv file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/Bibi40k/vsphere-mcp/configs"
)

// DefaultEnvFile is read when present in the working directory and no explicit
// file is given.
const DefaultEnvFile = ".env"

// Config is the complete server configuration.
type Config struct {
	VCenter   VCenterConfig
	Placement PlacementConfig
	Tasks     TaskConfig
	Logging   LoggingConfig
	Server    ServerConfig
}

// VCenterConfig holds connection settings.
type VCenterConfig struct {
	Host     string `validate:"required"`
	User     string `validate:"required"`
	Password string `validate:"required"`
	Insecure bool
}

// PlacementConfig names the inventory objects new VMs are placed on.
// Empty values select a default at connect time.
type PlacementConfig struct {
	Datacenter string
	Cluster    string
	Datastore  string
	Network    string
}

// TaskConfig bounds remote task polling. Durations without a unit parse as
// nanoseconds, so the floors reject them.
type TaskConfig struct {
	PollInterval time.Duration `validate:"gte=10ms"`
	Timeout      time.Duration `validate:"gte=1s,gtfield=PollInterval"`
}

// LoggingConfig selects log verbosity and output format.
type LoggingConfig struct {
	Level  string `validate:"required,oneof=DEBUG INFO WARN WARNING ERROR"`
	Format string `validate:"required,oneof=text json pretty"`
}

// ServerConfig selects the MCP transport.
type ServerConfig struct {
	Transport string `validate:"required,oneof=stdio http"`
	HTTPAddr  string `validate:"required_if=Transport http"`
}

// Error reports missing or invalid settings. It is fatal at startup.
type Error struct {
	Err error
}

func (e *Error) Error() string { return "configuration error: " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// environment variable bindings, keyed by viper key
var envBindings = map[string]string{
	"vcenter_host":               "VCENTER_HOST",
	"vcenter_user":               "VCENTER_USER",
	"vcenter_password":           "VCENTER_PASSWORD",
	"vcenter_insecure":           "VCENTER_INSECURE",
	"vcenter_datacenter":         "VCENTER_DATACENTER",
	"vcenter_cluster":            "VCENTER_CLUSTER",
	"vcenter_datastore":          "VCENTER_DATASTORE",
	"vcenter_network":            "VCENTER_NETWORK",
	"vcenter_task_poll_interval": "VCENTER_TASK_POLL_INTERVAL",
	"vcenter_task_timeout":       "VCENTER_TASK_TIMEOUT",
	"mcp_log_level":              "MCP_LOG_LEVEL",
	"mcp_log_format":             "MCP_LOG_FORMAT",
	"mcp_transport":              "MCP_TRANSPORT",
	"mcp_http_addr":              "MCP_HTTP_ADDR",
}

var requiredKeys = []string{"vcenter_host", "vcenter_user", "vcenter_password"}

// Load builds the configuration with the following precedence:
// 1. Environment variables (highest)
// 2. The dotenv file (envFile, or ./.env when envFile is empty and it exists)
// 3. Defaults from configs/defaults.yaml (lowest)
func Load(envFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, &Error{Err: fmt.Errorf("bind %s: %w", env, err)}
		}
	}

	if err := readEnvFile(v, envFile); err != nil {
		return nil, &Error{Err: err}
	}

	var missing []string
	for _, key := range requiredKeys {
		if strings.TrimSpace(v.GetString(key)) == "" {
			missing = append(missing, envBindings[key])
		}
	}
	if len(missing) > 0 {
		return nil, &Error{Err: fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))}
	}

	cfg := &Config{
		VCenter: VCenterConfig{
			Host:     strings.TrimSpace(v.GetString("vcenter_host")),
			User:     v.GetString("vcenter_user"),
			Password: v.GetString("vcenter_password"),
			Insecure: ParseBool(v.GetString("vcenter_insecure")),
		},
		Placement: PlacementConfig{
			Datacenter: v.GetString("vcenter_datacenter"),
			Cluster:    v.GetString("vcenter_cluster"),
			Datastore:  v.GetString("vcenter_datastore"),
			Network:    v.GetString("vcenter_network"),
		},
		Tasks: TaskConfig{
			PollInterval: v.GetDuration("vcenter_task_poll_interval"),
			Timeout:      v.GetDuration("vcenter_task_timeout"),
		},
		Logging: LoggingConfig{
			Level:  strings.ToUpper(v.GetString("mcp_log_level")),
			Format: strings.ToLower(v.GetString("mcp_log_format")),
		},
		Server: ServerConfig{
			Transport: strings.ToLower(v.GetString("mcp_transport")),
			HTTPAddr:  v.GetString("mcp_http_addr"),
		},
	}

	if err := Validate(cfg); err != nil {
		return nil, &Error{Err: err}
	}
	return cfg, nil
}

// Validate checks the configuration using struct tags.
func Validate(cfg *Config) error {
	return validator.New().Struct(cfg)
}

// ParseBool accepts 1, true and yes (any case) as true; everything else is false.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func setDefaults(v *viper.Viper) {
	d := configs.Defaults
	v.SetDefault("vcenter_insecure", "false")
	v.SetDefault("vcenter_task_poll_interval", d.Tasks.PollInterval())
	v.SetDefault("vcenter_task_timeout", d.Tasks.Timeout())
	v.SetDefault("mcp_log_level", d.Logging.Level)
	v.SetDefault("mcp_log_format", d.Logging.Format)
	v.SetDefault("mcp_transport", "stdio")
	v.SetDefault("mcp_http_addr", d.Server.HTTPAddr)
}

// readEnvFile merges a dotenv file into v. An explicit file must exist; the
// default ./.env is optional.
func readEnvFile(v *viper.Viper, envFile string) error {
	path := envFile
	if path == "" {
		if _, err := os.Stat(DefaultEnvFile); err != nil {
			return nil
		}
		path = DefaultEnvFile
	}

	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && envFile == "" {
			return nil
		}
		return fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return nil
}
