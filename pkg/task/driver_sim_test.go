package task

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmware/govmomi"
	"github.com/vmware/govmomi/find"
	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/simulator"
)

func newSimVM(t *testing.T) (*govmomi.Client, *object.VirtualMachine, context.Context) {
	t.Helper()

	model := simulator.VPX()
	model.Datacenter = 1
	model.Cluster = 0
	model.Host = 1
	model.Machine = 1

	require.NoError(t, model.Create())
	model.Service.TLS = new(tls.Config)
	s := model.Service.NewServer()

	ctx := context.Background()
	u := s.URL
	u.User = simulator.DefaultLogin
	c, err := govmomi.NewClient(ctx, u, true)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = c.Logout(ctx)
		s.Close()
		model.Remove()
	})

	vms, err := find.NewFinder(c.Client, true).VirtualMachineList(ctx, "*")
	require.NoError(t, err)
	require.NotEmpty(t, vms)
	return c, vms[0], ctx
}

func TestRun_Simulator(t *testing.T) {
	c, vm, ctx := newSimVM(t)
	d := NewDriver(c.Client, WithPollInterval(10*time.Millisecond), WithLogger(slog.New(slog.DiscardHandler)))

	res, err := d.Run(ctx, "power off", vm.PowerOff)
	require.NoError(t, err)
	assert.Equal(t, "Task", res.Task.Type)

	// Powering off twice is rejected by the server.
	_, err = d.Run(ctx, "power off", vm.PowerOff)
	require.Error(t, err)
	var failure *OperationFailure
	require.True(t, errors.As(err, &failure))
	require.NotNil(t, failure.Fault)
}
