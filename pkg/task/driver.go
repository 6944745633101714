// Package task drives asynchronous vCenter tasks to a terminal state with a
// bounded poll interval and an overall timeout.
package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/property"
	"github.com/vmware/govmomi/vim25"
	"github.com/vmware/govmomi/vim25/mo"
	"github.com/vmware/govmomi/vim25/types"

	"github.com/Bibi40k/vsphere-mcp/configs"
)

// InfoReader reads the current info of a task.
type InfoReader interface {
	TaskInfo(ctx context.Context, ref types.ManagedObjectReference) (*types.TaskInfo, error)
}

type collectorReader struct {
	pc *property.Collector
}

func (c collectorReader) TaskInfo(ctx context.Context, ref types.ManagedObjectReference) (*types.TaskInfo, error) {
	var t mo.Task
	if err := c.pc.RetrieveOne(ctx, ref, []string{"info"}, &t); err != nil {
		return nil, err
	}
	return &t.Info, nil
}

// Result is the outcome of a successful task.
type Result struct {
	Task  types.ManagedObjectReference
	Value types.AnyType // task-specific payload, e.g. the new VM reference
}

// Driver polls tasks until they succeed, fail or time out. It never cancels
// the remote task and never retries.
type Driver struct {
	reader   InfoReader
	clock    clockwork.Clock
	interval time.Duration
	timeout  time.Duration
	log      *slog.Logger
}

// Option configures a Driver.
type Option func(*Driver)

// WithClock replaces the real clock, mainly for tests.
func WithClock(c clockwork.Clock) Option {
	return func(d *Driver) { d.clock = c }
}

// WithPollInterval sets the poll cadence.
func WithPollInterval(i time.Duration) Option {
	return func(d *Driver) { d.interval = i }
}

// WithTimeout sets the overall wait limit.
func WithTimeout(t time.Duration) Option {
	return func(d *Driver) { d.timeout = t }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) { d.log = l }
}

// WithInfoReader replaces the property collector reader.
func WithInfoReader(r InfoReader) Option {
	return func(d *Driver) { d.reader = r }
}

// NewDriver creates a Driver that reads task info through c's property collector.
// c may be nil when WithInfoReader is given.
func NewDriver(c *vim25.Client, opts ...Option) *Driver {
	d := &Driver{
		clock:    clockwork.NewRealClock(),
		interval: configs.Defaults.Tasks.PollInterval(),
		timeout:  configs.Defaults.Tasks.Timeout(),
		log:      slog.Default(),
	}
	if c != nil {
		d.reader = collectorReader{pc: property.DefaultCollector(c)}
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run submits a task and waits for it.
func (d *Driver) Run(ctx context.Context, op string, submit func(context.Context) (*object.Task, error)) (*Result, error) {
	t, err := submit(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to submit %s: %w", op, err)
	}
	return d.Wait(ctx, op, t.Reference())
}

// Wait polls ref immediately and then every poll interval. It returns
// *OperationFailure when the task ends in error, *TimeoutError when the
// overall timeout elapses first, and the context error when ctx is done.
func (d *Driver) Wait(ctx context.Context, op string, ref types.ManagedObjectReference) (*Result, error) {
	log := d.log.With("op", op, "task", ref.Value)
	start := d.clock.Now()

	ticker := d.clock.NewTicker(d.interval)
	defer ticker.Stop()
	deadline := d.clock.NewTimer(d.timeout)
	defer deadline.Stop()

	for {
		info, err := d.reader.TaskInfo(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s task state: %w", op, err)
		}

		switch info.State {
		case types.TaskInfoStateSuccess:
			log.Debug("Task completed", "elapsed", d.clock.Since(start))
			return &Result{Task: ref, Value: info.Result}, nil
		case types.TaskInfoStateError:
			log.Debug("Task failed", "elapsed", d.clock.Since(start))
			return nil, &OperationFailure{Op: op, Task: ref, Fault: info.Error}
		case types.TaskInfoStateQueued, types.TaskInfoStateRunning:
		default:
			return nil, fmt.Errorf("%s task %s: unknown state %q", op, ref.Value, info.State)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for %s: %w", op, ctx.Err())
		case <-deadline.Chan():
			log.Warn("Task timed out", "timeout", d.timeout)
			return nil, &TimeoutError{Op: op, Task: ref, After: d.timeout}
		case <-ticker.Chan():
		}
	}
}
