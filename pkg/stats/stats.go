// Package stats reads virtual machine quick stats and samples network
// throughput from the vCenter performance manager.
package stats

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/vmware/govmomi/performance"
	"github.com/vmware/govmomi/vim25"
	"github.com/vmware/govmomi/vim25/mo"
	"github.com/vmware/govmomi/vim25/types"
)

// ErrMetricsUnavailable wraps every failure to obtain network counters.
var ErrMetricsUnavailable = errors.New("network metrics unavailable")

// SummaryProperties are the VM properties FromSummary reads.
var SummaryProperties = []string{
	"summary.quickStats.overallCpuUsage",
	"summary.quickStats.guestMemoryUsage",
	"summary.storage.committed",
}

const (
	counterTx = "net.transmitted.average"
	counterRx = "net.received.average"
)

// QuickStats are the management-plane maintained rolling values of a VM.
type QuickStats struct {
	CPUMHz    int32
	MemoryMB  int32
	StorageGB float64
}

// FromSummary extracts QuickStats from a VM loaded with SummaryProperties.
func FromSummary(vm *mo.VirtualMachine) QuickStats {
	qs := vm.Summary.QuickStats
	var committed int64
	if vm.Summary.Storage != nil {
		committed = vm.Summary.Storage.Committed
	}
	return QuickStats{
		CPUMHz:    qs.OverallCpuUsage,
		MemoryMB:  qs.GuestMemoryUsage,
		StorageGB: StorageGB(committed),
	}
}

// StorageGB converts bytes to GiB rounded to two decimals.
func StorageGB(bytes int64) float64 {
	return math.Round(float64(bytes)/(1<<30)*100) / 100
}

// NetworkRates is the latest network throughput sample in KBps.
type NetworkRates struct {
	TxKBps int64
	RxKBps int64
}

// NetworkSampler samples network throughput for one entity.
type NetworkSampler interface {
	SampleNetwork(ctx context.Context, ref types.ManagedObjectReference) (*NetworkRates, error)
}

// PerfSampler samples network counters through the performance manager.
type PerfSampler struct {
	m *performance.Manager
}

// NewPerfSampler creates a PerfSampler for c.
func NewPerfSampler(c *vim25.Client) *PerfSampler {
	return &PerfSampler{m: performance.NewManager(c)}
}

// SampleNetwork returns the most recent single sample of the transmit and
// receive counters. Every error wraps ErrMetricsUnavailable.
func (p *PerfSampler) SampleNetwork(ctx context.Context, ref types.ManagedObjectReference) (*NetworkRates, error) {
	spec := types.PerfQuerySpec{
		MaxSample: 1,
		MetricId:  []types.PerfMetricId{{Instance: "*"}},
	}

	sample, err := p.m.SampleByName(ctx, spec, []string{counterTx, counterRx}, []types.ManagedObjectReference{ref})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMetricsUnavailable, err)
	}

	result, err := p.m.ToMetricSeries(ctx, sample)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMetricsUnavailable, err)
	}

	var series []performance.MetricSeries
	for _, em := range result {
		series = append(series, em.Value...)
	}
	return RatesFromSeries(series), nil
}

// RatesFromSeries folds sampled series into NetworkRates. The aggregate
// instance ("") is used when present, otherwise per-NIC instances are summed.
// A counter missing from the sample counts as 0.
func RatesFromSeries(series []performance.MetricSeries) *NetworkRates {
	return &NetworkRates{
		TxKBps: counterValue(series, counterTx),
		RxKBps: counterValue(series, counterRx),
	}
}

func counterValue(series []performance.MetricSeries, name string) int64 {
	var sum int64
	for _, s := range series {
		if s.Name != name || len(s.Value) == 0 {
			continue
		}
		latest := s.Value[len(s.Value)-1]
		if s.Instance == "" {
			return latest
		}
		sum += latest
	}
	return sum
}
