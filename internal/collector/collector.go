package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/scoates/vagranttop/internal/models"
)

// Collector takes point-in-time process snapshots and reads the host-wide
// aggregates for the header.
type Collector struct {
	workerName string
}

// New returns a Collector retaining only processes whose image name matches
// workerName (the hypervisor's worker process, e.g. VBoxHeadless).
func New(workerName string) *Collector {
	return &Collector{workerName: workerName}
}

// Snapshot is one enumeration pass. Entries holds the retained hypervisor
// workers with correlation fields still unset; Statuses and Total cover
// every process observed.
type Snapshot struct {
	Entries  []models.ProcessEntry
	Statuses models.StatusHistogram
	Total    int
}

// Snapshot enumerates all processes. A process that vanishes mid-read is
// skipped; per-field read failures leave the corresponding metric nil.
func (c *Collector) Snapshot(ctx context.Context) (*Snapshot, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerate processes: %w", err)
	}

	snap := &Snapshot{Statuses: models.StatusHistogram{}}
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			// vanished between enumeration and read
			continue
		}
		status := statusLabel(ctx, p)
		snap.Statuses[status]++
		snap.Total++
		if name != c.workerName {
			continue
		}

		entry := models.ProcessEntry{PID: p.Pid, Status: status}
		entry.Username, _ = p.UsernameWithContext(ctx)
		entry.CommandLine, _ = p.CmdlineSliceWithContext(ctx)
		if v, err := p.CPUPercentWithContext(ctx); err == nil {
			entry.CPUPercent = &v
		}
		if v, err := p.MemoryPercentWithContext(ctx); err == nil {
			entry.MemoryPercent = &v
		}
		if ts, err := p.TimesWithContext(ctx); err == nil && ts != nil {
			sum := ts.Total()
			entry.CPUTimesSum = &sum
		}
		snap.Entries = append(snap.Entries, entry)
	}
	return snap, nil
}

func statusLabel(ctx context.Context, p *process.Process) string {
	st, err := p.StatusWithContext(ctx)
	if err != nil || len(st) == 0 {
		return "unknown"
	}
	return st[0]
}

// SystemStats reads the host aggregates shown above the process list.
func (c *Collector) SystemStats(ctx context.Context) (*models.SystemStats, error) {
	percents, err := cpu.PercentWithContext(ctx, 0, true)
	if err != nil {
		return nil, fmt.Errorf("cpu percent: %w", err)
	}
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("virtual memory: %w", err)
	}
	swap, err := mem.SwapMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("swap memory: %w", err)
	}
	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("load average: %w", err)
	}
	boot, err := host.BootTimeWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("boot time: %w", err)
	}

	return &models.SystemStats{
		CPUPercents:  percents,
		MemTotal:     vm.Total,
		MemAvailable: vm.Available,
		MemPercent:   vm.UsedPercent,
		SwapTotal:    swap.Total,
		SwapUsed:     swap.Used,
		SwapPercent:  swap.UsedPercent,
		Load1:        avg.Load1,
		Load5:        avg.Load5,
		Load15:       avg.Load15,
		Uptime:       time.Since(time.Unix(int64(boot), 0)).Truncate(time.Second),
	}, nil
}
