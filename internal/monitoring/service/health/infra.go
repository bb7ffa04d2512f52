package health

import (
	"context"
	"runtime"
	"time"

	"github.com/merchantops/sentinel/internal/monitoring/model"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// InfraSampler reads host-level resources. Swappable in tests.
type InfraSampler interface {
	Sample(ctx context.Context) (model.InfraMetrics, error)
}

// HostSampler samples the local host via gopsutil.
type HostSampler struct {
	diskPath string
}

func NewHostSampler() *HostSampler { return &HostSampler{diskPath: "/"} }

func (s *HostSampler) Sample(ctx context.Context) (model.InfraMetrics, error) {
	out := model.InfraMetrics{
		LogicalCPUs: runtime.NumCPU(),
		SampledAt:   time.Now().UTC(),
	}
	if avg, err := load.AvgWithContext(ctx); err == nil {
		out.Load1 = avg.Load1
	}
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return out, err
	}
	out.MemoryUsedPct = vm.UsedPercent
	out.MemoryTotalMB = float64(vm.Total) / (1024 * 1024)
	if du, err := disk.UsageWithContext(ctx, s.diskPath); err == nil {
		out.DiskUsedPct = du.UsedPercent
	}
	return out, nil
}
