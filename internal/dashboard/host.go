package dashboard

import (
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// HostMetrics holds host resource usage shown on the dashboard.
type HostMetrics struct {
	CPUPercent  float64 `json:"cpu_percent"`
	CPUCores    int     `json:"cpu_cores"`
	Load1       float64 `json:"load_1"`
	MemUsedMB   float64 `json:"mem_used_mb"`
	MemTotalMB  float64 `json:"mem_total_mb"`
	MemPercent  float64 `json:"mem_percent"`
	HeapAllocMB float64 `json:"heap_alloc_mb"`
	Goroutines  int     `json:"goroutines"`
	UptimeSec   int64   `json:"uptime_sec"`
}

// CollectHost gathers host resource usage. Collection errors leave the
// affected fields zero; the dashboard keeps working on hosts where a
// probe is unsupported.
func CollectHost(start time.Time) HostMetrics {
	m := HostMetrics{
		CPUCores:   runtime.NumCPU(),
		Goroutines: runtime.NumGoroutine(),
		UptimeSec:  int64(time.Since(start).Seconds()),
	}

	// Interval 0 compares against the previous call's CPU times.
	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		m.CPUPercent = pct[0]
	}
	if avg, err := load.Avg(); err == nil {
		m.Load1 = avg.Load1
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		m.MemUsedMB = float64(vm.Used) / 1024 / 1024
		m.MemTotalMB = float64(vm.Total) / 1024 / 1024
		m.MemPercent = vm.UsedPercent
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	m.HeapAllocMB = float64(ms.HeapAlloc) / 1024 / 1024

	return m
}
