package metrics

import (
	"context"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
)

// CollectSystem samples runtime and host statistics into the system gauges.
// Host memory is skipped when the platform does not expose it.
func CollectSystem() {
	if v, err := mem.VirtualMemory(); err == nil {
		UpdateHostMemory(v.Total, v.Available)
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	UpdateSystemMemoryUsage(m.Alloc)
	UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		// PauseNs is a ring buffer; the latest pause sits at (NumGC+255)%256.
		last := m.PauseNs[(m.NumGC+255)%256]
		RecordSystemGCPauseTime(float64(last) / float64(time.Millisecond))
	}
}

// RunSystemCollector calls CollectSystem every interval until ctx is done.
func RunSystemCollector(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = globalManager.refreshInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	CollectSystem()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			CollectSystem()
		}
	}
}
