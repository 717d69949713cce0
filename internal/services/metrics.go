package services

import (
	"context"
	"os"
	"sync"
	"time"

	"autazul-backend-go/internal/db"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

const maxMetricsHistory = 500

type MetricSample struct {
	CapturedAt        time.Time `json:"capturedAt" db:"captured_at"`
	ProcessRSSBytes   int64     `json:"processRssBytes" db:"process_rss_bytes"`
	SystemMemoryTotal int64     `json:"systemMemoryTotalBytes" db:"system_memory_total_bytes"`
	SystemMemoryUsed  int64     `json:"systemMemoryUsedBytes" db:"system_memory_used_bytes"`
	DiskTotalBytes    int64     `json:"diskTotalBytes" db:"disk_total_bytes"`
	DiskUsedBytes     int64     `json:"diskUsedBytes" db:"disk_used_bytes"`
	ProcessCPULoad    float64   `json:"processCpuLoad" db:"process_cpu_load"`
	SystemCPULoad     float64   `json:"systemCpuLoad" db:"system_cpu_load"`
}

// SampleSystem reads process and host usage. Probes that fail leave their
// fields at zero.
func SampleSystem(diskPath string) MetricSample {
	sample := MetricSample{CapturedAt: nowFunc()}
	if memStat, err := mem.VirtualMemory(); err == nil {
		sample.SystemMemoryTotal = int64(memStat.Total)
		sample.SystemMemoryUsed = int64(memStat.Total - memStat.Available)
	}
	diskStat, err := disk.Usage(diskPath)
	if err != nil {
		diskStat, err = disk.Usage("/")
	}
	if err == nil {
		sample.DiskTotalBytes = int64(diskStat.Total)
		sample.DiskUsedBytes = int64(diskStat.Used)
	}
	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if rss, err := proc.MemoryInfo(); err == nil && rss != nil {
			sample.ProcessRSSBytes = int64(rss.RSS)
		}
		if perc, err := proc.CPUPercent(); err == nil {
			sample.ProcessCPULoad = perc / 100.0
		}
	}
	if sysCPU, err := cpu.Percent(0, false); err == nil && len(sysCPU) > 0 {
		sample.SystemCPULoad = sysCPU[0] / 100.0
	}
	return sample
}

// CaptureMetrics samples the host and stores the result.
func CaptureMetrics(ctx context.Context, q db.Querier, diskPath string) (MetricSample, error) {
	sample := SampleSystem(diskPath)
	if err := storeMetricSample(ctx, q, sample); err != nil {
		return MetricSample{}, err
	}
	return sample, nil
}

func storeMetricSample(ctx context.Context, q db.Querier, sample MetricSample) error {
	_, err := q.ExecContext(ctx, `
INSERT INTO server_metric_samples (
  id, captured_at, process_rss_bytes, system_memory_total_bytes, system_memory_used_bytes,
  disk_total_bytes, disk_used_bytes, process_cpu_load, system_cpu_load
) VALUES (?,?,?,?,?,?,?,?,?)
`, uuid.NewString(), sample.CapturedAt, sample.ProcessRSSBytes, sample.SystemMemoryTotal, sample.SystemMemoryUsed,
		sample.DiskTotalBytes, sample.DiskUsedBytes, sample.ProcessCPULoad, sample.SystemCPULoad)
	return WrapError(err, "store metric sample")
}

// LatestMetrics returns up to limit samples, oldest first.
func LatestMetrics(ctx context.Context, q db.Querier, limit int) ([]MetricSample, error) {
	if limit <= 0 || limit > maxMetricsHistory {
		limit = maxMetricsHistory
	}
	rows := []MetricSample{}
	if err := q.SelectContext(ctx, &rows, `
SELECT captured_at, process_rss_bytes, system_memory_total_bytes, system_memory_used_bytes,
       disk_total_bytes, disk_used_bytes, process_cpu_load, system_cpu_load
FROM server_metric_samples
ORDER BY captured_at DESC
LIMIT ?
`, limit); err != nil {
		return nil, err
	}
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, nil
}

type SystemHealth struct {
	Status   string       `json:"status"`
	Database string       `json:"database"`
	Sample   MetricSample `json:"sample"`
}

func CheckHealth(ctx context.Context, database *db.DB, diskPath string) SystemHealth {
	health := SystemHealth{Status: "ok", Database: "ok", Sample: SampleSystem(diskPath)}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := database.PingContext(pingCtx); err != nil {
		health.Status = "degraded"
		health.Database = err.Error()
	}
	return health
}

// MetricsHub fans samples out to connected admin websockets.
type MetricsHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	ch      chan MetricSample
}

func NewMetricsHub() *MetricsHub {
	return &MetricsHub{
		clients: map[*websocket.Conn]bool{},
		ch:      make(chan MetricSample, 16),
	}
}

func (h *MetricsHub) Run(ctx context.Context) {
	for {
		select {
		case sample := <-h.ch:
			h.mu.Lock()
			for conn := range h.clients {
				_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteJSON(sample); err != nil {
					_ = conn.Close()
					delete(h.clients, conn)
				}
			}
			h.mu.Unlock()
		case <-ctx.Done():
			h.mu.Lock()
			for conn := range h.clients {
				_ = conn.Close()
			}
			h.clients = map[*websocket.Conn]bool{}
			h.mu.Unlock()
			return
		}
	}
}

// Broadcast drops the sample when the hub is backed up.
func (h *MetricsHub) Broadcast(sample MetricSample) {
	select {
	case h.ch <- sample:
	default:
	}
}

func (h *MetricsHub) Add(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()
}

func (h *MetricsHub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}

func (h *MetricsHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
