package observability

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// MonitoringStats agrège toutes les métriques pour l'inspecteur HTTP.
type MonitoringStats struct {
	// --- CHAT METRICS ---
	OnlineCount     int      `json:"online_count"`
	Nicknames       []string `json:"nicknames"`
	MessagesIn      uint64   `json:"messages_in"`
	EventsDelivered uint64   `json:"events_delivered"`
	EventsDropped   uint64   `json:"events_dropped"`
	Rejections      uint64   `json:"rejections"`

	// --- SYSTEM METRICS ---
	AllocMemMb uint64  `json:"alloc_mem_mb"`
	NumGC      uint32  `json:"num_gc"`
	RssBytes   uint64  `json:"rss_bytes"`
	CpuPercent float64 `json:"cpu_percent"`
	PidStatus  string  `json:"pid_status"`
}

// MonitoringManager gère la télémétrie du serveur de chat en temps réel.
// Counters are atomic so the hot path never takes the mutex; the
// heartbeat worker folds them into a snapshot on its own tick.
type MonitoringManager struct {
	log         *slog.Logger
	mu          sync.RWMutex
	latestStats MonitoringStats
	LastCheck   time.Time

	messagesIn uint64
	delivered  uint64
	dropped    uint64
	rejections uint64
}

func NewMonitoringManager(log *slog.Logger) *MonitoringManager {
	return &MonitoringManager{log: log, LastCheck: time.Now()}
}

func (m *MonitoringManager) AddMessage()           { atomic.AddUint64(&m.messagesIn, 1) }
func (m *MonitoringManager) AddRejection()         { atomic.AddUint64(&m.rejections, 1) }
func (m *MonitoringManager) AddDelivered(n uint64) { atomic.AddUint64(&m.delivered, n) }
func (m *MonitoringManager) AddDropped(n uint64)   { atomic.AddUint64(&m.dropped, n) }

// SetProcessStats records the self-inspection sample collected by the
// heartbeat worker (RSS, CPU, OS status).
func (m *MonitoringManager) SetProcessStats(rss uint64, cpu float64, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latestStats.RssBytes = rss
	m.latestStats.CpuPercent = cpu
	m.latestStats.PidStatus = status
	m.LastCheck = time.Now()
}

// SetPresence records the current presence snapshot.
func (m *MonitoringManager) SetPresence(nicknames []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latestStats.OnlineCount = len(nicknames)
	m.latestStats.Nicknames = nicknames
}

// GetLatest folds the atomic counters and Go runtime numbers into the
// last recorded snapshot.
func (m *MonitoringManager) GetLatest() MonitoringStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	m.mu.RLock()
	stats := m.latestStats
	m.mu.RUnlock()

	stats.MessagesIn = atomic.LoadUint64(&m.messagesIn)
	stats.EventsDelivered = atomic.LoadUint64(&m.delivered)
	stats.EventsDropped = atomic.LoadUint64(&m.dropped)
	stats.Rejections = atomic.LoadUint64(&m.rejections)
	stats.AllocMemMb = mem.Alloc / 1024 / 1024
	stats.NumGC = mem.NumGC
	return stats
}
