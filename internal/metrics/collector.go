package metrics

import (
	"os"
	"runtime"
	"time"

	"media-dedup/internal/logging"
)

// Collector periodically refreshes gauges that have to be read from the
// outside world, such as SQLite file sizes.
type Collector struct {
	dbPath   string
	interval time.Duration
	stopChan chan struct{}
}

// NewCollector creates a collector for the database at dbPath.
func NewCollector(dbPath string, interval time.Duration) *Collector {
	return &Collector{
		dbPath:   dbPath,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the collection loop.
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the collection loop.
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	c.collectDBSizes()
	logging.Debug("metrics collected for %s", c.dbPath)
}

func (c *Collector) collectDBSizes() {
	for suffix, label := range map[string]string{
		"":     "main",
		"-wal": "wal",
		"-shm": "shm",
	} {
		info, err := os.Stat(c.dbPath + suffix)
		if err != nil {
			DBSizeBytes.WithLabelValues(label).Set(0)
			continue
		}
		DBSizeBytes.WithLabelValues(label).Set(float64(info.Size()))
	}
}

// SetAppInfo publishes build information once at startup.
func SetAppInfo(version string) {
	AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
}
