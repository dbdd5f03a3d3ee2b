package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/procfs"
)

const (
	MetricDiskUsageBytes   = "gopstake_disk_usage_bytes"
	MetricDiskReadBytes    = "gopstake_disk_read_bytes"
	MetricDiskWrittenBytes = "gopstake_disk_written_bytes"
)

var (
	diskUsageGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricDiskUsageBytes,
			Help: "Size of the node data directory (bytes).",
		},
	)

	diskReadBytesGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricDiskReadBytes,
			Help: "Data read from block storage by the node as reported by /proc/<PID>/io (bytes).",
		},
	)

	diskWrittenBytesGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricDiskWrittenBytes,
			Help: "Data written to block storage by the node as reported by /proc/<PID>/io (bytes).",
		},
	)

	diskCollectors = []prometheus.Collector{diskUsageGauge, diskReadBytesGauge, diskWrittenBytesGauge}
	diskOnce       sync.Once
)

type diskCollector struct {
	dataDir string
	pid     int
}

func (d *diskCollector) Name() string {
	return "disk"
}

func (d *diskCollector) Update() error {
	size, err := dirSize(d.dataDir)
	if err != nil {
		return err
	}
	diskUsageGauge.Set(float64(size))

	proc, err := procfs.NewProc(d.pid)
	if err != nil {
		return fmt.Errorf("disk I/O metric: failed to open proc for PID %d: %w", d.pid, err)
	}
	io, err := proc.IO()
	if err != nil {
		return fmt.Errorf("disk I/O metric: failed to read io of PID %d: %w", d.pid, err)
	}

	diskReadBytesGauge.Set(float64(io.ReadBytes))
	diskWrittenBytesGauge.Set(float64(io.WriteBytes))

	return nil
}

// dirSize returns the total size of the regular files under dir.
func dirSize(dir string) (int64, error) {
	var size int64
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("disk usage metric: failed to access %s: %w", path, err)
		}
		if info.Mode().IsRegular() {
			size += info.Size()
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return size, nil
}

// NewDiskCollector creates a collector of the data directory size and the
// block I/O of the node.
func NewDiskCollector(dataDir string) ResourceCollector {
	diskOnce.Do(func() {
		prometheus.MustRegister(diskCollectors...)
	})

	return &diskCollector{
		dataDir: dataDir,
		pid:     os.Getpid(),
	}
}
