package metrics

import (
	"fmt"
	"os"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/procfs"
)

const (
	MetricCPUUTimeSeconds = "gopstake_cpu_utime_seconds"
	MetricCPUSTimeSeconds = "gopstake_cpu_stime_seconds"

	// ClockTicks is getconf CLK_TCK.
	ClockTicks = 100
)

var (
	utimeGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricCPUUTimeSeconds,
			Help: "CPU user time spent by the node as reported by /proc/<PID>/stat (seconds).",
		},
	)

	stimeGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricCPUSTimeSeconds,
			Help: "CPU system time spent by the node as reported by /proc/<PID>/stat (seconds).",
		},
	)

	cpuCollectors = []prometheus.Collector{utimeGauge, stimeGauge}
	cpuOnce       sync.Once
)

type cpuCollector struct {
	pid int
}

func (c *cpuCollector) Name() string {
	return "cpu"
}

func (c *cpuCollector) Update() error {
	proc, err := procfs.NewProc(c.pid)
	if err != nil {
		return fmt.Errorf("CPU metric: failed to open proc for PID %d: %w", c.pid, err)
	}
	stat, err := proc.Stat()
	if err != nil {
		return fmt.Errorf("CPU metric: failed to read stat of PID %d: %w", c.pid, err)
	}

	utimeGauge.Set(float64(stat.UTime) / ClockTicks)
	stimeGauge.Set(float64(stat.STime) / ClockTicks)

	return nil
}

// NewCPUCollector creates a collector of the CPU time spent by the node.
func NewCPUCollector() ResourceCollector {
	cpuOnce.Do(func() {
		prometheus.MustRegister(cpuCollectors...)
	})

	return &cpuCollector{
		pid: os.Getpid(),
	}
}
