package metrics

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/procfs"
)

const (
	MetricNetReceiveBytesTotal    = "gopstake_net_receive_bytes_total"
	MetricNetReceivePacketsTotal  = "gopstake_net_receive_packets_total"
	MetricNetTransmitBytesTotal   = "gopstake_net_transmit_bytes_total"
	MetricNetTransmitPacketsTotal = "gopstake_net_transmit_packets_total"
)

var (
	// Labeled by interface name, e.g. eth0.
	deviceLabels = []string{"device"}

	receiveBytesGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: MetricNetReceiveBytesTotal,
			Help: "Received data per network device as reported by /proc/net/dev (bytes).",
		},
		deviceLabels,
	)

	receivePacketsGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: MetricNetReceivePacketsTotal,
			Help: "Received data per network device as reported by /proc/net/dev (packets).",
		},
		deviceLabels,
	)

	transmitBytesGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: MetricNetTransmitBytesTotal,
			Help: "Transmitted data per network device as reported by /proc/net/dev (bytes).",
		},
		deviceLabels,
	)

	transmitPacketsGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: MetricNetTransmitPacketsTotal,
			Help: "Transmitted data per network device as reported by /proc/net/dev (packets).",
		},
		deviceLabels,
	)

	netCollectors = []prometheus.Collector{receiveBytesGauge, receivePacketsGauge, transmitBytesGauge, transmitPacketsGauge}
	netOnce       sync.Once
)

type netCollector struct{}

func (n *netCollector) Name() string {
	return "net"
}

func (n *netCollector) Update() error {
	fs, err := procfs.NewDefaultFS()
	if err != nil {
		return fmt.Errorf("network metric: failed to open procfs: %w", err)
	}
	devs, err := fs.NetDev()
	if err != nil {
		return fmt.Errorf("network metric: failed to read net devices: %w", err)
	}

	for _, dev := range devs {
		receiveBytesGauge.WithLabelValues(dev.Name).Set(float64(dev.RxBytes))
		receivePacketsGauge.WithLabelValues(dev.Name).Set(float64(dev.RxPackets))
		transmitBytesGauge.WithLabelValues(dev.Name).Set(float64(dev.TxBytes))
		transmitPacketsGauge.WithLabelValues(dev.Name).Set(float64(dev.TxPackets))
	}

	return nil
}

// NewNetCollector creates a collector of the host network device counters.
func NewNetCollector() ResourceCollector {
	netOnce.Do(func() {
		prometheus.MustRegister(netCollectors...)
	})

	return &netCollector{}
}
