// Package metrics implements a prometheus metrics service.
package metrics

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cryptogopniks/GopStake/common/logging"
	cmdCommon "github.com/cryptogopniks/GopStake/gopstake-node/cmd/common"
)

const (
	// CfgMetricsAddr is the metrics listen address. An empty address
	// disables the service.
	CfgMetricsAddr = "metrics.address"

	// CfgMetricsInterval is the resource metrics sampling interval.
	CfgMetricsInterval = "metrics.interval"

	// MetricUp is the liveness metric.
	MetricUp = "gopstake_up"
)

var (
	// Flags has the flags used by the metrics service.
	Flags = flag.NewFlagSet("", flag.ContinueOnError)

	upGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricUp,
			Help: "Is the node running.",
		},
	)
)

// Service is a prometheus pull service.
type Service struct {
	logger *logging.Logger

	ln   net.Listener
	s    *http.Server
	rsvc *resourceService

	errCh chan error
}

// Start starts serving metrics.
func (s *Service) Start() error {
	if s.s == nil {
		return nil
	}

	upGauge.Set(1)
	s.rsvc.start()
	go func() {
		if err := s.s.Serve(s.ln); err != nil && err != http.ErrServerClosed {
			s.errCh <- err
		}
	}()
	return nil
}

// Stop stops serving metrics.
func (s *Service) Stop() error {
	if s.s == nil {
		return nil
	}
	upGauge.Set(0)
	s.rsvc.stop()

	select {
	case err := <-s.errCh:
		s.logger.Error("metrics terminated uncleanly",
			"err", err,
		)
	default:
	}
	err := s.s.Close()
	s.s = nil
	return err
}

// New creates a new metrics service. The service is a no-op when no
// listen address is configured.
func New() (*Service, error) {
	logger := logging.GetLogger("metrics")
	svc := &Service{
		logger: logger,
		errCh:  make(chan error, 1),
	}

	addr := viper.GetString(CfgMetricsAddr)
	if addr == "" {
		return svc, nil
	}

	interval := viper.GetDuration(CfgMetricsInterval)
	if interval <= 0 {
		return nil, fmt.Errorf("metrics: invalid sampling interval %s", interval)
	}

	logger.Debug("metrics server params",
		"addr", addr,
		"interval", interval,
	)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	svc.ln = ln
	svc.s = &http.Server{Handler: promhttp.Handler(), ReadTimeout: 5 * time.Second}
	svc.rsvc = newResourceService(
		interval,
		NewCPUCollector(),
		NewDiskCollector(cmdCommon.DataDir()),
		NewNetCollector(),
	)
	return svc, nil
}

func init() {
	prometheus.MustRegister(upGauge)

	Flags.String(CfgMetricsAddr, "", "metrics pull mode listen address")
	Flags.Duration(CfgMetricsInterval, 5*time.Second, "resource metrics sampling interval")
	_ = viper.BindPFlags(Flags)
}
