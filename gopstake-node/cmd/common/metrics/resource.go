package metrics

import (
	"sync"
	"time"

	"github.com/cryptogopniks/GopStake/common/logging"
)

// ResourceCollector samples a resource of the node process or host into
// gauges.
type ResourceCollector interface {
	// Name returns the collector name.
	Name() string

	// Update samples the resource and refreshes the gauges.
	Update() error
}

type resourceService struct {
	logger *logging.Logger

	interval   time.Duration
	collectors []ResourceCollector

	startOnce sync.Once
	stopOnce  sync.Once
	started   bool
	stopCh    chan struct{}
	doneCh    chan struct{}
}

func (r *resourceService) start() {
	r.startOnce.Do(func() {
		r.started = true
		go r.worker()
	})
}

func (r *resourceService) stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)
		if r.started {
			<-r.doneCh
		}
	})
}

func (r *resourceService) worker() {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		r.update()

		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
		}
	}
}

func (r *resourceService) update() {
	for _, c := range r.collectors {
		if err := c.Update(); err != nil {
			// Not every platform exposes procfs.
			r.logger.Debug("failed to update resource metrics",
				"collector", c.Name(),
				"err", err,
			)
		}
	}
}

func newResourceService(interval time.Duration, collectors ...ResourceCollector) *resourceService {
	return &resourceService{
		logger:     logging.GetLogger("metrics/resources"),
		interval:   interval,
		collectors: collectors,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}
