package metrics

import (
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

type countingCollector struct {
	updates int32
}

func (c *countingCollector) Name() string {
	return "counting"
}

func (c *countingCollector) Update() error {
	atomic.AddInt32(&c.updates, 1)
	return nil
}

func TestResourceService(t *testing.T) {
	require := require.New(t)

	c := &countingCollector{}
	rsvc := newResourceService(5*time.Millisecond, c)
	rsvc.start()

	require.Eventually(func() bool {
		return atomic.LoadInt32(&c.updates) >= 3
	}, 5*time.Second, time.Millisecond, "collectors are sampled periodically")

	rsvc.stop()
	rsvc.stop()
	stopped := atomic.LoadInt32(&c.updates)
	time.Sleep(20 * time.Millisecond)
	require.Equal(stopped, atomic.LoadInt32(&c.updates), "no samples after stop")

	// Stopping a service that never started must not block.
	newResourceService(time.Second, c).stop()
}

func TestDirSize(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	require.NoError(os.WriteFile(filepath.Join(dir, "ledger.json"), []byte("{}\n"), 0o600))
	require.NoError(os.MkdirAll(filepath.Join(dir, "staking"), 0o700))
	require.NoError(os.WriteFile(filepath.Join(dir, "staking", "000001.vlog"), []byte("12345"), 0o600))

	size, err := dirSize(dir)
	require.NoError(err, "dirSize")
	require.EqualValues(8, size, "sum of regular file sizes")

	_, err = dirSize(filepath.Join(dir, "missing"))
	require.Error(err, "missing directory")
}

func TestProcessCollectors(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("procfs is only available on linux")
	}
	require := require.New(t)

	cpu := NewCPUCollector()
	require.Equal("cpu", cpu.Name())
	require.NoError(cpu.Update(), "cpu Update")
	require.GreaterOrEqual(testutil.ToFloat64(utimeGauge), 0.0)

	net := NewNetCollector()
	require.Equal("net", net.Name())
	require.NoError(net.Update(), "net Update")
	require.NotZero(testutil.CollectAndCount(receiveBytesGauge), "one series per device")
}
