package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aescanero/demo-backend/pkg/adapters/metrics/prometheus"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeProber struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (p *fakeProber) CheckHealth(context.Context, time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.err
}

func (p *fakeProber) set(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

func (p *fakeProber) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func newTestMonitor(p Prober, interval time.Duration) *DownstreamMonitor {
	return NewDownstreamMonitor(p, interval, time.Second,
		prometheus.NewCollector(promclient.NewRegistry()), zap.NewNop())
}

func TestCheckNowNotifiesOnTransitions(t *testing.T) {
	p := &fakeProber{}
	m := newTestMonitor(p, time.Minute)

	var changes []bool
	m.OnChange(func(up bool) { changes = append(changes, up) })

	ctx := context.Background()
	assert.True(t, m.CheckNow(ctx).Up)
	assert.True(t, m.CheckNow(ctx).Up)

	p.set(errors.New("connection refused"))
	st := m.CheckNow(ctx)
	assert.False(t, st.Up)
	assert.Equal(t, "connection refused", st.LastError)

	p.set(nil)
	m.CheckNow(ctx)

	assert.Equal(t, []bool{true, false, true}, changes)
	assert.True(t, m.IsHealthy())
}

func TestStartProbesPeriodically(t *testing.T) {
	p := &fakeProber{}
	m := newTestMonitor(p, 10*time.Millisecond)

	m.Start()
	m.Start()
	assert.Eventually(t, func() bool { return p.count() >= 3 }, time.Second, 5*time.Millisecond)
	m.Stop()

	stopped := p.count()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, p.count())
	m.Stop()
}

func TestZeroIntervalDisablesLoop(t *testing.T) {
	p := &fakeProber{}
	m := newTestMonitor(p, 0)

	m.Start()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, p.count())
	require.False(t, m.GetStatus().Checked)
	m.Stop()
}
