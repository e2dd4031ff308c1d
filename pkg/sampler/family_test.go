package sampler

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchkit/procsample/pkg/system/introspect"
)

func TestAggregatorSumsMatchingProcesses(t *testing.T) {
	f := newFake()
	f.add(101, "workerproc1", 10240, 0)
	f.add(102, "workerproc2", 20480, 0)
	f.add(103, "unrelated", 99999, 0)

	agg := NewAggregator(f, "workerproc")
	rssKb, cpuPct, err := agg.Sample()
	require.NoError(t, err)
	assert.Equal(t, uint64(30720), rssKb)
	assert.Zero(t, cpuPct, "first observed tick carries no CPU baseline")
}

func TestAggregatorZeroMatches(t *testing.T) {
	f := newFake()
	f.add(1, "init", 512, 0)

	agg := NewAggregator(f, "workerproc")
	rssKb, cpuPct, err := agg.Sample()
	require.NoError(t, err, "zero matches is a valid reading, not an error")
	assert.Zero(t, rssKb)
	assert.Zero(t, cpuPct)
}

func TestAggregatorCPUDeltaAcrossTicks(t *testing.T) {
	f := newFake()
	f.add(101, "workerproc1", 1024, 1.0)
	clk := newManualClock()
	agg := NewAggregator(f, "workerproc")
	agg.now = clk.now

	_, cpuPct, err := agg.Sample()
	require.NoError(t, err)
	assert.Zero(t, cpuPct)

	clk.advance(200 * time.Millisecond)
	f.setCPU(101, 1.1)
	_, cpuPct, err = agg.Sample()
	require.NoError(t, err)
	assert.InDelta(t, 50.0, cpuPct, 1e-9)
}

func TestAggregatorExcludesVanishedMember(t *testing.T) {
	f := newFake()
	f.add(101, "workerproc1", 10240, 0)
	f.add(102, "workerproc2", 20480, 0)
	// 102 exits between enumeration and query
	f.readHook = func(pid int) (introspect.Reading, error) {
		if pid == 102 {
			return introspect.Reading{}, errGone
		}
		return fRead(f, pid)
	}

	agg := NewAggregator(f, "workerproc")
	rssKb, _, err := agg.Sample()
	require.NoError(t, err, "a vanished member is excluded, not a tick failure")
	assert.Equal(t, uint64(10240), rssKb)
}

// fRead is the fake's default read path, reusable from hooks.
func fRead(f *fakeIntrospector, pid int) (introspect.Reading, error) {
	p, ok := f.procs[pid]
	if !ok {
		return introspect.Reading{}, errGone
	}
	return introspect.Reading{RSS: p.rss, CPUTime: p.cpu}, nil
}

func TestAggregatorEnumerationFailureFailsTick(t *testing.T) {
	f := newFake()
	f.enumErr = errors.New("fake: table unavailable")

	agg := NewAggregator(f, "workerproc")
	_, _, err := agg.Sample()
	require.Error(t, err)
}

func TestAggregatorDropsStaleBaselines(t *testing.T) {
	f := newFake()
	f.add(101, "workerproc1", 1024, 9.0)
	agg := NewAggregator(f, "workerproc")

	_, _, err := agg.Sample()
	require.NoError(t, err)
	assert.Len(t, agg.last, 1)

	f.remove(101)
	_, _, err = agg.Sample()
	require.NoError(t, err)
	assert.Empty(t, agg.last, "exited members must not leave baselines behind")

	// pid reused by a fresh worker: no inherited baseline, contributes 0
	f.add(101, "workerproc1", 1024, 0.1)
	_, cpuPct, err := agg.Sample()
	require.NoError(t, err)
	assert.Zero(t, cpuPct)
}
