package sampler

import (
	"strings"
	"time"

	"github.com/benchkit/procsample/pkg/system/introspect"
)

type cpuBaseline struct {
	cpuTime float64
	at      time.Time
}

// Aggregator produces one synthetic reading per tick covering every live
// process whose name starts with a fixed prefix. It is meant for
// families of short-lived worker processes where per-member attachment
// would never keep up.
type Aggregator struct {
	in     introspect.Introspector
	prefix string
	now    func() time.Time
	last   map[int]cpuBaseline
}

func NewAggregator(in introspect.Introspector, prefix string) *Aggregator {
	return &Aggregator{
		in:     in,
		prefix: prefix,
		now:    time.Now,
		last:   make(map[int]cpuBaseline),
	}
}

// Sample enumerates the process table, filters by name prefix and sums
// RSS and CPU across the matches. A member that disappears between
// enumeration and query is excluded from this tick's sum, not a tick
// failure. A member on its first observed tick has no baseline yet and
// contributes zero CPU; family members are numerous and short-lived, so
// the undercount is accepted. Zero matches is a valid reading, not an
// error. Only the enumeration itself can fail the tick.
func (g *Aggregator) Sample() (rssKb uint64, cpuPct float64, err error) {
	procs, err := g.in.Enumerate()
	if err != nil {
		return 0, 0, err
	}
	now := g.now()
	seen := make(map[int]cpuBaseline, len(g.last))
	for _, p := range procs {
		if !strings.HasPrefix(p.Name, g.prefix) {
			continue
		}
		r, err := g.in.Read(p.PID)
		if err != nil {
			continue
		}
		rssKb += r.RSS.KiB()
		if prev, ok := g.last[p.PID]; ok {
			elapsed := now.Sub(prev.at).Seconds()
			if elapsed > 0 && r.CPUTime >= prev.cpuTime {
				cpuPct += (r.CPUTime - prev.cpuTime) / elapsed * 100
			}
		}
		seen[p.PID] = cpuBaseline{cpuTime: r.CPUTime, at: now}
	}
	// Replace, don't accumulate: exited members drop out so a reused
	// pid cannot inherit a stale baseline.
	g.last = seen
	return rssKb, cpuPct, nil
}
