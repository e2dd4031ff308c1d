package sampler

import (
	"time"

	"github.com/benchkit/procsample/pkg/system/introspect"
)

// Attacher resolves a target pid into a measurable handle and owns its
// CPU-accounting baseline: the cumulative CPU time and wall time of the
// last query. The handle is invalid until Attach has primed the baseline
// with one throwaway read, and becomes invalid again the instant a query
// fails — it must then be discarded and re-resolved, never reused.
type Attacher struct {
	in  introspect.Introspector
	pid int
	now func() time.Time

	baselineCPU float64
	baselineAt  time.Time
	attached    bool
}

func NewAttacher(in introspect.Introspector, pid int) *Attacher {
	return &Attacher{in: in, pid: pid, now: time.Now}
}

// Attached reports whether a primed handle is currently held.
func (a *Attacher) Attached() bool { return a.attached }

// Attach resolves the target and primes the CPU baseline. A reading
// taken on the same call would be meaningless, so the caller reports
// nothing until the next Sample.
func (a *Attacher) Attach() error {
	r, err := a.in.Read(a.pid)
	if err != nil {
		return err
	}
	a.baselineCPU = r.CPUTime
	a.baselineAt = a.now()
	a.attached = true
	return nil
}

// Sample reads the target and reports RSS plus the CPU consumed since
// the previous read, as percent of one core. A cumulative CPU time below
// the baseline means the pid was reused by an unrelated process; the
// delta clamps to zero and the read itself re-primes the baseline. Any
// read failure invalidates the handle and the caller must Attach again.
func (a *Attacher) Sample() (rssKb uint64, cpuPct float64, err error) {
	r, err := a.in.Read(a.pid)
	if err != nil {
		a.attached = false
		return 0, 0, err
	}
	now := a.now()
	elapsed := now.Sub(a.baselineAt).Seconds()
	if elapsed > 0 && r.CPUTime >= a.baselineCPU {
		cpuPct = (r.CPUTime - a.baselineCPU) / elapsed * 100
	}
	a.baselineCPU = r.CPUTime
	a.baselineAt = now
	return r.RSS.KiB(), cpuPct, nil
}

// backoff is a capped exponential delay for attach retries. One policy
// covers the whole session: the initial grace window sleeps these
// delays, and past the cap the tick interval itself paces retries.
type backoff struct {
	next, max time.Duration
}

func newBackoff(initial, max time.Duration) *backoff {
	return &backoff{next: initial, max: max}
}

func (b *backoff) Next() time.Duration {
	d := b.next
	b.next *= 2
	if b.next > b.max {
		b.next = b.max
	}
	return d
}
