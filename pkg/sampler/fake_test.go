package sampler

import (
	"errors"
	"sort"

	"github.com/benchkit/procsample/pkg/system/introspect"
	"github.com/benchkit/procsample/pkg/types"
)

var errGone = errors.New("fake: no such process")

type fakeProc struct {
	name string
	rss  types.Bytes
	cpu  float64 // cumulative seconds
}

// fakeIntrospector is a deterministic in-memory process table. Hooks
// override individual operations per test; the session loop is
// single-threaded, so no locking is needed.
type fakeIntrospector struct {
	ready  bool
	reason string
	procs  map[int]fakeProc

	enumErr   error
	aliveHook func(pid int) bool
	readHook  func(pid int) (introspect.Reading, error)
}

func newFake() *fakeIntrospector {
	return &fakeIntrospector{ready: true, procs: make(map[int]fakeProc)}
}

func (f *fakeIntrospector) add(pid int, name string, rssKb uint64, cpu float64) {
	f.procs[pid] = fakeProc{name: name, rss: types.Bytes(rssKb * 1024), cpu: cpu}
}

func (f *fakeIntrospector) setCPU(pid int, cpu float64) {
	p := f.procs[pid]
	p.cpu = cpu
	f.procs[pid] = p
}

func (f *fakeIntrospector) remove(pid int) {
	delete(f.procs, pid)
}

func (f *fakeIntrospector) Probe() introspect.Capability {
	return introspect.Capability{Ready: f.ready, Reason: f.reason}
}

func (f *fakeIntrospector) Alive(pid int) bool {
	if f.aliveHook != nil {
		return f.aliveHook(pid)
	}
	_, ok := f.procs[pid]
	return ok
}

func (f *fakeIntrospector) Read(pid int) (introspect.Reading, error) {
	if f.readHook != nil {
		return f.readHook(pid)
	}
	p, ok := f.procs[pid]
	if !ok {
		return introspect.Reading{}, errGone
	}
	return introspect.Reading{RSS: p.rss, CPUTime: p.cpu}, nil
}

func (f *fakeIntrospector) Enumerate() ([]introspect.Proc, error) {
	if f.enumErr != nil {
		return nil, f.enumErr
	}
	out := make([]introspect.Proc, 0, len(f.procs))
	for pid, p := range f.procs {
		out = append(out, introspect.Proc{PID: pid, Name: p.name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PID < out[j].PID })
	return out, nil
}
