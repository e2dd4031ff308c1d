// Package introspect abstracts OS process introspection behind a small
// capability interface so the sampler core never depends on a platform.
//
// Two variants exist:
//   - linux: tick-delta accounting over /proc (pkg/system/proc)
//   - everything else: task-info-style accounting via gopsutil
//
// Probe runs once at session start and returns a tagged outcome; a
// Degraded capability means the host cannot answer per-pid memory/CPU
// queries at all, and the caller decides what to do with that (the
// session writes a header-only file and exits success).
package introspect

import "github.com/benchkit/procsample/pkg/types"

// Reading is one instantaneous measurement of a live process.
type Reading struct {
	// RSS is the resident set size.
	RSS types.Bytes
	// CPUTime is the cumulative CPU time consumed (user+system), in
	// seconds, since the process started. Callers difference two
	// readings to obtain a usage fraction; a single reading carries no
	// rate information on its own.
	CPUTime float64
}

// Proc is one process-table entry from Enumerate.
type Proc struct {
	PID  int
	Name string
}

// Capability is the result of the startup probe.
type Capability struct {
	Ready  bool
	Reason string // set when not Ready
}

// Introspector answers per-pid resource queries against the OS process
// table. The table is shared, read-only state that may change between
// any two calls: a pid returned by Enumerate may already be gone when
// Read is called, and callers handle that per entry.
type Introspector interface {
	// Probe checks whether process introspection works on this host.
	Probe() Capability
	// Alive reports whether pid currently exists. O(1), never faults
	// for a dead pid.
	Alive(pid int) bool
	// Read returns a snapshot for one live pid. It fails when the
	// process has exited or access is denied; the returned Reading is
	// then meaningless.
	Read(pid int) (Reading, error)
	// Enumerate lists all currently running processes.
	Enumerate() ([]Proc, error)
}
