//go:build !linux

package introspect

import (
	"fmt"
	"os"

	gproc "github.com/shirou/gopsutil/v4/process"

	"github.com/benchkit/procsample/pkg/types"
)

// taskinfo implements Introspector on non-Linux hosts via gopsutil,
// which uses task_info on darwin and the equivalent native interfaces
// elsewhere. Accounting is still cumulative CPU seconds, so the sampler
// core differences readings identically on every platform.
type taskinfo struct{}

// New returns the platform Introspector.
func New() Introspector {
	return taskinfo{}
}

func (taskinfo) Probe() Capability {
	p, err := gproc.NewProcess(int32(os.Getpid()))
	if err != nil {
		return Capability{Reason: fmt.Sprintf("cannot open own process: %v", err)}
	}
	if _, err := p.MemoryInfo(); err != nil {
		return Capability{Reason: fmt.Sprintf("cannot read own memory info: %v", err)}
	}
	return Capability{Ready: true}
}

func (taskinfo) Alive(pid int) bool {
	ok, err := gproc.PidExists(int32(pid))
	return err == nil && ok
}

func (taskinfo) Read(pid int) (Reading, error) {
	p, err := gproc.NewProcess(int32(pid))
	if err != nil {
		return Reading{}, err
	}
	mi, err := p.MemoryInfo()
	if err != nil {
		return Reading{}, err
	}
	ts, err := p.Times()
	if err != nil {
		return Reading{}, err
	}
	return Reading{
		RSS:     types.Bytes(mi.RSS),
		CPUTime: ts.User + ts.System,
	}, nil
}

func (taskinfo) Enumerate() ([]Proc, error) {
	all, err := gproc.Processes()
	if err != nil {
		return nil, err
	}
	procs := make([]Proc, 0, len(all))
	for _, p := range all {
		name, err := p.Name()
		if err != nil {
			// exited between listing and query
			continue
		}
		procs = append(procs, Proc{PID: int(p.Pid), Name: name})
	}
	return procs, nil
}
