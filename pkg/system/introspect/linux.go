//go:build linux

package introspect

import (
	"fmt"
	"os"

	"github.com/benchkit/procsample/pkg/system/proc"
	"github.com/benchkit/procsample/pkg/types"
)

// procfs implements Introspector with /proc tick-delta accounting.
type procfs struct {
	clkTck int
}

// New returns the platform Introspector.
func New() Introspector {
	return &procfs{clkTck: proc.ClockTicks()}
}

func (p *procfs) Probe() Capability {
	if _, err := proc.FindProcMount(); err != nil {
		return Capability{Reason: fmt.Sprintf("procfs not mounted: %v", err)}
	}
	if _, _, err := proc.ReadProcCPU(os.Getpid()); err != nil {
		return Capability{Reason: fmt.Sprintf("cannot read own stat: %v", err)}
	}
	return Capability{Ready: true}
}

func (p *procfs) Alive(pid int) bool {
	return proc.Exists(pid)
}

func (p *procfs) Read(pid int) (Reading, error) {
	ut, st, err := proc.ReadProcCPU(pid)
	if err != nil {
		return Reading{}, err
	}
	rss, err := proc.ReadProcRSS(pid)
	if err != nil {
		return Reading{}, err
	}
	return Reading{
		RSS:     types.Bytes(rss),
		CPUTime: float64(ut+st) / float64(p.clkTck),
	}, nil
}

func (p *procfs) Enumerate() ([]Proc, error) {
	pids, err := proc.ListPIDs()
	if err != nil {
		return nil, err
	}
	procs := make([]Proc, 0, len(pids))
	for _, pid := range pids {
		name, err := proc.ReadComm(pid)
		if err != nil {
			// exited between the directory listing and the comm read
			continue
		}
		procs = append(procs, Proc{PID: pid, Name: name})
	}
	return procs, nil
}
