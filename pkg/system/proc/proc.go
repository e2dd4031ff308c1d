//go:build linux

// Package proc provides lightweight, zero-dependency process readers on
// Linux: per-PID CPU time, resident set size, command name, pid existence
// and process-table listing. It backs the linux introspection variant; the
// sampler core never touches /proc directly.
package proc

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ClockTicks returns the number of jiffies (clock ticks) per second.
// It first checks the env var CLK_TCK (useful for testing), otherwise
// falls back to 100 (common default).
//
// Note: On real systems, the authoritative way is `sysconf(_SC_CLK_TCK)`,
// but calling that requires cgo. For portability in a pure-Go binary,
// this simplified approach is acceptable.
func ClockTicks() int {
	v, _ := strconv.Atoi(os.Getenv("CLK_TCK"))
	if v > 0 {
		return v
	}
	return 100
}

// PageSize returns the system memory page size in bytes.
// Like ClockTicks, it first checks an env override (PAGE_SIZE)
// to ease testing, then falls back to os.Getpagesize().
func PageSize() int {
	if ps := os.Getenv("PAGE_SIZE"); ps != "" {
		if v, _ := strconv.Atoi(ps); v > 0 {
			return v
		}
	}
	return os.Getpagesize()
}

// Exists reports whether a given PID currently exists in /proc.
// It simply checks if /proc/<pid> is a valid directory and never
// faults for a dead pid.
func Exists(pid int) bool {
	_, err := os.Stat(fmt.Sprintf("/proc/%d", pid))
	return err == nil
}

// ReadProcCPU parses /proc/<pid>/stat and returns the cumulative CPU
// jiffies spent in user mode (utime, 14th field) and kernel mode
// (stime, 15th field). Both counters are monotonic for one process
// incarnation; a pid reused by a new process restarts them.
//
// The comm (2nd field) is in parens and may contain spaces, so all
// indexing is relative to the last ") " delimiter.
func ReadProcCPU(pid int) (utime, stime uint64, err error) {
	f, e := os.Open(fmt.Sprintf("/proc/%d/stat", pid))
	if e != nil {
		return 0, 0, e
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		return 0, 0, ErrNoStat
	}
	line := sc.Text()

	i := strings.LastIndex(line, ") ")
	if i < 0 {
		return 0, 0, ErrNoStat
	}
	fields := strings.Fields(line[i+2:])

	// utime (14th overall) => fields[11]
	// stime (15th overall) => fields[12]
	if len(fields) < 13 {
		return 0, 0, ErrShortStat
	}
	utime, _ = strconv.ParseUint(fields[11], 10, 64)
	stime, _ = strconv.ParseUint(fields[12], 10, 64)
	return utime, stime, nil
}

// ReadProcRSS returns the Resident Set Size (RSS) in bytes for a PID.
// It prefers smaps_rollup (aggregated, since kernel 4.14) for accuracy.
// If unavailable, falls back to statm's resident page count.
//
// Returns error if neither source is available.
func ReadProcRSS(pid int) (uint64, error) {
	if f, err := os.Open(fmt.Sprintf("/proc/%d/smaps_rollup", pid)); err == nil {
		defer f.Close()
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			if strings.HasPrefix(sc.Text(), "Rss:") {
				fs := strings.Fields(sc.Text())
				if len(fs) >= 2 {
					kb, _ := strconv.ParseUint(fs[1], 10, 64)
					return kb * 1024, nil
				}
			}
		}
	}
	// Fallback: statm field 2 × page size
	if b, err := os.ReadFile(fmt.Sprintf("/proc/%d/statm", pid)); err == nil {
		fs := strings.Fields(string(b))
		if len(fs) >= 2 {
			pages, _ := strconv.ParseUint(fs[1], 10, 64)
			return pages * uint64(PageSize()), nil
		}
	}
	return 0, ErrNoRSS
}

// ReadComm returns the command name of a PID from /proc/<pid>/comm.
// The kernel truncates comm to 15 characters; prefix matching against
// it must account for that.
func ReadComm(pid int) (string, error) {
	b, err := os.ReadFile(fmt.Sprintf("/proc/%d/comm", pid))
	if err != nil {
		return "", err
	}
	name := strings.TrimSpace(string(b))
	if name == "" {
		return "", ErrNoComm
	}
	return name, nil
}

// ListPIDs returns the pids of all currently running processes by
// listing the numeric entries of /proc. The snapshot is inherently racy:
// any returned pid may be gone before the caller queries it.
func ListPIDs() ([]int, error) {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil, err
	}
	pids := make([]int, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(e.Name())
		if err != nil || pid <= 0 {
			continue
		}
		pids = append(pids, pid)
	}
	return pids, nil
}
