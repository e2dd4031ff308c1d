//go:build linux

package proc

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// FindProcMount returns the mount point of the procfs filesystem,
// normally "/proc". It parses /proc/self/mountinfo; the line format has
// a " - fstype " separator and the mount point is field 5 of the
// pre-separator part (man 5 proc).
//
// Used by the startup capability probe: no procfs mount means the
// session can only degrade to header-only output.
func FindProcMount() (string, error) {
	f, err := os.Open("/proc/self/mountinfo")
	if err != nil {
		return "", fmt.Errorf("open mountinfo: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		sep := " - "
		i := strings.LastIndex(line, sep)
		if i < 0 {
			continue
		}
		fields := strings.Fields(line[i+len(sep):])
		if len(fields) < 1 || fields[0] != "proc" {
			continue
		}
		pre := strings.Fields(line[:i])
		if len(pre) < 5 {
			continue
		}
		return pre[4], nil
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("scan mountinfo: %w", err)
	}
	return "", ErrNoProcMount
}
