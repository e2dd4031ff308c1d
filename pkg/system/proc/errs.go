package proc

import "errors"

var (
	// ErrNoStat indicates that /proc/<pid>/stat was empty or malformed.
	ErrNoStat = errors.New("proc: malformed or empty stat")

	// ErrShortStat indicates that /proc/<pid>/stat had fewer fields than expected.
	ErrShortStat = errors.New("proc: short stat")

	// ErrNoRSS indicates that resident set size could not be determined
	// (neither smaps_rollup nor statm succeeded).
	ErrNoRSS = errors.New("proc: no rss")

	// ErrNoComm indicates that /proc/<pid>/comm was empty.
	ErrNoComm = errors.New("proc: no comm")

	// ErrNoProcMount indicates that no procfs mount was found in mountinfo.
	ErrNoProcMount = errors.New("proc: no procfs mount")
)
