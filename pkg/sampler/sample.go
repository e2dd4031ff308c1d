package sampler

import "strconv"

// Sample is one point in the emitted time series: wall-clock timestamp,
// resident memory in KiB, and CPU usage as percent of one core over the
// preceding interval (same definition as top/htop). Samples are produced
// in strict tick order and written exactly once.
type Sample struct {
	TsMs   uint64
	RSSKb  uint64
	CPUPct float64
}

// record renders the sample as a CSV record, cpu with exactly two
// decimal places.
func (s Sample) record() []string {
	return []string{
		strconv.FormatUint(s.TsMs, 10),
		strconv.FormatUint(s.RSSKb, 10),
		strconv.FormatFloat(s.CPUPct, 'f', 2, 64),
	}
}
