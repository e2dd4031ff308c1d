package sampler

import (
	"encoding/csv"
	"io"
)

var header = []string{"ts_ms", "rss_kb", "cpu_pct"}

// Writer is the append-only sample sink. Every row is flushed to the
// underlying writer immediately, so a forcibly killed session keeps every
// sample written up to the kill and never leaves a partial line.
type Writer struct {
	csv *csv.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// Header writes the fixed header line. It is written unconditionally at
// session start, even if zero samples ever follow: a header-only file
// means "no data", not failure.
func (w *Writer) Header() error {
	if err := w.csv.Write(header); err != nil {
		return err
	}
	w.csv.Flush()
	return w.csv.Error()
}

// Write appends one sample row and flushes it.
func (w *Writer) Write(s Sample) error {
	if err := w.csv.Write(s.record()); err != nil {
		return err
	}
	w.csv.Flush()
	return w.csv.Error()
}
