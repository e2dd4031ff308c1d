package sampler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/benchkit/procsample/pkg/system/introspect"
	"github.com/benchkit/procsample/pkg/types"
)

// Mode selects how the target descriptor is interpreted.
type Mode int

const (
	// Single samples one explicit pid.
	Single Mode = iota
	// Family aggregates every live process whose name matches a prefix.
	Family
)

func (m Mode) String() string {
	switch m {
	case Single:
		return "single"
	case Family:
		return "family"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode parses the external mode selector.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "single":
		return Single, nil
	case "family":
		return Family, nil
	default:
		return 0, fmt.Errorf("sampler: unknown mode %q (want single or family)", s)
	}
}

const (
	// DefaultInterval is the tick interval when none is configured.
	DefaultInterval = 200 * time.Millisecond

	// attachGrace bounds the initial attach phase: the target may have
	// just been started by the caller and not exist yet. Past the
	// window, resolution continues best-effort once per tick.
	attachGrace      = 2 * time.Second
	attachBackoffMin = 25 * time.Millisecond
	attachBackoffMax = 400 * time.Millisecond
)

// Config is the run-scoped session description.
type Config struct {
	// LivenessPID gates the session lifetime: the instant this pid is
	// not alive, the session ends. Required.
	LivenessPID int
	// TargetPID is the pid to measure in Single mode. Defaults to
	// LivenessPID.
	TargetPID int
	// NamePrefix identifies the worker family in Family mode.
	NamePrefix string
	Mode       Mode
	// OutPath is the destination CSV file. Required.
	OutPath string
	// Interval between ticks. Defaults to DefaultInterval.
	Interval time.Duration
}

// Session owns one sampling run: the output sink, the attachment state
// and the loop. It is single-threaded; the only suspension point is the
// inter-tick wait, where both cancellation and the tick are observed.
type Session struct {
	cfg Config
	in  introspect.Introspector
	log *slog.Logger

	samples int
	peakRSS types.Bytes
}

// New validates cfg and binds it to an introspector. log may be nil.
func New(cfg Config, in introspect.Introspector, log *slog.Logger) (*Session, error) {
	if cfg.LivenessPID <= 0 {
		return nil, errors.New("sampler: liveness pid required")
	}
	if cfg.OutPath == "" {
		return nil, errors.New("sampler: output path required")
	}
	switch cfg.Mode {
	case Single:
		if cfg.TargetPID == 0 {
			cfg.TargetPID = cfg.LivenessPID
		}
	case Family:
		if cfg.NamePrefix == "" {
			return nil, errors.New("sampler: name prefix required in family mode")
		}
	default:
		return nil, fmt.Errorf("sampler: unknown mode %d", int(cfg.Mode))
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if log == nil {
		log = slog.Default()
	}
	return &Session{cfg: cfg, in: in, log: log}, nil
}

// Samples returns the number of rows written. Valid after Run.
func (s *Session) Samples() int { return s.samples }

// PeakRSS returns the largest resident set observed. Valid after Run.
func (s *Session) PeakRSS() types.Bytes { return s.peakRSS }

// Run executes the session until the liveness pid dies or ctx is
// cancelled; both are normal exits and flush the sink. A per-tick
// measurement failure never terminates the session — the tick is skipped
// and recovery is attempted on the next one. An error is returned only
// for irrecoverable setup failures: the sink cannot be created or
// written.
func (s *Session) Run(ctx context.Context) error {
	if dir := filepath.Dir(s.cfg.OutPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("sampler: create output dir: %w", err)
		}
	}
	f, err := os.Create(s.cfg.OutPath)
	if err != nil {
		return fmt.Errorf("sampler: create output: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	w := NewWriter(f)
	if err := w.Header(); err != nil {
		return fmt.Errorf("sampler: write header: %w", err)
	}

	if c := s.in.Probe(); !c.Ready {
		s.log.Warn("process introspection unavailable, wrote header-only file",
			"reason", c.Reason, "out", s.cfg.OutPath)
		return nil
	}

	var (
		att *Attacher
		agg *Aggregator
	)
	switch s.cfg.Mode {
	case Single:
		att = NewAttacher(s.in, s.cfg.TargetPID)
		if done := s.attachWithGrace(ctx, att); done {
			return nil
		}
	case Family:
		agg = NewAggregator(s.in, s.cfg.NamePrefix)
	}

	if !s.in.Alive(s.cfg.LivenessPID) {
		return nil
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("interrupted")
			return nil
		case <-ticker.C:
			if !s.in.Alive(s.cfg.LivenessPID) {
				return nil
			}

			var (
				rssKb  uint64
				cpuPct float64
			)
			if agg != nil {
				rssKb, cpuPct, err = agg.Sample()
				if err != nil {
					s.log.Debug("tick skipped", "err", err)
					continue
				}
			} else {
				if !att.Attached() {
					if err := att.Attach(); err != nil {
						s.log.Debug("target not attachable", "pid", s.cfg.TargetPID, "err", err)
					}
					// Either the attach failed or the baseline was
					// just primed; nothing trustworthy to report.
					continue
				}
				rssKb, cpuPct, err = att.Sample()
				if err != nil {
					s.log.Debug("tick skipped", "pid", s.cfg.TargetPID, "err", err)
					continue
				}
			}

			smp := Sample{
				TsMs:   uint64(time.Now().UnixMilli()),
				RSSKb:  rssKb,
				CPUPct: cpuPct,
			}
			if err := w.Write(smp); err != nil {
				return fmt.Errorf("sampler: write sample: %w", err)
			}
			s.samples++
			if rb := types.Bytes(rssKb * 1024); rb > s.peakRSS {
				s.peakRSS = rb
			}
		}
	}
}

// attachWithGrace retries the initial resolution with capped back-off
// for up to attachGrace. Not attaching within the window is not a
// failure: the loop keeps resolving once per tick until liveness loss.
// Returns true when the session should end (cancelled or liveness lost).
func (s *Session) attachWithGrace(ctx context.Context, att *Attacher) (done bool) {
	bo := newBackoff(attachBackoffMin, attachBackoffMax)
	deadline := time.Now().Add(attachGrace)
	for {
		if err := att.Attach(); err == nil {
			return false
		}
		if !s.in.Alive(s.cfg.LivenessPID) {
			return true
		}
		if time.Now().After(deadline) {
			s.log.Debug("attach grace elapsed, continuing best-effort", "pid", s.cfg.TargetPID)
			return false
		}
		select {
		case <-ctx.Done():
			return true
		case <-time.After(bo.Next()):
		}
	}
}
