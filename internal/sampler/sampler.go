package sampler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SessionWriter is the slice of the persistence store the sampler needs.
type SessionWriter interface {
	SaveActivitySession(ctx context.Context, process, title string, start, end time.Time, durationSec int) error
	CleanupOldSessions(ctx context.Context, days int) (int64, error)
}

type Config struct {
	PollInterval      time.Duration
	MinSessionSeconds int
	RetentionDays     int
}

func (c *Config) applyDefaults() {
	if c.PollInterval < time.Second {
		c.PollInterval = 5 * time.Second
	}
	if c.MinSessionSeconds < 1 {
		c.MinSessionSeconds = 1
	}
	if c.RetentionDays <= 0 {
		c.RetentionDays = 90
	}
}

const cleanupEvery = 24 * time.Hour

// Sampler polls the foreground window on a dedicated goroutine and folds
// consecutive identical samples into activity sessions. It is the sole
// writer of activity sessions.
type Sampler struct {
	probe  ForegroundProbe
	writer SessionWriter
	log    *zap.SugaredLogger
	cfg    Config
	now    func() time.Time

	// tracking state, owned by the loop goroutine
	tracking    bool
	curProcess  string
	curTitle    string
	curStart    time.Time
	lastCleanup time.Time

	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
}

func New(probe ForegroundProbe, writer SessionWriter, log *zap.SugaredLogger, cfg Config) *Sampler {
	cfg.applyDefaults()
	return &Sampler{
		probe:  probe,
		writer: writer,
		log:    log,
		cfg:    cfg,
		now:    time.Now,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

func (s *Sampler) Start() {
	if s.started {
		return
	}
	s.started = true
	go s.loop()
}

// Stop wakes the tick wait, flushes any in-progress session and joins the
// loop. Bounded by one poll interval plus a persistence write.
func (s *Sampler) Stop() {
	if !s.started {
		return
	}
	close(s.stopCh)
	<-s.doneCh
}

func (s *Sampler) loop() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	s.lastCleanup = s.now()
	for {
		select {
		case <-ticker.C:
			s.tick()
		case <-s.stopCh:
			s.flush(s.now())
			return
		}
	}
}

func (s *Sampler) tick() {
	now := s.now()

	process, title, err := s.probe.Sample()
	if err != nil {
		// A lost sample: keep the current segment open and try again on
		// the next tick.
		s.log.Debugw("foreground probe failed", "error", err)
	} else {
		s.observe(process, title, now)
	}

	if now.Sub(s.lastCleanup) >= cleanupEvery {
		s.lastCleanup = now
		if removed, err := s.writer.CleanupOldSessions(context.Background(), s.cfg.RetentionDays); err != nil {
			s.log.Warnw("session cleanup failed", "error", err)
		} else if removed > 0 {
			s.log.Infow("session cleanup", "removed", removed, "retention_days", s.cfg.RetentionDays)
		}
	}
}

// observe advances the segmentation state machine by one sample. Sessions
// are segmented on any change of the (process, title) pair.
func (s *Sampler) observe(process, title string, now time.Time) {
	if !s.tracking {
		s.tracking = true
		s.curProcess = process
		s.curTitle = title
		s.curStart = now
		return
	}
	if s.curProcess == process && s.curTitle == title {
		return
	}
	s.emit(now)
	s.curProcess = process
	s.curTitle = title
	s.curStart = now
}

// flush emits the in-progress session, if any, and resets to idle.
func (s *Sampler) flush(now time.Time) {
	if !s.tracking {
		return
	}
	s.emit(now)
	s.tracking = false
}

func (s *Sampler) emit(end time.Time) {
	durationSec := int(end.Sub(s.curStart).Seconds())
	if durationSec < s.cfg.MinSessionSeconds {
		return
	}
	err := s.writer.SaveActivitySession(context.Background(), s.curProcess, s.curTitle, s.curStart, end, durationSec)
	if err != nil {
		// Persistence failures lose this one session; the loop goes on.
		s.log.Warnw("persist activity session failed",
			"process", s.curProcess, "duration_s", durationSec, "error", err)
	}
}
