// Package transfer simulates the progress of a file upload or download.
//
// A Simulator advances a percentage by a random increment on every tick until
// it reaches 100. It owns at most one ticking goroutine; starting, cancelling
// or failing a run always stops the previous goroutine before returning.
package transfer

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// Profile describes the pace of a simulated transfer.
type Profile struct {
	// Delay before the first tick.
	Delay time.Duration
	// Interval between ticks.
	Interval time.Duration
	// MaxIncrement bounds the random progress added per tick.
	MaxIncrement float64
}

var (
	// DownloadProfile ticks immediately every 500ms by up to 15%.
	DownloadProfile = Profile{Delay: 0, Interval: 500 * time.Millisecond, MaxIncrement: 15}
	// UploadProfile waits 500ms, then ticks every 300ms by up to 10%.
	UploadProfile = Profile{Delay: 500 * time.Millisecond, Interval: 300 * time.Millisecond, MaxIncrement: 10}
)

// Status is a snapshot of a simulator.
type Status struct {
	Progress float64
	Running  bool
	Complete bool
	Err      error
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithRand replaces the random source. fn must return values in [0, 1).
func WithRand(fn func() float64) Option {
	return func(s *Simulator) { s.rand = fn }
}

// OnProgress registers a callback receiving every new progress value.
func OnProgress(fn func(float64)) Option {
	return func(s *Simulator) { s.onProgress = fn }
}

// OnComplete registers a callback invoked once per run when progress reaches 100.
func OnComplete(fn func()) Option {
	return func(s *Simulator) { s.onComplete = fn }
}

// Simulator drives one simulated transfer at a time. It is safe for
// concurrent use. Callbacks run on the simulator's goroutine. OnComplete runs
// after Done is closed and may call Start, Cancel, Fail or Retry; OnProgress
// must not call them synchronously.
type Simulator struct {
	profile    Profile
	rand       func() float64
	onProgress func(float64)
	onComplete func()

	// ctl serialises run transitions.
	ctl sync.Mutex

	mu     sync.Mutex
	status Status
	gen    uint64
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates an idle simulator.
func New(profile Profile, opts ...Option) *Simulator {
	s := &Simulator{
		profile: profile,
		rand:    rand.Float64,
	}
	for _, opt := range opts {
		opt(s)
	}

	idle := make(chan struct{})
	close(idle)
	s.done = idle
	return s
}

// Start begins a new run from 0%. An active run is cancelled first.
// Cancelling ctx has the same effect as Cancel.
func (s *Simulator) Start(ctx context.Context) {
	s.ctl.Lock()
	defer s.ctl.Unlock()

	s.stop()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.status = Status{Running: true}
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	go s.run(runCtx, gen, done)
}

// Cancel stops the current run and resets progress. It is a no-op on an idle
// simulator and safe to call repeatedly.
func (s *Simulator) Cancel() {
	s.ctl.Lock()
	defer s.ctl.Unlock()

	s.stop()

	s.mu.Lock()
	s.status = Status{}
	s.mu.Unlock()
}

// Fail stops the current run and records err. Progress is kept so the
// failure point stays visible.
func (s *Simulator) Fail(err error) {
	s.ctl.Lock()
	defer s.ctl.Unlock()

	s.stop()

	s.mu.Lock()
	s.status.Running = false
	s.status.Complete = false
	s.status.Err = err
	s.mu.Unlock()
}

// Retry clears any error and starts again from 0%.
func (s *Simulator) Retry(ctx context.Context) {
	s.Start(ctx)
}

// Status returns a snapshot of the current state.
func (s *Simulator) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Done returns a channel closed when the current run ends for any reason.
// On an idle simulator the channel is already closed.
func (s *Simulator) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// stop supersedes the current run, cancels its goroutine and waits for it.
// Callers hold ctl.
func (s *Simulator) stop() {
	s.mu.Lock()
	s.gen++
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	<-done
}

func (s *Simulator) run(ctx context.Context, gen uint64, done chan struct{}) {
	closed := false
	defer func() {
		if !closed {
			close(done)
		}
	}()

	if s.profile.Delay > 0 {
		timer := time.NewTimer(s.profile.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.abandon(gen)
			return
		case <-timer.C:
		}
	}

	ticker := time.NewTicker(s.profile.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.abandon(gen)
			return
		case <-ticker.C:
		}

		progress, complete, release, ok := s.advance(gen)
		if !ok {
			return
		}
		if s.onProgress != nil {
			s.onProgress(progress)
		}
		if complete {
			release()
			close(done)
			closed = true
			if s.onComplete != nil {
				s.onComplete()
			}
			return
		}
	}
}

// advance adds one random increment. ok is false when the run was superseded.
// A completing run hands back its context's cancel func as release.
func (s *Simulator) advance(gen uint64) (progress float64, complete bool, release context.CancelFunc, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen {
		return 0, false, nil, false
	}

	progress = s.status.Progress + s.rand()*s.profile.MaxIncrement
	release = func() {}
	if progress >= 100 {
		progress = 100
		complete = true
		s.status.Complete = true
		s.status.Running = false
		if s.cancel != nil {
			release, s.cancel = s.cancel, nil
		}
	}
	s.status.Progress = progress
	return progress, complete, release, true
}

// abandon resets state after the caller's context ended the run.
func (s *Simulator) abandon(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen == gen {
		s.status = Status{}
	}
}
