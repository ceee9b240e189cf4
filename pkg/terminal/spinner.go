package terminal

import (
	"fmt"
	"sync"
	"time"
)

// SpinnerFrames are the default spinner animation frames.
var SpinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a one-line status. Unlike a one-shot spinner it can be
// started and stopped repeatedly. Without colour it stays silent.
type Spinner struct {
	w        *Writer
	message  string
	frames   []string
	interval time.Duration

	mu      sync.Mutex
	current int
	done    chan struct{}
	stopped chan struct{}
}

// NewSpinner creates a stopped spinner.
func NewSpinner(w *Writer, message string) *Spinner {
	return &Spinner{
		w:        w,
		message:  message,
		frames:   SpinnerFrames,
		interval: 80 * time.Millisecond,
	}
}

// SetMessage updates the spinner message.
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
}

// Running reports whether the animation is active.
func (s *Spinner) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done != nil
}

// Start begins the animation. Starting a running spinner is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return
	}
	s.done = make(chan struct{})
	s.stopped = make(chan struct{})
	go s.run(s.done, s.stopped, time.Now())
}

// Stop ends the animation and clears its line. Stopping a stopped spinner is a no-op.
func (s *Spinner) Stop() {
	s.mu.Lock()
	done, stopped := s.done, s.stopped
	s.done, s.stopped = nil, nil
	s.mu.Unlock()
	if done == nil {
		return
	}
	close(done)
	<-stopped
	if s.w.Color() {
		s.w.raw("\r\033[K")
	}
}

func (s *Spinner) run(done, stopped chan struct{}, start time.Time) {
	defer close(stopped)
	if !s.w.Color() {
		<-done
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.mu.Lock()
			frame := s.frames[s.current%len(s.frames)]
			msg := s.message
			s.current++
			s.mu.Unlock()

			elapsed := time.Since(start).Round(time.Second)
			s.w.raw(fmt.Sprintf("\r%s %s (%s)", s.w.infoStyle.Render(frame), msg, elapsed))
		}
	}
}
