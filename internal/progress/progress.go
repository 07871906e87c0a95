// Package progress implements the shared progress state written by a
// long-running operation and a background reporter that keeps the terminal
// indicator fresh while the operation blocks on I/O.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// RefreshInterval is how often the reporter redraws the indicator,
// independent of how often the owning operation publishes new values.
const RefreshInterval = 500 * time.Millisecond

// State is the single piece of mutable state shared between an operation
// and its reporter. The operation is the sole writer of current/total; the
// reporter only reads. done transitions false->true exactly once.
type State struct {
	current atomic.Int64
	total   atomic.Int64
	done    atomic.Bool
}

// NewState returns a State with the given total. A zero total renders as
// 0% until the operation publishes one.
func NewState(total int64) *State {
	s := &State{}
	s.total.Store(total)
	return s
}

// Add advances the current position by n bytes.
func (s *State) Add(n int64) { s.current.Add(n) }

// Set replaces the current position.
func (s *State) Set(n int64) { s.current.Store(n) }

// SetTotal replaces the total.
func (s *State) SetTotal(n int64) { s.total.Store(n) }

// Current returns the current position.
func (s *State) Current() int64 { return s.current.Load() }

// Total returns the total.
func (s *State) Total() int64 { return s.total.Load() }

// Finish marks the operation done. Safe to call more than once; only the
// first call flips the flag.
func (s *State) Finish() { s.done.CompareAndSwap(false, true) }

// Done reports whether the owning operation has finished.
func (s *State) Done() bool { return s.done.Load() }

// Fraction returns completion in [0, 1].
func (s *State) Fraction() float64 {
	total := s.Total()
	if total <= 0 {
		return 0
	}
	f := float64(s.Current()) / float64(total)
	if f > 1 {
		f = 1
	}
	return f
}

var descStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

// Reporter redraws a progress bar for a State on a fixed interval from a
// background goroutine. Stop joins the goroutine before returning, so no
// refresh outlives the operation on any exit path.
type Reporter struct {
	state     *State
	desc      string
	showBytes bool
	out       io.Writer
	bar       progress.Model
	started   time.Time
	stop      chan struct{}
	stopped   chan struct{}
}

// NewReporter builds a reporter for state. When showBytes is true the line
// includes humanized current/total byte counts, otherwise elapsed time.
func NewReporter(state *State, desc string, showBytes bool) *Reporter {
	return &Reporter{
		state:     state,
		desc:      desc,
		showBytes: showBytes,
		out:       os.Stdout,
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(50),
		),
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// SetOutput redirects rendering, used by tests.
func (r *Reporter) SetOutput(w io.Writer) { r.out = w }

// Start launches the refresh loop.
func (r *Reporter) Start() {
	r.started = time.Now()
	go func() {
		defer close(r.stopped)
		ticker := time.NewTicker(RefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-r.stop:
				return
			case <-ticker.C:
				if r.state.Done() {
					return
				}
				fmt.Fprintf(r.out, "\r%s", r.render())
			}
		}
	}()
}

// Stop finishes the state, joins the refresh goroutine and draws the final
// line. Safe to call only once per Start.
func (r *Reporter) Stop() {
	r.state.Finish()
	close(r.stop)
	<-r.stopped
	fmt.Fprintf(r.out, "\r%s\n", r.render())
}

func (r *Reporter) render() string {
	frac := r.state.Fraction()
	line := fmt.Sprintf("%s (%3.0f%%) %s",
		descStyle.Render(r.desc), frac*100, r.bar.ViewAs(frac))
	if r.showBytes {
		return fmt.Sprintf("%s %s/%s", line,
			humanize.IBytes(uint64(r.state.Current())),
			humanize.IBytes(uint64(r.state.Total())))
	}
	elapsed := time.Since(r.started).Round(time.Second)
	return fmt.Sprintf("%s [%02d:%02d]", line,
		int(elapsed.Minutes()), int(elapsed.Seconds())%60)
}
