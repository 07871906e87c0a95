package updater

import (
	"log/slog"
	"time"

	"github.com/stmcginnis/gofish/redfish"

	"github.com/zrcheng1991/redfish-firmware-update-tool/internal/api"
	"github.com/zrcheng1991/redfish-firmware-update-tool/internal/progress"
)

// TaskFetcher retrieves task observations. Satisfied by *api.Client.
type TaskFetcher interface {
	FetchTask(location string) (*api.TaskSnapshot, error)
}

// Outcome classifies how tracking ended.
type Outcome int

const (
	// OutcomeCompleted is terminal success.
	OutcomeCompleted Outcome = iota
	// OutcomeFailed is terminal failure reported by the server.
	OutcomeFailed
	// OutcomeIndeterminate means polling gave up (error or timeout)
	// while the server still reported the task as running.
	OutcomeIndeterminate
	// OutcomeUnsupported means the addressed task is not an update task
	// at all. Terminal, but not an update failure.
	OutcomeUnsupported
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "Completed"
	case OutcomeFailed:
		return "Failed"
	case OutcomeIndeterminate:
		return "Indeterminate"
	case OutcomeUnsupported:
		return "Unsupported"
	}
	return "Unknown"
}

// TrackResult is the tracker's final word on a task.
type TrackResult struct {
	Outcome Outcome
	// Err is the exception recorded while polling (fetch failure or
	// timeout), when any.
	Err error
	// Critical carries the critical-severity server messages from the
	// final snapshot on failure.
	Critical []string
	// Final is the last snapshot observed, nil when the first fetch
	// already failed.
	Final *api.TaskSnapshot
}

// Polling defaults.
const (
	SettleDelay  = 1 * time.Second
	PollInterval = 5 * time.Second
	MaxTrackTime = 600 * time.Second
)

// Tracker polls an update task until it reaches a terminal state, updating
// the shared progress state from the server-reported percentage.
type Tracker struct {
	Client   TaskFetcher
	Progress *progress.State

	Settle   time.Duration
	Interval time.Duration
	MaxWait  time.Duration

	// OnPollStart fires once, just before the polling loop begins, so
	// the caller can bring up its progress indicator only for tasks that
	// are actually running.
	OnPollStart func()

	now   func() time.Time
	sleep func(time.Duration)
}

// NewTracker returns a tracker with the default cadence.
func NewTracker(client TaskFetcher, state *progress.State) *Tracker {
	return &Tracker{
		Client:   client,
		Progress: state,
		Settle:   SettleDelay,
		Interval: PollInterval,
		MaxWait:  MaxTrackTime,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// Track drives the polling state machine for the task behind handle.
func (t *Tracker) Track(handle TaskHandle) TrackResult {
	snap, err := t.Client.FetchTask(handle.StatusURL)
	if err != nil {
		return TrackResult{Outcome: OutcomeFailed, Err: err}
	}
	if !snap.IsUpdateTask() {
		return TrackResult{Outcome: OutcomeUnsupported, Final: snap}
	}

	var recorded error
	if snap.Running() {
		if t.OnPollStart != nil {
			t.OnPollStart()
		}
		started := t.now()
		t.sleep(t.Settle)

		for {
			next, err := t.Client.FetchTask(handle.StatusURL)
			if err != nil {
				recorded = err
				break
			}
			snap = next // each snapshot supersedes the previous one

			if pct := snap.PercentComplete; pct != nil {
				t.Progress.Set(int64(*pct))
			}
			slog.Debug("task polled", "id", snap.ID,
				"state", snap.State, "status", snap.Status)

			if snap.Ended() {
				break
			}
			if elapsed := t.now().Sub(started); elapsed > t.MaxWait {
				recorded = &TimeoutError{Elapsed: elapsed}
				break
			}
			t.sleep(t.Interval)
		}
	}

	switch {
	case snap.Completed():
		t.Progress.Set(100)
		return TrackResult{Outcome: OutcomeCompleted, Final: snap}
	case snap.State == redfish.RunningTaskState:
		return TrackResult{Outcome: OutcomeIndeterminate, Err: recorded, Final: snap}
	default:
		return TrackResult{
			Outcome:  OutcomeFailed,
			Err:      recorded,
			Critical: snap.CriticalMessages(),
			Final:    snap,
		}
	}
}
