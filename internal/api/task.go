package api

import (
	"net/http"
	"strings"

	"github.com/stmcginnis/gofish/common"
	"github.com/stmcginnis/gofish/redfish"
)

// TaskSnapshot is one observation of a task resource. Every poll produces
// a fresh snapshot; fields the server omitted stay nil rather than
// defaulting, so callers can tell "absent" from "zero".
type TaskSnapshot struct {
	ID              string            `json:"Id"`
	State           redfish.TaskState `json:"TaskState"`
	Status          common.Health     `json:"TaskStatus"`
	PercentComplete *int              `json:"PercentComplete"`
	EndTime         *string           `json:"EndTime"`
	Payload         TaskPayload       `json:"Payload"`
	Messages        []TaskMessage     `json:"Messages"`
}

// TaskPayload describes the request that spawned the task.
type TaskPayload struct {
	HTTPOperation string `json:"HttpOperation"`
	TargetURI     string `json:"TargetUri"`
}

// TaskMessage is a server-side message attached to a task.
type TaskMessage struct {
	Severity string `json:"Severity"`
	Message  string `json:"Message"`
}

// SeverityCritical marks messages surfaced on update failure.
const SeverityCritical = "Critical"

// IsUpdateTask reports whether the task was spawned by a firmware POST to
// the update service. Anything else is outside this tool's remit.
func (s *TaskSnapshot) IsUpdateTask() bool {
	return s.Payload.HTTPOperation == http.MethodPost &&
		strings.Contains(s.Payload.TargetURI, "UpdateService")
}

// Running reports whether the task is in a healthy running state.
func (s *TaskSnapshot) Running() bool {
	return s.State == redfish.RunningTaskState && s.Status == common.OKHealth
}

// Completed reports whether the task finished successfully.
func (s *TaskSnapshot) Completed() bool {
	return s.State == redfish.CompletedTaskState && s.Status == common.OKHealth
}

// Ended reports whether the server stamped an end time on the task.
func (s *TaskSnapshot) Ended() bool {
	return s.EndTime != nil && *s.EndTime != ""
}

// CriticalMessages returns the text of every critical-severity message, in
// server order.
func (s *TaskSnapshot) CriticalMessages() []string {
	var out []string
	for _, m := range s.Messages {
		if m.Severity == SeverityCritical {
			out = append(out, m.Message)
		}
	}
	return out
}
