package updater

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path"

	"github.com/zrcheng1991/redfish-firmware-update-tool/internal/api"
	"github.com/zrcheng1991/redfish-firmware-update-tool/internal/progress"
)

// Pusher sends a prepared firmware payload. Satisfied by *api.Client.
type Pusher interface {
	Push(path string, body io.Reader, length int64, contentType string) (*http.Response, error)
}

// TaskHandle addresses the asynchronous update task the server created for
// an accepted upload. Never constructed with an empty ID; a response that
// yields no id is an upload failure, not a degenerate handle.
type TaskHandle struct {
	ID        string
	StatusURL string
}

// ExecuteUpload streams the plan's body through a counting reader and
// extracts the task handle from the server's response. No retries: the
// payload is large and the service guarantees nothing about partial
// retransmission. The plan body is closed on every path.
func ExecuteUpload(client Pusher, plan *UploadPlan, state *progress.State) (*TaskHandle, error) {
	defer plan.Body.Close()
	state.SetTotal(plan.Size)

	res, err := client.Push(plan.URI, NewCountingReader(plan.Body, state), plan.Size, plan.ContentType)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK &&
		res.StatusCode != http.StatusCreated &&
		res.StatusCode != http.StatusAccepted {
		detail, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, &api.TransportError{
			Op:         "upload",
			StatusCode: res.StatusCode,
			Err:        errors.New(string(detail)),
		}
	}

	var accepted struct {
		ID string `json:"Id"`
	}
	raw, _ := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	_ = json.Unmarshal(raw, &accepted)

	// Some services return the task in the body, others only point at it
	// via the Location header.
	location := res.Header.Get("Location")
	switch {
	case accepted.ID != "":
		return &TaskHandle{ID: accepted.ID, StatusURL: api.TaskPath(accepted.ID)}, nil
	case location != "":
		return &TaskHandle{ID: path.Base(location), StatusURL: location}, nil
	default:
		return nil, &api.ProtocolError{
			Resource: plan.URI,
			Reason:   "upload accepted but the response carries no task id",
		}
	}
}
