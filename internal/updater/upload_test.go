package updater

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zrcheng1991/redfish-firmware-update-tool/internal/api"
	"github.com/zrcheng1991/redfish-firmware-update-tool/internal/progress"
)

// fakePusher drains the body like a real transport would and answers with
// a canned response.
type fakePusher struct {
	status int
	body   string
	header http.Header

	err error

	gotPath  string
	gotLen   int64
	gotType  string
	gotBytes int64
}

func (p *fakePusher) Push(path string, body io.Reader, length int64, contentType string) (*http.Response, error) {
	p.gotPath = path
	p.gotLen = length
	p.gotType = contentType
	n, err := io.Copy(io.Discard, body)
	if err != nil {
		return nil, err
	}
	p.gotBytes = n
	if p.err != nil {
		return nil, p.err
	}
	header := p.header
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{
		StatusCode: p.status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(p.body)),
	}, nil
}

type closeRecorder struct {
	io.Reader
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func simplePlan(size int) (*UploadPlan, *closeRecorder) {
	body := &closeRecorder{Reader: bytes.NewReader(make([]byte, size))}
	return &UploadPlan{
		Mode:        SimpleUpload,
		URI:         "/redfish/v1/UpdateService",
		Body:        body,
		Size:        int64(size),
		ContentType: "application/octet-stream",
	}, body
}

func TestExecuteUploadTaskIDFromBody(t *testing.T) {
	pusher := &fakePusher{status: http.StatusAccepted, body: `{"Id": "42", "Name": "Task 42"}`}
	plan, body := simplePlan(1024)
	state := progress.NewState(0)

	handle, err := ExecuteUpload(pusher, plan, state)
	require.NoError(t, err)

	assert.Equal(t, "42", handle.ID)
	assert.Equal(t, "/redfish/v1/TaskService/Tasks/42", handle.StatusURL)
	assert.Equal(t, "/redfish/v1/UpdateService", pusher.gotPath)
	assert.Equal(t, int64(1024), pusher.gotLen)
	assert.Equal(t, "application/octet-stream", pusher.gotType)

	// The counting reader must have accounted for every byte sent.
	assert.Equal(t, int64(1024), pusher.gotBytes)
	assert.Equal(t, int64(1024), state.Current())
	assert.Equal(t, int64(1024), state.Total())
	assert.True(t, body.closed)
}

func TestExecuteUploadTaskIDFromLocation(t *testing.T) {
	header := http.Header{}
	header.Set("Location", "/redfish/v1/TaskService/Tasks/7")
	pusher := &fakePusher{status: http.StatusAccepted, body: "{}", header: header}
	plan, _ := simplePlan(16)

	handle, err := ExecuteUpload(pusher, plan, progress.NewState(0))
	require.NoError(t, err)

	assert.Equal(t, "7", handle.ID)
	assert.Equal(t, "/redfish/v1/TaskService/Tasks/7", handle.StatusURL)
}

func TestExecuteUploadNoTaskID(t *testing.T) {
	pusher := &fakePusher{status: http.StatusOK, body: "{}"}
	plan, body := simplePlan(16)

	_, err := ExecuteUpload(pusher, plan, progress.NewState(0))

	var protoErr *api.ProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.True(t, body.closed)
}

func TestExecuteUploadServerRejection(t *testing.T) {
	pusher := &fakePusher{
		status: http.StatusBadRequest,
		body:   `{"error": {"message": "Invalid image"}}`,
	}
	plan, body := simplePlan(16)

	_, err := ExecuteUpload(pusher, plan, progress.NewState(0))

	var transportErr *api.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, http.StatusBadRequest, transportErr.StatusCode)
	assert.Contains(t, transportErr.Error(), "Invalid image")
	assert.True(t, body.closed)
}

func TestExecuteUploadTransportError(t *testing.T) {
	boom := errors.New("connection reset by peer")
	pusher := &fakePusher{err: boom}
	plan, body := simplePlan(16)

	_, err := ExecuteUpload(pusher, plan, progress.NewState(0))

	assert.ErrorIs(t, err, boom)
	assert.True(t, body.closed)
}
