// Package updater implements the firmware update workflow core: building
// the upload payload, streaming it with progress accounting, and tracking
// the resulting task to a terminal state.
package updater

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"

	"github.com/zrcheng1991/redfish-firmware-update-tool/internal/api"
)

// UploadMode selects the push protocol variant.
type UploadMode int

const (
	// SimpleUpload streams the raw image to the push URI.
	SimpleUpload UploadMode = iota
	// MultipartUpload wraps the image in a multipart form with an
	// UpdateParameters target list.
	MultipartUpload
)

// UploadPlan is a fully prepared firmware upload. Built once per run and
// consumed exactly once by the executor.
type UploadPlan struct {
	Mode        UploadMode
	URI         string
	Body        io.ReadCloser
	Size        int64
	ContentType string
	Targets     []string
}

// BuildPlan prepares the upload for the given capabilities. A non-empty
// target list selects multipart push; otherwise the image streams to the
// simple push URI. File problems surface here, before any network I/O.
func BuildPlan(caps *api.Capabilities, filePath string, targets []string) (*UploadPlan, error) {
	if len(targets) == 0 {
		return buildSimplePlan(caps.PushURI, filePath)
	}
	if !caps.SupportsMultipart() {
		return nil, fmt.Errorf("targets selected but the update service does not support multipart push")
	}
	return buildMultipartPlan(caps.MultipartURI, filePath, targets)
}

func buildSimplePlan(uri, filePath string) (*UploadPlan, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open firmware file: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat firmware file: %w", err)
	}
	return &UploadPlan{
		Mode:        SimpleUpload,
		URI:         uri,
		Body:        f,
		Size:        st.Size(),
		ContentType: "application/octet-stream",
	}, nil
}

// buildMultipartPlan encodes the whole form up front. The declared size
// must cover boundaries and part headers, not just the file bytes, so the
// progress bar reaches 100% only when the request body really has been
// sent in full.
func buildMultipartPlan(uri, filePath string, targets []string) (*UploadPlan, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open firmware file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	params := textproto.MIMEHeader{}
	params.Set("Content-Disposition", `form-data; name="UpdateParameters"`)
	params.Set("Content-Type", "application/json")
	part, err := form.CreatePart(params)
	if err != nil {
		return nil, fmt.Errorf("encode update parameters: %w", err)
	}
	if err := json.NewEncoder(part).Encode(struct {
		Targets []string `json:"Targets"`
	}{Targets: targets}); err != nil {
		return nil, fmt.Errorf("encode update parameters: %w", err)
	}

	file := textproto.MIMEHeader{}
	file.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="UpdateFile"; filename=%q`, filepath.Base(filePath)))
	file.Set("Content-Type", "application/octet-stream")
	part, err = form.CreatePart(file)
	if err != nil {
		return nil, fmt.Errorf("encode firmware part: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("read firmware file: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	return &UploadPlan{
		Mode:        MultipartUpload,
		URI:         uri,
		Body:        io.NopCloser(bytes.NewReader(buf.Bytes())),
		Size:        int64(buf.Len()),
		ContentType: form.FormDataContentType(),
		Targets:     targets,
	}, nil
}
