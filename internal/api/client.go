// Package api provides a thin client for the Redfish update workflow:
// session setup, update-service capability discovery, firmware inventory
// enumeration, the streaming firmware POST and task status fetches.
package api

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/stmcginnis/gofish"
)

const (
	updateServicePath = "/redfish/v1/UpdateService"
	taskServicePath   = "/redfish/v1/TaskService/Tasks"

	// DefaultPollTimeout bounds every capability probe and status poll.
	DefaultPollTimeout = 3 * time.Second
)

// Options configures a BMC connection.
type Options struct {
	Host     string
	Port     int
	Username string
	Password string
	Insecure bool

	// Endpoint overrides the https://Host:Port base URL when set. Used by
	// tests to point at a local server.
	Endpoint string

	// PollTimeout bounds individual GET calls. Defaults to
	// DefaultPollTimeout. Firmware uploads are not subject to it.
	PollTimeout time.Duration
}

func (o Options) endpoint() string {
	if o.Endpoint != "" {
		return o.Endpoint
	}
	return fmt.Sprintf("https://%s:%d", o.Host, o.Port)
}

// Client wraps a gofish session plus a second, untimed HTTP client for the
// firmware upload (which can legitimately run far longer than a poll).
type Client struct {
	api      *gofish.APIClient
	upload   *http.Client
	base     *url.URL
	username string
	password string
}

// Dial connects and authenticates against the BMC's Redfish service.
func Dial(opts Options) (*Client, error) {
	if opts.PollTimeout == 0 {
		opts.PollTimeout = DefaultPollTimeout
	}

	endpoint := opts.endpoint()
	base, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}

	tlsConfig := &tls.Config{InsecureSkipVerify: opts.Insecure}
	poll := &http.Client{
		Timeout:   opts.PollTimeout,
		Transport: &http.Transport{TLSClientConfig: tlsConfig},
	}

	apiClient, err := gofish.Connect(gofish.ClientConfig{
		Endpoint:   endpoint,
		Username:   opts.Username,
		Password:   opts.Password,
		BasicAuth:  true,
		Insecure:   opts.Insecure,
		HTTPClient: poll,
	})
	if err != nil {
		return nil, &TransportError{Op: "connect", Err: err}
	}
	slog.Debug("connected to redfish service", "endpoint", endpoint)

	return &Client{
		api:      apiClient,
		upload:   &http.Client{Transport: &http.Transport{TLSClientConfig: tlsConfig}},
		base:     base,
		username: opts.Username,
		password: opts.Password,
	}, nil
}

// Close ends the session.
func (c *Client) Close() {
	c.api.Logout()
}

// Capabilities describes what the update service offers.
type Capabilities struct {
	// PushURI is the simple octet-stream push target.
	PushURI string
	// MultipartURI is the multipart HTTP push target, empty when the
	// service does not advertise one.
	MultipartURI string
}

// SupportsMultipart reports whether multipart HTTP push is available.
func (caps Capabilities) SupportsMultipart() bool {
	return caps.MultipartURI != ""
}

// Capabilities fetches the update service resource and reports its push
// endpoints. Any failure here aborts the workflow; there is no upload
// without a reachable update service.
func (c *Client) Capabilities() (*Capabilities, error) {
	svc, err := c.api.Service.UpdateService()
	if err != nil {
		return nil, &TransportError{Op: "probe update service", Err: err}
	}

	caps := &Capabilities{
		PushURI:      svc.HTTPPushURI,
		MultipartURI: svc.MultipartHTTPPushURI,
	}
	if caps.PushURI == "" {
		// Older services accept the firmware POST on the service path
		// itself and don't publish HttpPushUri.
		caps.PushURI = updateServicePath
	}
	slog.Debug("update service capabilities",
		"push_uri", caps.PushURI, "multipart_uri", caps.MultipartURI)
	return caps, nil
}

// InventoryMember is one firmware component known to the service. Path is
// the member's @odata.id and doubles as the multipart update target
// identifier.
type InventoryMember struct {
	Path       string
	Name       string
	Version    string
	Updateable bool
}

// FirmwareInventory enumerates the firmware inventory collection.
func (c *Client) FirmwareInventory() ([]InventoryMember, error) {
	svc, err := c.api.Service.UpdateService()
	if err != nil {
		return nil, &TransportError{Op: "probe update service", Err: err}
	}
	invs, err := svc.FirmwareInventories()
	if err != nil {
		return nil, &TransportError{Op: "list firmware inventory", Err: err}
	}

	members := make([]InventoryMember, 0, len(invs))
	for _, inv := range invs {
		members = append(members, InventoryMember{
			Path:       inv.ODataID,
			Name:       inv.Name,
			Version:    inv.Version,
			Updateable: inv.Updateable,
		})
	}
	return members, nil
}

// Push POSTs a firmware payload to path. The declared length is set
// explicitly so the wire Content-Length matches the fully-prepared body
// even though the body is a custom counting stream.
func (c *Client) Push(path string, body io.Reader, length int64, contentType string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodPost, c.resolve(path), body)
	if err != nil {
		return nil, &TransportError{Op: "prepare upload", Err: err}
	}
	req.ContentLength = length
	req.Header.Set("Content-Type", contentType)
	req.SetBasicAuth(c.username, c.password)

	res, err := c.upload.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "upload", Err: err}
	}
	return res, nil
}

// FetchTask retrieves one observation of the task at location.
func (c *Client) FetchTask(location string) (*TaskSnapshot, error) {
	res, err := c.api.Get(location)
	if err != nil {
		return nil, &TransportError{Op: "fetch task", Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, &TransportError{Op: "fetch task", StatusCode: res.StatusCode}
	}

	var snap TaskSnapshot
	if err := json.NewDecoder(res.Body).Decode(&snap); err != nil {
		return nil, &ProtocolError{Resource: location, Reason: "malformed task resource: " + err.Error()}
	}
	return &snap, nil
}

// TaskPath returns the task resource path for a task id.
func TaskPath(id string) string {
	return taskServicePath + "/" + id
}

func (c *Client) resolve(path string) string {
	ref, err := url.Parse(path)
	if err != nil {
		return c.base.String() + path
	}
	return c.base.ResolveReference(ref).String()
}
