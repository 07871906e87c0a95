package updater

import (
	"io"

	"github.com/zrcheng1991/redfish-firmware-update-tool/internal/progress"
)

// CountingReader reports every byte read from the wrapped reader to a
// progress state. The HTTP transport pulling the request body is the only
// reader, so the state's single-writer rule holds.
type CountingReader struct {
	r     io.Reader
	state *progress.State
}

// NewCountingReader wraps r.
func NewCountingReader(r io.Reader, state *progress.State) *CountingReader {
	return &CountingReader{r: r, state: state}
}

func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.state.Add(int64(n))
	}
	return n, err
}
