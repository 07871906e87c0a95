package updater

import (
	"fmt"
	"time"
)

// TimeoutError records that polling gave up before the server reported a
// terminal state. The server-side task keeps running regardless.
type TimeoutError struct {
	Elapsed time.Duration
}

func (e *TimeoutError) Error() string {
	elapsed := e.Elapsed.Round(time.Second)
	return fmt.Sprintf("this task has taken longer than expected (time elapsed: %02d:%02d)",
		int(elapsed.Minutes()), int(elapsed.Seconds())%60)
}
