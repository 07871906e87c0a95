// Package commands wires the workflow packages to the console: it prints
// the human-readable narration, owns the interactive prompts and progress
// reporters, and maps outcomes onto the process result.
package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/zrcheng1991/redfish-firmware-update-tool/internal/api"
	"github.com/zrcheng1991/redfish-firmware-update-tool/internal/progress"
	"github.com/zrcheng1991/redfish-firmware-update-tool/internal/updater"
)

// Outcome sentinels. The human-readable summary has already been printed
// when one of these comes back; the caller only converts it to an exit
// code.
var (
	ErrUpdateFailed  = errors.New("firmware update failed")
	ErrIndeterminate = errors.New("update status could not be determined")
	ErrUnsupported   = errors.New("not an update service task")
)

// Reported tells whether err is an outcome the command already explained
// on the console.
func Reported(err error) bool {
	return errors.Is(err, ErrUpdateFailed) ||
		errors.Is(err, ErrIndeterminate) ||
		errors.Is(err, ErrUnsupported)
}

// Update pushes a firmware image to the BMC and tracks the update task it
// spawns. Tracking starts only once a task handle has actually been
// confirmed; a failed upload aborts the whole run.
func Update(client *api.Client, filePath string) error {
	caps, err := client.Capabilities()
	if err != nil {
		return err
	}

	var targets []string
	if caps.SupportsMultipart() {
		fmt.Println("Update Service on this server supports Multipart HTTP PUSH.")
		members, err := client.FirmwareInventory()
		if err != nil {
			return err
		}
		targets = updater.SelectTargets(os.Stdin, os.Stdout, members)
		if len(targets) == 0 {
			fmt.Println("Continuing to update with the default method.")
			fmt.Println()
		}
	}

	plan, err := updater.BuildPlan(caps, filePath, targets)
	if err != nil {
		return err
	}

	state := progress.NewState(plan.Size)
	reporter := progress.NewReporter(state, "Posting firmware", true)
	reporter.Start()
	handle, err := updater.ExecuteUpload(client, plan, state)
	reporter.Stop()
	if err != nil {
		return err
	}

	fmt.Printf("Finished posting the firmware! (Task Id = %s)\n", handle.ID)
	return Track(client, *handle)
}
