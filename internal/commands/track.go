package commands

import (
	"fmt"

	"github.com/zrcheng1991/redfish-firmware-update-tool/internal/api"
	"github.com/zrcheng1991/redfish-firmware-update-tool/internal/progress"
	"github.com/zrcheng1991/redfish-firmware-update-tool/internal/updater"
)

// Track polls the task behind handle to a terminal state, with a progress
// indicator refreshed alongside the polling loop, and prints a one-line
// summary of the outcome.
func Track(client *api.Client, handle updater.TaskHandle) error {
	state := progress.NewState(100)
	reporter := progress.NewReporter(state, "Updating firmware", false)

	tracker := updater.NewTracker(client, state)
	started := false
	tracker.OnPollStart = func() {
		fmt.Printf("Firmware update has started! (Task Id = %s)\n", handle.ID)
		reporter.Start()
		started = true
	}

	result := tracker.Track(handle)
	if started {
		reporter.Stop()
	}

	switch result.Outcome {
	case updater.OutcomeCompleted:
		fmt.Println("Firmware update completed!")
		return nil

	case updater.OutcomeUnsupported:
		fmt.Println("This tool only supports tracking the status of update tasks.")
		return ErrUnsupported

	case updater.OutcomeIndeterminate:
		if result.Err != nil {
			fmt.Println(result.Err)
		}
		fmt.Printf("\nCould not determine the final status of the task (Id = %s).\n", handle.ID)
		fmt.Println("Please use other tools to continue tracking the update.")
		return ErrIndeterminate

	default:
		fmt.Println("Firmware update failed!")
		if result.Err != nil {
			fmt.Println(result.Err)
		}
		if len(result.Critical) > 0 {
			fmt.Println("Critical messages from the server:")
			for _, msg := range result.Critical {
				fmt.Println(msg)
			}
		}
		return ErrUpdateFailed
	}
}
