// Package cli defines the rfup command-line surface.
package cli

import (
	"github.com/alecthomas/kong"

	"github.com/zrcheng1991/redfish-firmware-update-tool/internal/api"
	"github.com/zrcheng1991/redfish-firmware-update-tool/internal/commands"
	"github.com/zrcheng1991/redfish-firmware-update-tool/internal/config"
	"github.com/zrcheng1991/redfish-firmware-update-tool/internal/updater"
)

// CLI is the flag surface. Exactly one of --file-path (push then track) or
// --task-id (track only) must be given; both resolve to a single task
// handle before tracking begins.
type CLI struct {
	BmcIP    string `name:"bmc-ip" required:"" help:"IPv4 address of the BMC on the target server platform."`
	Port     int    `default:"443" help:"Port number for the HTTPS connection."`
	Username string `default:"root" env:"RFUP_USERNAME" help:"Username for logging into the BMC."`
	Password string `default:"0penBmc" env:"RFUP_PASSWORD" help:"Password for logging into the BMC."`
	Insecure bool   `default:"true" negatable:"" help:"Skip TLS certificate verification. BMCs commonly ship self-signed certificates."`
	Verbose  bool   `short:"v" help:"Enable verbose debug output."`

	FilePath string `name:"file-path" xor:"action" required:"" type:"existingfile" help:"Path to the firmware package used for the update."`
	TaskID   string `name:"task-id" xor:"action" required:"" help:"ID of the task to be tracked."`

	Version kong.VersionFlag `help:"Print version information and quit."`
}

// Run executes the selected workflow against the BMC.
func (c *CLI) Run() error {
	config.SetVerbose(c.Verbose)

	client, err := api.Dial(api.Options{
		Host:     c.BmcIP,
		Port:     c.Port,
		Username: c.Username,
		Password: c.Password,
		Insecure: c.Insecure,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	if c.FilePath != "" {
		return commands.Update(client, c.FilePath)
	}
	return commands.Track(client, updater.TaskHandle{
		ID:        c.TaskID,
		StatusURL: api.TaskPath(c.TaskID),
	})
}
