package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/zrcheng1991/redfish-firmware-update-tool/internal/cli"
	"github.com/zrcheng1991/redfish-firmware-update-tool/internal/commands"
	"github.com/zrcheng1991/redfish-firmware-update-tool/internal/config"
)

var version = "0.2.0"

func main() {
	// Load .env before parsing so env-backed flag defaults resolve.
	config.LoadEnv()

	var root cli.CLI
	ctx := kong.Parse(&root,
		kong.Name("rfup"),
		kong.Description("Publish firmware to a BMC for firmware updates via Redfish's Restful API."),
		kong.Vars{"version": version},
	)

	if err := ctx.Run(); err != nil {
		if !commands.Reported(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
