// Command coordrecorder records the path an agent walks as a log of
// waypoints, with an interactive terminal recorder and offline tools for
// replaying, exporting and inspecting recordings.
package main

import (
	"fmt"
	"os"

	"github.com/banshee-data/coordrecorder/cmd/coordrecorder/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
