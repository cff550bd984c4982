package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/opsdeck/watchdesk/internal/cli"
)

func main() {
	// Local overrides like WATCHDESK_DB can live in a .env file. A missing
	// file is not an error.
	_ = godotenv.Load()

	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
