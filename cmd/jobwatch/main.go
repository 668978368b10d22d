package main

import (
	"os"

	"github.com/armadaproject/jobwatch/cmd/jobwatch/cmd"
	"github.com/armadaproject/jobwatch/internal/common"
)

func main() {
	common.ConfigureCommandLineLogging()
	root := cmd.RootCmd()
	if err := root.Execute(); err != nil {
		// Cobra has already printed the error
		os.Exit(1)
	}
}
