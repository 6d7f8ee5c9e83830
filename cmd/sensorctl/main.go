package main

import (
	"fmt"
	"os"

	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/cli"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/logging"
)

func main() {
	logging.Setup()

	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
