package main

import (
	"os"

	"github.com/skyhop/flightsearch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
