package main

import (
	"os"

	"github.com/chargenet/roaming/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
