package main

import (
	"os"

	"github.com/gnoverse/cstfix/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
