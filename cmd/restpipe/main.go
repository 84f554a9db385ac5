package main

import (
	"fmt"
	"os"

	"github.com/jonwraymond/restpipe/internal/commands"
)

var version = "dev" // set at build time

func main() {
	if err := commands.NewRootCommand(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
