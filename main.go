package main

import (
	"fmt"
	"os"

	"transpo-cli/cmd"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	v := version
	if commit != "none" && commit != "" {
		v += " (" + commit + ")"
	}
	if err := cmd.Execute(v); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
