package main

import "star-router/internal/cli"

// version is overridden at build time via -ldflags.
var version = ""

func main() {
	cli.Version = version
	cli.Execute()
}
