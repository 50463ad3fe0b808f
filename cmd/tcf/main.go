// Package main is the single-binary entrypoint for the Tu Cocina Fácil server.
package main

import "github.com/cocinafacil/tcf/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
