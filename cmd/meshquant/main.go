// Package main is the entry point for the meshquant pipeline CLI.
package main

import "github.com/Faultbox/meshquant/internal/cli"

func main() {
	cli.Execute()
}
