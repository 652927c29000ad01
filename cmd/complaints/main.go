// Package main provides the complaints CLI.
package main

import "github.com/mesh-intelligence/complaints/internal/cli"

func main() {
	cli.Execute()
}
