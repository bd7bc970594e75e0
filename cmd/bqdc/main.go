// Package main provides the entry point for the bqdc CLI tool.
package main

import (
	"github.com/karlo0/bqdc/cmd/bqdc/cmd"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
