// Package main provides the entry point for the mdflow CLI.
package main

import (
	"os"

	"github.com/mdflow-ai/mdflow/cmd/mdflow/commands"
)

func main() {
	os.Exit(commands.Execute())
}
