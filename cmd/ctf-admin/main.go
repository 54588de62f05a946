// Package main provides the ctf-admin CLI tool for managing the competition backend.
package main

import (
	"os"

	"github.com/ctfplayground/backend/cmd/ctf-admin/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
