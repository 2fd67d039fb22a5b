package main

import (
	"os"

	"github.com/wonny/hotrank/cmd/hotrank/commands"
)

// main is the entry point for the hotrank CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/hotrank [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
