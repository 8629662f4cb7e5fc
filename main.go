package main

import (
	"os"

	"github.com/ngworks1909/pulse-backend/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
