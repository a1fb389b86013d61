package main

import (
	"github.com/remotix/remotix/cmd"
	"github.com/remotix/remotix/internal/logging"
)

func main() {
	// Initialize logging
	logging.Init(false)
	cmd.Execute()
}
