package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/chasebfreeman/track-analyzer-pro/trackservice"
)

func main() {
	// Optional .env for local development; env vars win.
	_ = godotenv.Load()

	if err := trackservice.Run(); err != nil {
		os.Exit(1)
	}
}
