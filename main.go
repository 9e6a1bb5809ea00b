package main

import (
	"github.com/joho/godotenv"

	"github.com/KaramelBytes/sensordash-cli/cmd"
)

func main() {
	// optional .env with SENSORDASH_* overrides
	_ = godotenv.Load()
	cmd.Execute()
}
