package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/verso-cli/verso/cmd"
)

func main() {
	// A .env in the working directory is a convenient place for API keys.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
