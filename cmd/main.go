// Package main provides the heist command: the game backend server plus
// offline tools for classifying landmark dumps and load-testing a server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "heist",
	Short: "Face gesture game backend",
	Long:  "Heist serves levels, resolves collisions, keeps the high score table and turns webcam frames into game actions.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
