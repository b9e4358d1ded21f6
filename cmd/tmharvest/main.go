// Package main provides the entry point for the tmharvest CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tmharvest",
	Short: "Harvest Trismegistos records into per-id JSON files",
	Long:  "tmharvest walks a range of Trismegistos identifiers and saves one JSON document per record, either from the GeoResponder data endpoint (direct) or from rendered record pages (render). Runs are resumable: files already on disk are skipped.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
