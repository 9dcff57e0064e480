package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/reclink-dev/reclink/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "reclink",
	Short: "Link product catalog records to unstructured listings",
	Long: `reclink links structured product catalog records to unstructured
listings using MinHash signatures and banded locality-sensitive hashing.

Instead of comparing every listing against every product, reclink hashes
token sets into short signatures and only compares records that collide
in at least one signature band. The banding parameters are solved from a
similarity threshold and a target detection probability.`,
	Version: version.Short(),
}

func init() {
	rootCmd.AddCommand(NewMatchCmd())
	rootCmd.AddCommand(NewVersionCmd())
	rootCmd.AddCommand(NewInitCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
