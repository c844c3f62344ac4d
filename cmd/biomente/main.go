package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/biomente/biomente/internal/cli"
	"github.com/biomente/biomente/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "biomente",
		Short: "BioMente CLI - AI research assistant for scientific literature",
		Long: `BioMente CLI provides commands to search, collect, and discuss scientific literature.

Environment variables:
  BIOMENTE_API_URL   API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.ProfileCmd())
	rootCmd.AddCommand(client.ProjectCmd())
	rootCmd.AddCommand(client.SearchCmd())
	rootCmd.AddCommand(client.MoreCmd())
	rootCmd.AddCommand(client.FragmentCmd())
	rootCmd.AddCommand(client.UploadCmd())
	rootCmd.AddCommand(client.DownloadCmd())
	rootCmd.AddCommand(client.SaveCmd())
	rootCmd.AddCommand(client.CompareCmd())
	rootCmd.AddCommand(client.BibliographyCmd())
	rootCmd.AddCommand(client.ChatCmd())
	rootCmd.AddCommand(client.StateCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
