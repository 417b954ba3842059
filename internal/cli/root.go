// Package cli provides the command-line interface for ChromaKnit.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chromaknit/chromaknit/internal/version"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "chromaknit",
	Short: "Yarn palette extraction and garment recolouring",
	Long: `ChromaKnit extracts the dominant colour palette from a photo of yarn
and transfers that palette onto a photo of a garment while preserving the
garment's shading and texture.

Extract a palette from a yarn photo, then recolour a garment with it:

  chromaknit extract yarn.jpg
  chromaknit recolor sweater.jpg --yarn yarn.jpg -o results/sweater.png`,
	Version:      version.Short(),
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress non-error output")

	// Set version template
	rootCmd.SetVersionTemplate(version.String() + "\n")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(recolorCmd)
	rootCmd.AddCommand(serveCmd)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print detailed version information including build date, commit hash, and Go version.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.String())
	},
}
