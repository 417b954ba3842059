package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/chromaknit/chromaknit/internal/colour"
	"github.com/chromaknit/chromaknit/internal/imageio"
)

var (
	// Extract command flags
	extractColours   int
	extractAlgorithm string
	extractFormat    string
	extractOutput    string
	extractSwatch    string
	extractPreview   bool
	extractMaxDim    int
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <image>",
	Short: "Extract the dominant colour palette from a yarn image",
	Long: `Extract the dominant colours from an image of yarn, ranked by how much
of the image each colour covers.

Supported image formats: JPEG, PNG, GIF, WebP

Examples:
  # Extract 5 colours (default) from a yarn photo
  chromaknit extract yarn.jpg

  # Extract 8 colours as JSON
  chromaknit extract --colours 8 --format json yarn.jpg

  # Save a labelled swatch strip alongside the hex list
  chromaknit extract --swatch results/yarn-colours.png yarn.jpg

  # Show colour previews in the terminal
  chromaknit extract --preview yarn.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().IntVarP(&extractColours, "colours", "n", 5, "number of colours to extract (1-256)")
	extractCmd.Flags().StringVarP(&extractAlgorithm, "algorithm", "a", "kmeans", "extraction algorithm (kmeans, dominant)")
	extractCmd.Flags().StringVarP(&extractFormat, "format", "f", "hex", "output format (hex, rgb, json)")
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "output file (default: stdout)")
	extractCmd.Flags().StringVar(&extractSwatch, "swatch", "", "write a labelled swatch strip PNG to this path")
	extractCmd.Flags().BoolVar(&extractPreview, "preview", false, "show colour previews in terminal")
	extractCmd.Flags().IntVar(&extractMaxDim, "max-dim", 512, "downscale the image so its longest side is at most this many pixels before clustering (0 disables)")
}

// runExtract executes the extract command.
func runExtract(cmd *cobra.Command, args []string) error {
	imagePath := args[0]

	if err := imageio.ValidateImagePath(imagePath); err != nil {
		return fmt.Errorf("invalid image path: %w", err)
	}

	config := colour.ExtractorConfig{
		Algorithm:   colour.Algorithm(extractAlgorithm),
		ColourCount: extractColours,
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		fmt.Fprintf(os.Stderr, "Loading image: %s\n", imagePath)
	}

	loader := imageio.NewFileLoader()
	img, err := loader.Load(imagePath)
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}

	if verbose {
		bounds := img.Bounds()
		fmt.Fprintf(os.Stderr, "Image loaded: %dx%d\n", bounds.Dx(), bounds.Dy())
	}

	img = imageio.Downscale(img, extractMaxDim)

	extractor, err := colour.NewExtractor(config.Algorithm)
	if err != nil {
		return fmt.Errorf("failed to create extractor: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Extracting %d colours using %s algorithm...\n", extractColours, extractAlgorithm)
	}

	palette, err := extractor.Extract(img, extractColours)
	if err != nil {
		return fmt.Errorf("failed to extract colours: %w", err)
	}

	if verbose {
		fmt.Fprint(os.Stderr, palette.String())
	}

	if extractSwatch != "" {
		swatch, err := colour.RenderSwatch(palette)
		if err != nil {
			return fmt.Errorf("failed to render swatch: %w", err)
		}
		if err := imageio.Save(swatch, extractSwatch); err != nil {
			return fmt.Errorf("failed to save swatch: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Swatch saved to: %s\n", extractSwatch)
		}
	}

	output, err := formatPalette(palette, extractFormat, extractPreview && stdoutIsTerminal())
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if extractOutput != "" {
		if err := os.WriteFile(extractOutput, []byte(output), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Palette written to %s\n", extractOutput)
		}
	} else {
		fmt.Print(output)
	}

	return nil
}

// formatPalette formats the palette according to the specified format.
func formatPalette(palette *colour.Palette, format string, showPreview bool) (string, error) {
	switch format {
	case "hex":
		return formatHex(palette, showPreview), nil
	case "rgb":
		return formatRGB(palette, showPreview), nil
	case "json":
		jsonBytes, err := palette.ToJSON()
		if err != nil {
			return "", fmt.Errorf("failed to convert to JSON: %w", err)
		}
		return string(jsonBytes) + "\n", nil
	default:
		return "", fmt.Errorf("unsupported format: %s (supported: hex, rgb, json)", format)
	}
}

// formatHex formats the palette as hex colour codes.
func formatHex(palette *colour.Palette, showPreview bool) string {
	output := ""
	for _, c := range palette.Colors {
		if showPreview {
			output += colour.ColourPreview(c, 8) + "  " + c.Hex() + "\n"
		} else {
			output += c.Hex() + "\n"
		}
	}
	return output
}

// formatRGB formats the palette as RGB values.
func formatRGB(palette *colour.Palette, showPreview bool) string {
	output := ""
	for _, c := range palette.Colors {
		if showPreview {
			output += colour.ColourPreview(c, 8) + "  " + c.String() + "\n"
		} else {
			output += c.String() + "\n"
		}
	}
	return output
}

// stdoutIsTerminal reports whether stdout is attached to a terminal, so
// ANSI previews are only emitted where they render.
func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
