package cli

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/chromaknit/chromaknit/internal/colour"
	"github.com/chromaknit/chromaknit/internal/imageio"
	"github.com/chromaknit/chromaknit/internal/recolor"
	"github.com/chromaknit/chromaknit/internal/segment"
)

var (
	// Recolor command flags
	recolorColours   []string
	recolorYarn      string
	recolorYarnN     int
	recolorOutput    string
	recolorSegmenter string
	recolorRembgURL  string
)

// recolorCmd represents the recolor command
var recolorCmd = &cobra.Command{
	Use:   "recolor <garment-image>",
	Short: "Recolour a garment image with a target palette",
	Long: `Recolour the garment in a photo with a set of target colours while
preserving the garment's shading and texture.

The garment is separated from its background, each foreground pixel is
assigned a target colour by its brightness (darker targets land on shadow
regions, brighter targets on highlights), and only hue and saturation are
replaced so the original shading survives.

Target colours come either from explicit --colour flags or from a yarn
photo via --yarn, which extracts the palette first.

Examples:
  # Recolour with two explicit colours
  chromaknit recolor sweater.jpg --colour "#1f3a5f" --colour "#c9a227" -o out/sweater.png

  # Full workflow: extract 5 colours from yarn, then recolour
  chromaknit recolor sweater.jpg --yarn yarn.jpg -o out/sweater.png

  # Use a rembg-style segmentation service
  chromaknit recolor sweater.jpg --yarn yarn.jpg --segmenter remote \
    --rembg-url http://localhost:7000/api/remove -o out/sweater.png`,
	Args: cobra.ExactArgs(1),
	RunE: runRecolor,
}

func init() {
	recolorCmd.Flags().StringArrayVarP(&recolorColours, "colour", "c", nil, "target hex colour (repeatable)")
	recolorCmd.Flags().StringVar(&recolorYarn, "yarn", "", "yarn image to extract the target palette from")
	recolorCmd.Flags().IntVarP(&recolorYarnN, "colours", "n", 5, "number of colours to extract from the yarn image")
	recolorCmd.Flags().StringVarP(&recolorOutput, "output", "o", "", "output path for the recoloured image (required)")
	recolorCmd.Flags().StringVar(&recolorSegmenter, "segmenter", "chroma", "segmentation backend (chroma, remote)")
	recolorCmd.Flags().StringVar(&recolorRembgURL, "rembg-url", "", "URL of the background-removal service (remote segmenter)")
	_ = recolorCmd.MarkFlagRequired("output")
}

// runRecolor executes the recolor command.
func runRecolor(cmd *cobra.Command, args []string) error {
	garmentPath := args[0]
	verbose, _ := cmd.Flags().GetBool("verbose")

	if err := imageio.ValidateImagePath(garmentPath); err != nil {
		return fmt.Errorf("invalid garment image path: %w", err)
	}

	targets, err := resolveTargets(verbose)
	if err != nil {
		return err
	}

	seg, err := buildSegmenter()
	if err != nil {
		return err
	}

	pipeline := recolor.NewPipeline(seg)
	if verbose {
		pipeline.Logger = hclog.New(&hclog.LoggerOptions{
			Name:   "recolor",
			Level:  hclog.Debug,
			Output: os.Stderr,
		})
	}

	result, err := pipeline.Recolor(cmd.Context(), garmentPath, targets)
	if err != nil {
		return fmt.Errorf("recolouring failed: %w", err)
	}

	if err := recolor.Save(recolor.Recolored{Image: result}, recolorOutput); err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Recoloured image saved to %s\n", recolorOutput)
	}
	return nil
}

// resolveTargets builds the target colour list from --colour flags or a
// yarn image.
func resolveTargets(verbose bool) ([]colour.RGB, error) {
	if len(recolorColours) > 0 && recolorYarn != "" {
		return nil, fmt.Errorf("--colour and --yarn are mutually exclusive")
	}

	if len(recolorColours) > 0 {
		targets, err := colour.ParseHexList(recolorColours)
		if err != nil {
			return nil, fmt.Errorf("invalid target colour: %w", err)
		}
		return targets, nil
	}

	if recolorYarn == "" {
		return nil, fmt.Errorf("either --colour or --yarn is required")
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Extracting %d colours from yarn image: %s\n", recolorYarnN, recolorYarn)
	}

	loader := imageio.NewFileLoader()
	img, err := loader.Load(recolorYarn)
	if err != nil {
		return nil, fmt.Errorf("failed to load yarn image: %w", err)
	}

	extractor := colour.NewKMeansExtractor()
	palette, err := extractor.Extract(imageio.Downscale(img, extractMaxDim), recolorYarnN)
	if err != nil {
		return nil, fmt.Errorf("failed to extract yarn palette: %w", err)
	}

	if verbose {
		fmt.Fprint(os.Stderr, palette.String())
	}
	return palette.Colors, nil
}

// buildSegmenter constructs the segmentation backend from flags.
func buildSegmenter() (segment.Segmenter, error) {
	switch recolorSegmenter {
	case "chroma":
		return segment.NewChroma(segment.ChromaOptions{}), nil
	case "remote":
		if recolorRembgURL == "" {
			return nil, fmt.Errorf("--rembg-url is required with the remote segmenter")
		}
		return segment.NewRemote(recolorRembgURL, segment.RemoteOptions{}), nil
	default:
		return nil, fmt.Errorf("invalid segmenter: %s (valid: chroma, remote)", recolorSegmenter)
	}
}
