package cli

import (
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/chromaknit/chromaknit/internal/segment"
	"github.com/chromaknit/chromaknit/internal/server"
)

var (
	// Serve command flags
	serveListen   string
	serveRembgURL string
)

// Environment variables consulted by the serve command. Flags take
// precedence; a .env file in the working directory is loaded if present.
const (
	envListen   = "CHROMAKNIT_LISTEN"
	envRembgURL = "CHROMAKNIT_REMBG_URL"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the extraction and recolouring API over HTTP",
	Long: `Serve a small HTTP API exposing palette extraction and garment
recolouring:

  GET  /health
  POST /api/colors/extract    multipart: file, n_colors (1-10)
  POST /api/garments/recolor  multipart: file, colors (JSON array of hex)

Configuration is taken from flags, falling back to CHROMAKNIT_LISTEN and
CHROMAKNIT_REMBG_URL (a .env file in the working directory is honoured).`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "address to listen on (default :8080)")
	serveCmd.Flags().StringVar(&serveRembgURL, "rembg-url", "", "URL of the background-removal service (default: built-in chroma segmenter)")
}

// runServe executes the serve command.
func runServe(cmd *cobra.Command, _ []string) error {
	// Missing .env is fine; environment variables still apply.
	_ = godotenv.Load()

	listen := serveListen
	if listen == "" {
		listen = os.Getenv(envListen)
	}
	if listen == "" {
		listen = ":8080"
	}

	rembgURL := serveRembgURL
	if rembgURL == "" {
		rembgURL = os.Getenv(envRembgURL)
	}

	var seg segment.Segmenter
	if rembgURL != "" {
		seg = segment.NewRemote(rembgURL, segment.RemoteOptions{})
	} else {
		seg = segment.NewChroma(segment.ChromaOptions{})
	}

	level := hclog.Info
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = hclog.Debug
	}
	if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
		level = hclog.Error
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "chromaknit",
		Level:  level,
		Output: os.Stderr,
	})

	srv := server.New(server.Config{
		Listen:    listen,
		Segmenter: seg,
		Logger:    logger,
	})

	return srv.ListenAndServe()
}
