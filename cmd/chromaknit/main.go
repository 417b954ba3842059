// ChromaKnit - yarn palette extraction and garment recolouring
//
// ChromaKnit extracts dominant colour palettes from yarn photos and
// transfers them onto garment photos while preserving shading.
package main

import (
	"github.com/chromaknit/chromaknit/internal/cli"
)

func main() {
	cli.Execute()
}
