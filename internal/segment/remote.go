package segment

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"time"

	"github.com/chromaknit/chromaknit/internal/imageio"
	"github.com/chromaknit/chromaknit/internal/version"
)

const (
	// DefaultTimeout is the default request timeout for the remote
	// segmentation service. Model inference dominates recolouring cost,
	// so this is deliberately generous.
	DefaultTimeout = 60 * time.Second

	// userAgentName is the application name used in the User-Agent header.
	userAgentName = "chromaknit"
)

// Remote segments images by posting them to a background-removal HTTP
// service (a rembg-style server). The service is expected to respond with
// a PNG cutout whose alpha channel encodes the foreground.
type Remote struct {
	url     string
	timeout time.Duration
	client  *http.Client
}

// RemoteOptions configures a Remote segmenter.
type RemoteOptions struct {
	// Timeout specifies the HTTP request timeout.
	// If zero, DefaultTimeout is used.
	Timeout time.Duration
}

// NewRemote creates a segmenter backed by the background-removal service
// at the given URL.
func NewRemote(url string, opts RemoteOptions) *Remote {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Remote{
		url:     url,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}
}

// Segment posts the image to the service and extracts the alpha channel of
// the returned cutout as the foreground mask. All failures, including
// non-200 responses and undecodable bodies, wrap ErrSegmentation.
func (r *Remote) Segment(ctx context.Context, img image.Image) (*image.Gray, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: image cannot be nil", ErrSegmentation)
	}

	payload, err := imageio.EncodePNG(img)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode request image: %v", ErrSegmentation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrSegmentation, err)
	}
	req.Header.Set("Content-Type", "image/png")
	req.Header.Set("Accept", "image/png")
	req.Header.Set("User-Agent", fmt.Sprintf("%s/%s", userAgentName, version.Version))

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", ErrSegmentation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d: %s", ErrSegmentation, resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %v", ErrSegmentation, err)
	}

	cutout, err := imageio.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode cutout: %v", ErrSegmentation, err)
	}

	mask := AlphaMask(cutout)

	// Services may run inference on a scaled copy; fit the mask back to
	// the source bounds.
	if mask.Bounds() != img.Bounds() {
		mask = imageio.ScaleGray(mask, img.Bounds())
	}

	return mask, nil
}
