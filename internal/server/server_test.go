package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/chromaknit/chromaknit/internal/segment"
)

var hexPattern = regexp.MustCompile(`^#[0-9a-f]{6}$`)

// fullMask marks every pixel as foreground regardless of the image.
type fullMask struct{}

func (fullMask) Segment(_ context.Context, img image.Image) (*image.Gray, error) {
	mask := image.NewGray(img.Bounds())
	for i := range mask.Pix {
		mask.Pix[i] = 255
	}
	return mask, nil
}

// failingSegmenter always reports a model failure.
type failingSegmenter struct{}

func (failingSegmenter) Segment(context.Context, image.Image) (*image.Gray, error) {
	return nil, fmt.Errorf("%w: model unavailable", segment.ErrSegmentation)
}

func testServer(seg segment.Segmenter) *httptest.Server {
	return httptest.NewServer(New(Config{Segmenter: seg}).Handler())
}

// testImagePNG encodes a two-tone test image.
func testImagePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			c := color.NRGBA{R: 30, G: 160, B: 70, A: 255}
			if y >= 8 {
				c = color.NRGBA{R: 200, G: 60, B: 30, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

// multipartUpload builds a multipart body with a file part and extra fields.
func multipartUpload(t *testing.T, file []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if file != nil {
		part, err := mw.CreateFormFile("file", "upload.png")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write(file); err != nil {
			t.Fatal(err)
		}
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func TestHealth(t *testing.T) {
	ts := testServer(nil)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status field = %q, want %q", body["status"], "healthy")
	}
	if body["version"] == "" {
		t.Error("version field is empty")
	}
}

func TestExtract(t *testing.T) {
	ts := testServer(nil)
	defer ts.Close()

	body, contentType := multipartUpload(t, testImagePNG(t), map[string]string{"n_colors": "2"})
	resp, err := http.Post(ts.URL+"/api/colors/extract", contentType, body)
	if err != nil {
		t.Fatalf("extract request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var got extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if got.Count != 2 || len(got.Colors) != 2 {
		t.Fatalf("got %d colours (count %d), want 2", len(got.Colors), got.Count)
	}
	for _, hex := range got.Colors {
		if !hexPattern.MatchString(hex) {
			t.Errorf("malformed hex colour %q", hex)
		}
	}
}

func TestExtractDefaultsToFiveColours(t *testing.T) {
	ts := testServer(nil)
	defer ts.Close()

	body, contentType := multipartUpload(t, testImagePNG(t), nil)
	resp, err := http.Post(ts.URL+"/api/colors/extract", contentType, body)
	if err != nil {
		t.Fatalf("extract request failed: %v", err)
	}
	defer resp.Body.Close()

	var got extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if got.Count != 5 {
		t.Errorf("default count = %d, want 5", got.Count)
	}
}

func TestExtractBadRequests(t *testing.T) {
	ts := testServer(nil)
	defer ts.Close()

	tests := []struct {
		name   string
		file   []byte
		fields map[string]string
	}{
		{name: "missing file", file: nil},
		{name: "corrupt file", file: []byte("not an image")},
		{name: "n_colors zero", file: testImagePNG(t), fields: map[string]string{"n_colors": "0"}},
		{name: "n_colors too large", file: testImagePNG(t), fields: map[string]string{"n_colors": "11"}},
		{name: "n_colors not a number", file: testImagePNG(t), fields: map[string]string{"n_colors": "five"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := multipartUpload(t, tt.file, tt.fields)
			resp, err := http.Post(ts.URL+"/api/colors/extract", contentType, body)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestRecolor(t *testing.T) {
	ts := testServer(fullMask{})
	defer ts.Close()

	body, contentType := multipartUpload(t, testImagePNG(t), map[string]string{
		"colors": `["#1f3a5f", "#c9a227"]`,
	})
	resp, err := http.Post(ts.URL+"/api/garments/recolor", contentType, body)
	if err != nil {
		t.Fatalf("recolor request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Type"); got != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", got)
	}

	decoded, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("response is not a valid PNG: %v", err)
	}
	if decoded.Bounds() != image.Rect(0, 0, 16, 16) {
		t.Errorf("result bounds = %v, want 16x16", decoded.Bounds())
	}
}

func TestRecolorBadRequests(t *testing.T) {
	ts := testServer(fullMask{})
	defer ts.Close()

	tests := []struct {
		name   string
		fields map[string]string
	}{
		{name: "missing colors", fields: nil},
		{name: "empty colors array", fields: map[string]string{"colors": `[]`}},
		{name: "colors not JSON", fields: map[string]string{"colors": `#1f3a5f`}},
		{name: "invalid hex entry", fields: map[string]string{"colors": `["#1f3a5f", "red"]`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := multipartUpload(t, testImagePNG(t), tt.fields)
			resp, err := http.Post(ts.URL+"/api/garments/recolor", contentType, body)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestRecolorSegmentationFailure(t *testing.T) {
	ts := testServer(failingSegmenter{})
	defer ts.Close()

	body, contentType := multipartUpload(t, testImagePNG(t), map[string]string{
		"colors": `["#1f3a5f"]`,
	})
	resp, err := http.Post(ts.URL+"/api/garments/recolor", contentType, body)
	if err != nil {
		t.Fatalf("recolor request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", resp.StatusCode)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	ts := testServer(nil)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/colors/extract")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}
