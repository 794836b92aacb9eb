package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"time"

	_ "image/gif"
	_ "image/jpeg"

	"golang.org/x/image/webp"
)

const defaultFetchTimeout = 10 * time.Second

// maxImageBytes caps how much of a remote image the exporter will read.
const maxImageBytes = 32 * 1024 * 1024

// FetchedImage carries decoded metadata alongside the raw bytes ready
// for PDF embedding.
type FetchedImage struct {
	Data   []byte
	Kind   string // "PNG", "JPG" or "GIF"
	Width  int
	Height int
}

// ImageFetcher downloads record images over HTTP with a bounded timeout.
type ImageFetcher struct {
	client  *http.Client
	timeout time.Duration
}

// NewImageFetcher builds a fetcher. A zero timeout uses the default.
func NewImageFetcher(timeout time.Duration) *ImageFetcher {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &ImageFetcher{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// Fetch downloads and decodes the image at url. WebP input is
// re-encoded as PNG since the PDF writer does not take WebP directly.
func (f *ImageFetcher) Fetch(ctx context.Context, url string) (FetchedImage, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return FetchedImage{}, fmt.Errorf("build image request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return FetchedImage{}, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return FetchedImage{}, fmt.Errorf("fetch image: unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return FetchedImage{}, fmt.Errorf("read image body: %w", err)
	}
	return decodeImage(data)
}

func decodeImage(data []byte) (FetchedImage, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return FetchedImage{}, fmt.Errorf("decode image: %w", err)
	}
	switch format {
	case "png":
		return FetchedImage{Data: data, Kind: "PNG", Width: cfg.Width, Height: cfg.Height}, nil
	case "jpeg":
		return FetchedImage{Data: data, Kind: "JPG", Width: cfg.Width, Height: cfg.Height}, nil
	case "gif":
		return FetchedImage{Data: data, Kind: "GIF", Width: cfg.Width, Height: cfg.Height}, nil
	case "webp":
		img, err := webp.Decode(bytes.NewReader(data))
		if err != nil {
			return FetchedImage{}, fmt.Errorf("decode webp: %w", err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return FetchedImage{}, fmt.Errorf("re-encode webp as png: %w", err)
		}
		return FetchedImage{Data: buf.Bytes(), Kind: "PNG", Width: cfg.Width, Height: cfg.Height}, nil
	default:
		return FetchedImage{}, fmt.Errorf("unsupported image format %q", format)
	}
}
