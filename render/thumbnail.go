package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"strings"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/webp"
)

// Thumbnails larger than this are almost certainly not project icons.
const maxThumbnailBytes = 4 << 20

// ShouldInline reports whether a thumbnail URL points at a format the
// rendering pipeline cannot take directly and must be transcoded first.
func ShouldInline(url string) bool {
	return strings.HasSuffix(strings.ToLower(url), ".webp")
}

// PrepareIcon resolves a project thumbnail into something the layout step
// can reference: the original URL when the format is fine, or an inline PNG
// data URI after transcoding. An empty thumbnail stays empty.
func PrepareIcon(ctx context.Context, client *http.Client, thumbnailURL string) (string, error) {
	if thumbnailURL == "" || !ShouldInline(thumbnailURL) {
		return thumbnailURL, nil
	}

	img, err := fetchImage(ctx, client, thumbnailURL)
	if err != nil {
		return "", err
	}
	return dataURI(img)
}

// fetchImage loads and decodes an image from an http(s) URL or a data URI.
func fetchImage(ctx context.Context, client *http.Client, url string) (image.Image, error) {
	if strings.HasPrefix(url, "data:") {
		return decodeDataURI(url)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create thumbnail request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch thumbnail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch thumbnail: status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(io.LimitReader(resp.Body, maxThumbnailBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to decode thumbnail: %w", err)
	}
	return img, nil
}

func decodeDataURI(uri string) (image.Image, error) {
	_, encoded, ok := strings.Cut(uri, ";base64,")
	if !ok {
		return nil, fmt.Errorf("unsupported data URI")
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode data URI: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode data URI image: %w", err)
	}
	return img, nil
}

func dataURI(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode thumbnail as png: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
