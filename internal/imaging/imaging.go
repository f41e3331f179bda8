package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"

	"golang.org/x/image/draw"
)

// MaxDimension bounds both sides of a captured still.
const MaxDimension = 1024

// JPEGQuality is the compression quality for captured stills.
const JPEGQuality = 80

// ErrNotDataURL is returned when decoding a string that is not a data URL.
var ErrNotDataURL = errors.New("not a data URL")

var allowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Still is a processed capture frame ready for analysis or upload.
type Still struct {
	Data []byte
	MIME string
}

// DataURL renders the still as an inline data URL, the transient image form
// a draft item carries before its first save.
func (s *Still) DataURL() string {
	return fmt.Sprintf("data:%s;base64,%s", s.MIME, base64.StdEncoding.EncodeToString(s.Data))
}

// ProcessStill validates a captured frame by sniffing its bytes, downscales
// it so neither dimension exceeds MaxDimension while preserving aspect
// ratio, and re-encodes it as JPEG.
func ProcessStill(r io.Reader) (*Still, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading frame: %w", err)
	}

	// Sniff the real MIME type, client headers are not trusted.
	detected := http.DetectContentType(data)
	if !allowedMIME[detected] {
		return nil, fmt.Errorf("unsupported image format: %s", detected)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding frame: %w", err)
	}

	img = downscale(img, MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}

	return &Still{Data: buf.Bytes(), MIME: "image/jpeg"}, nil
}

// IsDataURL reports whether an image reference is a transient inline data
// URL rather than a durable remote URL.
func IsDataURL(url string) bool {
	return strings.HasPrefix(url, "data:")
}

// DecodeDataURL extracts the raw bytes and MIME type from a data URL.
func DecodeDataURL(url string) (data []byte, mime string, err error) {
	if !IsDataURL(url) {
		return nil, "", ErrNotDataURL
	}

	meta, payload, found := strings.Cut(strings.TrimPrefix(url, "data:"), ",")
	if !found {
		return nil, "", ErrNotDataURL
	}
	mime = strings.TrimSuffix(meta, ";base64")

	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decoding data URL payload: %w", err)
	}
	return data, mime, nil
}

// downscale resizes so neither dimension exceeds maxDim, preserving aspect
// ratio. Returns the image untouched when already within bounds.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w <= maxDim && h <= maxDim {
		return img
	}

	newW, newH := w, h
	if w > h {
		newW = maxDim
		newH = int(float64(h) * float64(maxDim) / float64(w))
	} else {
		newH = maxDim
		newW = int(float64(w) * float64(maxDim) / float64(h))
	}
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
