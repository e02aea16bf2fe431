// Package imageprep checks a food photo before upload and optionally shrinks
// it so large camera images stay well under the upload limit.
package imageprep

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // register PNG decoder
	"net/http"
	"os"
	"path/filepath"
	"strings"

	xdraw "golang.org/x/image/draw"

	"github.com/wisdomie/foodlens/internal/api"
)

const jpegQuality = 85

type Image struct {
	Name    string
	Data    []byte
	Width   int
	Height  int
	Resized bool
}

// Load reads path and validates it. When maxDim is positive and the longer
// edge exceeds it, the photo is scaled down and re-encoded as JPEG.
func Load(path string, maxDim int) (Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Image{}, fmt.Errorf("stat image: %w", err)
	}
	if err := api.ValidateImage(info.Name(), info.Size()); err != nil {
		return Image{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Image{}, fmt.Errorf("read image: %w", err)
	}
	return Prepare(info.Name(), data, maxDim)
}

func Prepare(name string, data []byte, maxDim int) (Image, error) {
	switch http.DetectContentType(data) {
	case "image/png", "image/jpeg":
	default:
		return Image{}, &api.ValidationError{Message: "Invalid image file"}
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Image{}, &api.ValidationError{Message: "Invalid image file"}
	}
	img := Image{Name: name, Data: data, Width: cfg.Width, Height: cfg.Height}
	if maxDim <= 0 || (cfg.Width <= maxDim && cfg.Height <= maxDim) {
		return img, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Image{}, &api.ValidationError{Message: "Invalid image file"}
	}
	w, h := fit(cfg.Width, cfg.Height, maxDim)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return Image{}, fmt.Errorf("encode resized image: %w", err)
	}
	return Image{
		Name:    strings.TrimSuffix(name, filepath.Ext(name)) + ".jpg",
		Data:    buf.Bytes(),
		Width:   w,
		Height:  h,
		Resized: true,
	}, nil
}

func fit(w, h, maxDim int) (int, int) {
	if w >= h {
		return maxDim, max(1, h*maxDim/w)
	}
	return max(1, w*maxDim/h), maxDim
}
