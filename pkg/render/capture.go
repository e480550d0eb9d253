package render

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// CaptureFileName returns the PNG name for a frame captured at timestamp.
func CaptureFileName(suffix string, timestamp time.Time) string {
	return fmt.Sprintf("globe-%s-%s.png", timestamp.Format("20060102-150405"), suffix)
}

func (e *Engine) captureFrame(img *ebiten.Image, suffix string, timestamp time.Time) {
	if e.FrameCaptureDir == "" {
		return
	}
	if err := os.MkdirAll(e.FrameCaptureDir, 0o755); err != nil {
		log.Printf("Error creating capture directory: %v", err)
		return
	}
	path := filepath.Join(e.FrameCaptureDir, CaptureFileName(suffix, timestamp))

	// Copy the pixels out now; the image is reused by the next frame.
	rgba := image.NewRGBA(img.Bounds())
	img.ReadPixels(rgba.Pix)

	go func() {
		if err := writePNG(path, rgba); err != nil {
			log.Printf("Error writing capture: %v", err)
			return
		}
		log.Printf("Captured frame: %s", path)
	}()
}

func writePNG(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create capture file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close capture file: %w", cerr)
		}
	}()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode capture: %w", err)
	}
	return nil
}
