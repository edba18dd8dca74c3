package backdrop

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/hajimehoshi/ebiten/v2"
)

// Screenshot asks for the composited screen to be saved after the next
// Draw, as <ScreenshotDir>/<timestamp>_<label>.png.
func (w *Window) Screenshot(label string) {
	w.shotQueue = append(w.shotQueue, label)
}

func (w *Window) flushScreenshots(screen *ebiten.Image) {
	if len(w.shotQueue) == 0 {
		return
	}
	labels := w.shotQueue
	w.shotQueue = w.shotQueue[:0]

	if err := os.MkdirAll(w.ScreenshotDir, 0o755); err != nil {
		w.logger.Warn("screenshot dir", "dir", w.ScreenshotDir, "error", err)
		return
	}
	img := unpremultiplied(screen)
	prefix := time.Now().Format("20060102_150405")
	for _, label := range labels {
		path := filepath.Join(w.ScreenshotDir, prefix+"_"+sanitizeLabel(label)+".png")
		if err := writePNG(path, img); err != nil {
			w.logger.Warn("screenshot", "error", err)
			continue
		}
		w.logger.Info("screenshot saved", "path", path)
	}
}

// unpremultiplied reads src back as straight-alpha NRGBA.
func unpremultiplied(src *ebiten.Image) *image.NRGBA {
	out := image.NewNRGBA(src.Bounds())
	src.ReadPixels(out.Pix)
	for px := out.Pix; len(px) >= 4; px = px[4:] {
		a := uint32(px[3])
		if a == 0 || a == 0xff {
			continue
		}
		for c := 0; c < 3; c++ {
			px[c] = uint8(min(uint32(px[c])*0xff/a, 0xff))
		}
	}
	return out
}

func writePNG(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("screenshot: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("screenshot: %w", cerr)
		}
	}()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("screenshot: encode %s: %w", path, err)
	}
	return nil
}

// sanitizeLabel keeps ASCII letters, digits, '-' and '.', maps everything
// else to '_' and names empty labels "unlabeled".
func sanitizeLabel(label string) string {
	if label = strings.TrimSpace(label); label == "" {
		return "unlabeled"
	}
	return strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '.') {
			return r
		}
		return '_'
	}, label)
}
