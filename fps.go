package backdrop

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// fpsRefresh is how often the overlay text is redrawn.
const fpsRefresh = 500 * time.Millisecond

// fpsOverlay displays the current FPS and TPS. The text is redrawn into a
// small image every fpsRefresh and blitted every frame.
type fpsOverlay struct {
	img  *ebiten.Image
	last time.Time
}

func newFPSOverlay() *fpsOverlay {
	// 100x32 is enough for "FPS: 60.0\nTPS: 60.0"
	return &fpsOverlay{img: ebiten.NewImage(100, 32)}
}

func (f *fpsOverlay) draw(screen *ebiten.Image) {
	if now := time.Now(); now.Sub(f.last) >= fpsRefresh {
		f.last = now
		f.img.Clear()
		// Semi-transparent background for readability
		f.img.Fill(color.RGBA{0, 0, 0, 128})
		ebitenutil.DebugPrint(f.img, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
	screen.DrawImage(f.img, nil)
}
