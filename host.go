package backdrop

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Window is an ebiten host for one mounted view. It implements
// ebiten.Game, DisplayTarget, FrameScheduler and EventSource: Draw flushes
// requested frame callbacks, Layout publishes resizes and Update turns
// cursor movement and injected input into pointer events.
type Window struct {
	*ManualScheduler
	*EventHub

	mu       sync.Mutex
	width    int
	height   int
	scale    float64
	graphics bool
	surfaces []*Surface

	start    time.Time
	lastCur  [2]int
	curSeen  bool
	hovering bool

	// outside is the last size reported by Layout. An injected resize
	// holds until the real outside size changes.
	outside      [2]int
	sizeOverride bool

	// ShowFPS draws the FPS overlay in the top-left corner.
	ShowFPS bool
	fps     *fpsOverlay

	// ScreenshotDir is where Screenshot writes PNG files.
	ScreenshotDir string
	shotQueue     []string

	injectQueue []syntheticEvent
	runner      *TestRunner

	logger *slog.Logger
}

// NewWindow creates a host with an initial logical size.
func NewWindow(width, height int, logger *slog.Logger) *Window {
	if logger == nil {
		logger = discardLogger
	}
	return &Window{
		ManualScheduler: NewManualScheduler(),
		EventHub:        NewEventHub(),
		width:           max(width, 1),
		height:          max(height, 1),
		outside:         [2]int{max(width, 1), max(height, 1)},
		scale:           1,
		graphics:        true,
		ScreenshotDir:   "screenshots",
		logger:          logger,
	}
}

// deviceScale returns the current monitor's device scale, or 1 before the
// window exists.
func deviceScale() float64 {
	if m := ebiten.Monitor(); m != nil {
		if s := m.DeviceScaleFactor(); s > 0 {
			return s
		}
	}
	return 1
}

// --- DisplayTarget ---

// Size implements DisplayTarget.
func (w *Window) Size() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width, w.height
}

// DeviceScale implements DisplayTarget.
func (w *Window) DeviceScale() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.scale
}

// SetGraphicsAvailable overrides the display check. Mounting on a
// window without graphics yields an inert controller.
func (w *Window) SetGraphicsAvailable(ok bool) {
	w.mu.Lock()
	w.graphics = ok
	w.mu.Unlock()
}

// GraphicsAvailable implements DisplayTarget.
func (w *Window) GraphicsAvailable() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.graphics
}

// Insert implements DisplayTarget.
func (w *Window) Insert(s *Surface) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if slices.Contains(w.surfaces, s) {
		return errors.New("surface already inserted")
	}
	w.surfaces = append(w.surfaces, s)
	return nil
}

// Remove implements DisplayTarget.
func (w *Window) Remove(s *Surface) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if i := slices.Index(w.surfaces, s); i >= 0 {
		w.surfaces = slices.Delete(w.surfaces, i, i+1)
	}
}

// Contains implements DisplayTarget.
func (w *Window) Contains(s *Surface) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Contains(w.surfaces, s)
}

// --- ebiten.Game ---

// Update implements ebiten.Game. Injected input takes precedence over the
// real cursor for the frame it is consumed in.
func (w *Window) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if w.runner != nil {
		w.runner.step(w)
		if w.runner.Done() && w.runner.quit {
			return ebiten.Termination
		}
	}
	if w.processInjected() {
		return nil
	}
	w.cursorMoved(ebiten.CursorPosition())
	return nil
}

// cursorMoved takes a cursor position in screen pixels, which are physical
// pixels, and publishes it in logical pixels when it changed.
func (w *Window) cursorMoved(x, y int) {
	if w.curSeen && x == w.lastCur[0] && y == w.lastCur[1] {
		return
	}
	w.curSeen = true
	w.lastCur = [2]int{x, y}
	w.mu.Lock()
	s := w.scale
	w.mu.Unlock()
	w.pointerAt(float64(x)/s, float64(y)/s)
}

// pointerAt publishes a pointer move at logical (x, y), preceded by an
// enter or followed by a leave when the pointer crossed the window edge.
func (w *Window) pointerAt(x, y float64) {
	w.mu.Lock()
	inside := x >= 0 && y >= 0 && x < float64(w.width) && y < float64(w.height)
	w.mu.Unlock()
	if inside && !w.hovering {
		w.hovering = true
		w.EnterPointer(x, y)
	}
	w.MovePointer(x, y)
	if !inside && w.hovering {
		w.hovering = false
		w.LeavePointer(x, y)
	}
}

// Draw implements ebiten.Game. It runs the frame callbacks requested since
// the last Draw, then composites every inserted surface onto the screen.
func (w *Window) Draw(screen *ebiten.Image) {
	if w.start.IsZero() {
		w.start = time.Now()
	}
	w.Flush(time.Since(w.start))

	w.mu.Lock()
	surfaces := slices.Clone(w.surfaces)
	scale := w.scale
	w.mu.Unlock()

	var op ebiten.DrawImageOptions
	for _, s := range surfaces {
		img := s.Image()
		if img == nil {
			continue
		}
		op.GeoM.Reset()
		op.GeoM.Scale(scale/s.Scale(), scale/s.Scale())
		screen.DrawImage(img, &op)
	}
	if w.ShowFPS {
		if w.fps == nil {
			w.fps = newFPSOverlay()
		}
		w.fps.draw(screen)
	}
	w.flushScreenshots(screen)
}

// Layout implements ebiten.Game. The screen is sized in physical pixels;
// a change of the outside size is published as a resize event.
func (w *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	return w.layout(outsideWidth, outsideHeight, deviceScale())
}

func (w *Window) layout(outW, outH int, s float64) (int, int) {
	w.mu.Lock()
	w.scale = s
	outsideChanged := outW != w.outside[0] || outH != w.outside[1]
	w.outside = [2]int{outW, outH}
	if outsideChanged {
		w.sizeOverride = false
	}
	changed := false
	if !w.sizeOverride && (outW != w.width || outH != w.height) {
		w.width, w.height = outW, outH
		changed = true
	}
	w.mu.Unlock()
	if changed {
		w.ResizeTo(outW, outH)
	}
	return int(float64(outW) * s), int(float64(outH) * s)
}

// --- Run ---

// RunConfig configures Run.
type RunConfig struct {
	Title  string
	Width  int
	Height int
	Config Config
	// ShowFPS enables the FPS overlay.
	ShowFPS bool
	// TestScript, when set, is a JSON script executed frame by frame.
	TestScript []byte
	// ScreenshotDir overrides the default "screenshots" directory.
	ScreenshotDir string
	Logger        *slog.Logger
}

// Run opens a window, mounts content in it and blocks until the window is
// closed. It returns an error wrapping ErrCapabilityUnavailable or
// ErrResourceAcquisition when the view could not be mounted, so callers
// can fall back to a non-graphical presentation.
func Run(rc RunConfig, content Content) error {
	if rc.Width <= 0 {
		rc.Width = 1280
	}
	if rc.Height <= 0 {
		rc.Height = 720
	}
	w := NewWindow(rc.Width, rc.Height, rc.Logger)
	w.scale = deviceScale()
	w.graphics = displayAvailable()
	w.ShowFPS = rc.ShowFPS
	if rc.ScreenshotDir != "" {
		w.ScreenshotDir = rc.ScreenshotDir
	}
	if len(rc.TestScript) > 0 {
		runner, err := LoadTestScript(rc.TestScript)
		if err != nil {
			return err
		}
		w.SetTestRunner(runner)
	}

	ctrl := Mount(Env{Target: w, Frames: w, Events: w, Logger: rc.Logger}, rc.Config, content)
	defer ctrl.Unmount()
	if err := ctrl.Err(); err != nil {
		return fmt.Errorf("mount: %w", err)
	}

	ebiten.SetWindowTitle(rc.Title)
	ebiten.SetWindowSize(rc.Width, rc.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	switch rc.Config.PowerPreference {
	case PowerLowPower:
		ebiten.SetTPS(30)
	case PowerHighPerformance:
		ebiten.SetVsyncEnabled(true)
	}
	return classifyRunError(ebiten.RunGameWithOptions(w, &ebiten.RunGameOptions{
		ScreenTransparent: rc.Config.Transparent,
	}))
}

// classifyRunError maps the game loop's result to Run's contract. A window
// that could not be driven at all means graphics are unavailable.
func classifyRunError(err error) error {
	if err == nil || errors.Is(err, ebiten.Termination) {
		return nil
	}
	return fmt.Errorf("run: %w: %w", ErrCapabilityUnavailable, err)
}

// displayAvailable reports whether a window can be opened. On X11 and
// Wayland systems that needs a display server in the environment.
func displayAvailable() bool {
	switch runtime.GOOS {
	case "linux", "freebsd", "openbsd", "netbsd", "dragonfly":
		return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
	}
	return true
}
