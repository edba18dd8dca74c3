package backdrop

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// Env is what the host provides to a mounted view.
type Env struct {
	// Target hosts the render surface. A nil target or one without
	// graphics makes Mount inert.
	Target DisplayTarget
	// Frames schedules frame callbacks. Required.
	Frames FrameScheduler
	// Events delivers pointer and resize events. Optional.
	Events EventSource
	// Rand is the ambient random source. Nil seeds a PCG from Config.Seed.
	Rand RandomSource
	// Logger receives lifecycle and degradation messages. Nil discards.
	Logger *slog.Logger
}

// Content populates a freshly mounted scene.
type Content interface {
	Build(b *Builder) error
}

// ContentFunc adapts a function to Content.
type ContentFunc func(b *Builder) error

// Build implements Content.
func (f ContentFunc) Build(b *Builder) error { return f(b) }

// Builder is handed to Content.Build. Everything created through it is
// owned by the mounted view and released on unmount.
type Builder struct {
	Resources *ResourceManager
	Scene     *Scene
	Camera    *Camera
	Timeline  *Timeline
	Rand      RandomSource
	Config    Config
	Logger    *slog.Logger

	hooks   []FrameHook
	jumpers []*Jumper
	moves   []func(PointerEvent)
	enters  []func(PointerEvent)
	leaves  []func(PointerEvent)
	cleanup []func()
}

// Add attaches obj to the scene.
func (b *Builder) Add(obj *Object) {
	b.Resources.Attach(b.Scene, obj)
}

// OnFrame registers a per-frame hook.
func (b *Builder) OnFrame(h FrameHook) {
	b.hooks = append(b.hooks, h)
}

// OnPointerMove registers fn for pointer moves. It is not called when the
// host delivers no events.
func (b *Builder) OnPointerMove(fn func(PointerEvent)) {
	b.moves = append(b.moves, fn)
}

// OnPointerEnter registers fn for the pointer entering the viewport.
func (b *Builder) OnPointerEnter(fn func(PointerEvent)) {
	b.enters = append(b.enters, fn)
}

// OnPointerLeave registers fn for the pointer leaving the viewport.
func (b *Builder) OnPointerLeave(fn func(PointerEvent)) {
	b.leaves = append(b.leaves, fn)
}

// OnUnmount registers fn to run on unmount, after the listeners are
// removed and before graphics handles are released.
func (b *Builder) OnUnmount(fn func()) {
	b.cleanup = append(b.cleanup, fn)
}

// Jump creates a Jumper for target. It starts when the render loop starts
// and stops on unmount.
func (b *Builder) Jump(target *Object, cfg JumpConfig) *Jumper {
	j := NewJumper(b.Timeline, target, cfg, b.Rand)
	b.jumpers = append(b.jumpers, j)
	return j
}

// Controller is the handle returned by Mount. An inert controller (one
// whose Err is non-nil) owns nothing; its Unmount is a no-op.
type Controller struct {
	err    error
	logger *slog.Logger

	rm       *ResourceManager
	scene    *Scene
	camera   *Camera
	timeline *Timeline
	loop     *Loop
	renderer *Renderer
	pointer  *PointerState
	viewport *ViewportState
	jumpers  []*Jumper
	removers []func()
	cleanup  []func()

	mounted bool
}

// Mount acquires a render surface on env.Target, builds content into a new
// scene, wires pointer and resize listeners and starts the render loop.
//
// Mount never panics and never returns nil. When the target has no
// graphics, the config is invalid or content fails to build, everything
// acquired so far is released and the returned controller is inert with
// Err describing why.
func Mount(env Env, cfg Config, content Content) *Controller {
	logger := env.Logger
	if logger == nil {
		logger = discardLogger
	}
	c := &Controller{logger: logger}

	if err := cfg.Validate(); err != nil {
		c.err = err
		logger.Warn("mount skipped", "error", err)
		return c
	}
	if env.Frames == nil {
		c.err = fmt.Errorf("%w: no frame scheduler", ErrCapabilityUnavailable)
		logger.Warn("mount skipped", "error", c.err)
		return c
	}

	rm := NewResourceManager()
	surface, err := rm.Acquire(env.Target, cfg.SurfaceOptions())
	if err != nil {
		rm.Dispose()
		c.err = err
		logger.Warn("graphics unavailable, mount skipped", "error", err)
		return c
	}

	rng := env.Rand
	if rng == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}

	w, h := surface.LogicalSize()
	scene := NewScene()
	camera := NewCamera(cfg.CameraFOV, float32(w)/float32(h), mgl32.Vec3{0, 0, 30})
	camera.ParallaxStrength = cfg.ParallaxStrength
	camera.Smoothing = cfg.Smoothing
	b := &Builder{
		Resources: rm,
		Scene:     scene,
		Camera:    camera,
		Timeline:  NewTimeline(),
		Rand:      rng,
		Config:    cfg,
		Logger:    logger,
	}
	if err := build(content, b); err != nil {
		b.Timeline.Clear()
		for _, fn := range b.cleanup {
			fn()
		}
		rm.Dispose()
		if !errors.Is(err, ErrResourceAcquisition) {
			err = fmt.Errorf("%w: %w", ErrResourceAcquisition, err)
		}
		c.err = err
		logger.Warn("content unavailable, mount skipped", "error", err)
		return c
	}
	if cfg.Debug {
		debugCheckTree(scene, logger)
	}

	c.rm = rm
	c.scene = scene
	c.camera = camera
	c.timeline = b.Timeline
	c.jumpers = b.jumpers
	c.cleanup = b.cleanup
	c.pointer = &PointerState{}
	c.viewport = &ViewportState{}
	c.viewport.Set(w, h)
	c.renderer = NewRenderer(surface, logger, cfg.Debug)
	c.loop = NewLoop(LoopConfig{
		Scheduler: env.Frames,
		Scene:     scene,
		Camera:    camera,
		Timeline:  b.Timeline,
		Pointer:   c.pointer,
		Viewport:  c.viewport,
		Drawer:    c.renderer,
		OnResize: func(vp ViewportSnapshot) {
			rm.Resize(vp.Width, vp.Height)
		},
		Logger: logger,
	})
	for _, h := range b.hooks {
		c.loop.AddHook(h)
	}

	if env.Events != nil {
		c.removers = append(c.removers,
			env.Events.OnPointerMove(func(ev PointerEvent) {
				c.pointer.Set(ev.X, ev.Y, c.viewport.Snapshot())
			}),
			env.Events.OnResize(func(ev ResizeEvent) {
				c.viewport.Set(ev.Width, ev.Height)
			}),
		)
		for _, fn := range b.moves {
			c.removers = append(c.removers, env.Events.OnPointerMove(fn))
		}
		for _, fn := range b.enters {
			c.removers = append(c.removers, env.Events.OnPointerEnter(fn))
		}
		for _, fn := range b.leaves {
			c.removers = append(c.removers, env.Events.OnPointerLeave(fn))
		}
	}

	for _, j := range c.jumpers {
		j.Start()
	}
	c.loop.Start()
	c.mounted = true

	st := rm.Stats()
	logger.Debug("mounted",
		"width", w, "height", h,
		"scale", surface.Scale(),
		"objects", st.Objects,
		"points", st.Points,
		"tweens", c.timeline.Pending(),
	)
	return c
}

// build runs content.Build, converting a panic into an error.
func build(content Content, b *Builder) (err error) {
	if content == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("build content: panic: %v", r)
		}
	}()
	if err := content.Build(b); err != nil {
		return fmt.Errorf("build content: %w", err)
	}
	return nil
}

// Unmount stops the render loop, cancels all timeline entries, removes the
// event listeners, runs the OnUnmount hooks and releases every graphics
// handle. Safe to call any
// number of times, including on an inert controller.
func (c *Controller) Unmount() {
	if !c.mounted {
		return
	}
	c.mounted = false

	c.loop.Stop()
	for _, j := range c.jumpers {
		j.Stop()
	}
	cancelled := 0
	c.scene.Walk(func(o *Object) bool {
		cancelled += c.timeline.CancelAll(o)
		return true
	})
	// Entries on objects already detached from the tree.
	cancelled += c.timeline.Clear()
	for _, remove := range c.removers {
		remove()
	}
	c.removers = nil
	for _, fn := range c.cleanup {
		fn()
	}
	c.cleanup = nil

	c.rm.Dispose()
	st := c.rm.Stats()
	c.logger.Debug("unmounted",
		"frames", c.loop.Frames(),
		"cancelled", cancelled,
		"released", st.Released.Total(),
		"live", st.Live.Total(),
	)
}

// Err returns why the controller is inert, or nil.
func (c *Controller) Err() error { return c.err }

// Active reports whether the view is mounted and not yet unmounted.
func (c *Controller) Active() bool { return c.mounted }

// Scene returns the mounted scene, or nil for an inert controller.
func (c *Controller) Scene() *Scene { return c.scene }

// Camera returns the scene camera.
func (c *Controller) Camera() *Camera { return c.camera }

// Timeline returns the scene timeline.
func (c *Controller) Timeline() *Timeline { return c.timeline }

// Loop returns the render loop.
func (c *Controller) Loop() *Loop { return c.loop }

// Renderer returns the renderer.
func (c *Controller) Renderer() *Renderer { return c.renderer }

// Resources returns the resource manager.
func (c *Controller) Resources() *ResourceManager { return c.rm }

// Pointer returns the pointer state written by pointer events.
func (c *Controller) Pointer() *PointerState { return c.pointer }

// Viewport returns the viewport state written by resize events.
func (c *Controller) Viewport() *ViewportState { return c.viewport }

// Jumpers returns the jumpers created by the content.
func (c *Controller) Jumpers() []*Jumper { return c.jumpers }
