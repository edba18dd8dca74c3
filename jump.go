package backdrop

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/tanema/gween/ease"
)

// JumpState is a phase of a Jumper's cycle.
type JumpState uint8

const (
	JumpIdle         JumpState = iota // waiting a random delay
	JumpAnticipating                  // squashing before take-off
	JumpRising                        // moving up, stretching back
	JumpPeak                          // holding at the top
	JumpFalling                       // dropping back with a bounce
)

func (s JumpState) String() string {
	switch s {
	case JumpIdle:
		return "idle"
	case JumpAnticipating:
		return "anticipating"
	case JumpRising:
		return "rising"
	case JumpPeak:
		return "peak"
	case JumpFalling:
		return "falling"
	default:
		return "unknown"
	}
}

// JumpConfig shapes a Jumper's cycle. Durations are in seconds.
type JumpConfig struct {
	IdleDelay  Range
	Height     float32
	Squash     float32 // scale.y at the bottom of the anticipation
	Anticipate float32
	Rise       float32
	Hold       float32
	Fall       float32
	Spin       bool // one full turn around Y while rising
}

// DefaultJump is the jump used by the letters preset.
var DefaultJump = JumpConfig{
	IdleDelay:  Range{Min: 2, Max: 8},
	Height:     1.2,
	Squash:     0.8,
	Anticipate: 0.15,
	Rise:       0.35,
	Hold:       0.12,
	Fall:       0.45,
}

// Jumper makes an object hop at random intervals. Each phase is a single
// tagged timeline entry whose completion moves the machine to the next
// phase: Idle -> Anticipating -> Rising -> Peak -> Falling -> Idle.
type Jumper struct {
	tl     *Timeline
	target *Object
	cfg    JumpConfig
	rng    RandomSource
	tag    string

	state   JumpState
	running bool
	baseY   float32
	baseRot float32
	jumps   int

	// OnState, when set, is called after every transition.
	OnState func(JumpState)
}

// NewJumper creates a stopped Jumper for target.
func NewJumper(tl *Timeline, target *Object, cfg JumpConfig, rng RandomSource) *Jumper {
	return &Jumper{
		tl:     tl,
		target: target,
		cfg:    cfg,
		rng:    rng,
		tag:    fmt.Sprintf("jump:%d", target.ID),
	}
}

// Start records the target's resting height and spin angle and enters Idle.
// No-op if already running.
func (j *Jumper) Start() {
	if j.running {
		return
	}
	j.running = true
	j.baseY = j.target.Position[1]
	j.baseRot = j.target.Rotation[1]
	j.enter(JumpIdle)
}

// Stop cancels the current phase and puts the target back at rest.
func (j *Jumper) Stop() {
	if !j.running {
		return
	}
	j.running = false
	j.tl.CancelTag(j.tag)
	if !j.target.IsDisposed() {
		j.target.Position[1] = j.baseY
		j.target.Scale[1] = 1
		j.target.Rotation[1] = j.baseRot
	}
	j.state = JumpIdle
}

// State returns the current phase.
func (j *Jumper) State() JumpState {
	return j.state
}

// Running reports whether the jumper is cycling.
func (j *Jumper) Running() bool {
	return j.running
}

// Jumps returns the number of completed jumps.
func (j *Jumper) Jumps() int {
	return j.jumps
}

// Tag returns the tag shared by this jumper's timeline entries.
func (j *Jumper) Tag() string {
	return j.tag
}

func (j *Jumper) enter(s JumpState) {
	if !j.running || j.target.IsDisposed() {
		return
	}
	j.state = s
	top := j.baseY + j.cfg.Height
	opts := TweenOptions{Tag: j.tag}

	switch s {
	case JumpIdle:
		opts.Delay = j.cfg.IdleDelay.Random(j.rng)
		opts.OnComplete = j.next(JumpAnticipating)
		j.schedule(PropPositionY, j.baseY, j.baseY, 0, nil, opts)
	case JumpAnticipating:
		opts.OnComplete = j.next(JumpRising)
		j.schedule(PropScaleY, 1, j.cfg.Squash, j.cfg.Anticipate, ease.OutQuad, opts)
	case JumpRising:
		j.schedule(PropScaleY, j.cfg.Squash, 1, j.cfg.Rise, ease.OutQuad, TweenOptions{Tag: j.tag})
		if j.cfg.Spin {
			r := j.target.Rotation[1]
			j.schedule(PropRotationY, r, r+2*math32.Pi, j.cfg.Rise, ease.InOutSine, TweenOptions{Tag: j.tag})
		}
		opts.OnComplete = j.next(JumpPeak)
		j.schedule(PropPositionY, j.baseY, top, j.cfg.Rise, ease.OutCubic, opts)
	case JumpPeak:
		opts.OnComplete = j.next(JumpFalling)
		j.schedule(PropPositionY, top, top, j.cfg.Hold, nil, opts)
	case JumpFalling:
		opts.OnComplete = func(*Entry) {
			j.jumps++
			j.enter(JumpIdle)
		}
		j.schedule(PropPositionY, top, j.baseY, j.cfg.Fall, ease.OutBounce, opts)
	}
	if j.OnState != nil {
		j.OnState(s)
	}
}

func (j *Jumper) next(s JumpState) func(*Entry) {
	return func(*Entry) { j.enter(s) }
}

func (j *Jumper) schedule(path string, from, to, d float32, fn ease.TweenFunc, opts TweenOptions) {
	// Paths are fixed transform fields, which always resolve.
	_, _ = j.tl.Schedule(j.target, path, from, to, d, fn, opts)
}
