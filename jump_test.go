package backdrop

import (
	"slices"
	"testing"
)

func testJump() JumpConfig {
	cfg := DefaultJump
	cfg.IdleDelay = Range{Min: 1, Max: 1}
	return cfg
}

func TestJumperCycle(t *testing.T) {
	tl := NewTimeline()
	o := NewMesh("m", nil, nil)
	o.Position[1] = 2
	cfg := testJump()
	j := NewJumper(tl, o, cfg, newTestRand())
	var states []JumpState
	j.OnState = func(s JumpState) { states = append(states, s) }

	j.Start()
	if j.State() != JumpIdle || !j.Running() {
		t.Fatalf("after Start: state = %v, running = %v", j.State(), j.Running())
	}

	tl.Advance(1)
	if j.State() != JumpAnticipating {
		t.Fatalf("after idle delay: state = %v, want anticipating", j.State())
	}
	tl.Advance(cfg.Anticipate)
	if j.State() != JumpRising {
		t.Fatalf("state = %v, want rising", j.State())
	}
	if !approx(o.Scale[1], cfg.Squash) {
		t.Errorf("scale.y at take-off = %f, want %f", o.Scale[1], cfg.Squash)
	}
	tl.Advance(cfg.Rise)
	if j.State() != JumpPeak {
		t.Fatalf("state = %v, want peak", j.State())
	}
	if !approx(o.Position[1], 2+cfg.Height) || !approx(o.Scale[1], 1) {
		t.Errorf("at peak: y = %f, scale.y = %f", o.Position[1], o.Scale[1])
	}
	tl.Advance(cfg.Hold)
	if j.State() != JumpFalling {
		t.Fatalf("state = %v, want falling", j.State())
	}
	tl.Advance(cfg.Fall)
	if j.State() != JumpIdle || j.Jumps() != 1 {
		t.Fatalf("after landing: state = %v, jumps = %d", j.State(), j.Jumps())
	}
	if !approx(o.Position[1], 2) {
		t.Errorf("landed at y = %f, want 2", o.Position[1])
	}

	want := []JumpState{JumpIdle, JumpAnticipating, JumpRising, JumpPeak, JumpFalling, JumpIdle}
	if !slices.Equal(states, want) {
		t.Errorf("states = %v, want %v", states, want)
	}
}

func TestJumperEntriesAreTagged(t *testing.T) {
	tl := NewTimeline()
	o := NewMesh("m", nil, nil)
	cfg := testJump()
	cfg.Spin = true
	j := NewJumper(tl, o, cfg, newTestRand())
	j.Start()
	tl.Advance(1)
	tl.Advance(cfg.Anticipate)
	// Rising schedules scale, spin and height.
	if tl.Pending() != 3 {
		t.Fatalf("Pending while rising = %d, want 3", tl.Pending())
	}
	for _, e := range tl.Entries() {
		if e.Tag() != j.Tag() {
			t.Errorf("entry %s tagged %q, want %q", e.Property(), e.Tag(), j.Tag())
		}
	}
}

func TestJumperStopRestores(t *testing.T) {
	tests := []struct {
		name string
		spin bool
	}{
		{"hop", false},
		{"spin", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl := NewTimeline()
			o := NewMesh("m", nil, nil)
			o.Rotation[1] = 0.25
			cfg := testJump()
			cfg.Spin = tt.spin
			j := NewJumper(tl, o, cfg, newTestRand())
			j.Start()
			tl.Advance(1)
			tl.Advance(cfg.Anticipate)
			tl.Advance(cfg.Rise / 2)
			if tt.spin && approx(o.Rotation[1], 0.25) {
				t.Fatal("spin did not turn the target mid-rise")
			}

			j.Stop()
			if o.Position[1] != 0 || o.Scale[1] != 1 || o.Rotation[1] != 0.25 {
				t.Errorf("after Stop: y = %f, scale.y = %f, rot.y = %f; want 0, 1, 0.25",
					o.Position[1], o.Scale[1], o.Rotation[1])
			}
			if j.Running() || j.State() != JumpIdle || tl.Pending() != 0 {
				t.Errorf("running = %v, state = %v, pending = %d", j.Running(), j.State(), tl.Pending())
			}
			tl.Advance(10)
			if o.Position[1] != 0 || o.Rotation[1] != 0.25 {
				t.Errorf("stopped jumper moved target to y = %f, rot.y = %f", o.Position[1], o.Rotation[1])
			}
			j.Stop()
		})
	}
}

func TestJumperRandomIdleDelay(t *testing.T) {
	tl := NewTimeline()
	o := NewMesh("m", nil, nil)
	j := NewJumper(tl, o, DefaultJump, &seqRand{vals: []float64{0.5}})
	j.Start()
	// Range{2, 8} at 0.5 is a 5 s delay.
	tl.Advance(4.9)
	if j.State() != JumpIdle {
		t.Fatalf("state = %v before the delay elapsed", j.State())
	}
	tl.Advance(0.2)
	if j.State() != JumpAnticipating {
		t.Errorf("state = %v after the delay, want anticipating", j.State())
	}
}

func TestJumperDisposedTarget(t *testing.T) {
	tl := NewTimeline()
	o := NewMesh("m", nil, nil)
	j := NewJumper(tl, o, testJump(), newTestRand())
	j.Start()
	o.Dispose()
	tl.Advance(5)
	if tl.Pending() != 0 {
		t.Errorf("Pending = %d for a disposed target", tl.Pending())
	}
	j.Stop()
}

func TestJumpStateString(t *testing.T) {
	tests := []struct {
		s    JumpState
		want string
	}{
		{JumpIdle, "idle"},
		{JumpAnticipating, "anticipating"},
		{JumpRising, "rising"},
		{JumpPeak, "peak"},
		{JumpFalling, "falling"},
		{JumpState(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}
