package backdrop

import (
	"encoding/json"
	"errors"
	"fmt"
)

type stepKind uint8

const (
	stepPointer stepKind = iota
	stepPath
	stepResize
	stepWait
	stepScreenshot
)

var stepKinds = map[string]stepKind{
	"pointer":    stepPointer,
	"path":       stepPath,
	"resize":     stepResize,
	"wait":       stepWait,
	"screenshot": stepScreenshot,
}

// rawStep is one entry of the JSON "steps" array.
type rawStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Width  int     `json:"width,omitempty"`
	Height int     `json:"height,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

// scriptStep is a validated step.
type scriptStep struct {
	kind stepKind
	raw  rawStep
}

// TestRunner plays a scripted sequence of injected input and screenshots
// against a Window, one step per Update. Attach it with SetTestRunner.
//
// A script is a JSON object {"steps": [...], "quit": bool}. Step actions:
// "pointer" (x, y), "path" (fromX, fromY, toX, toY, frames),
// "resize" (width, height), "wait" (frames) and "screenshot" (label).
type TestRunner struct {
	steps []scriptStep
	next  int
	sleep int
	done  bool
	quit  bool
}

// LoadTestScript parses and validates a JSON test script.
func LoadTestScript(data []byte) (*TestRunner, error) {
	var doc struct {
		Steps []rawStep `json:"steps"`
		Quit  bool      `json:"quit,omitempty"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(doc.Steps) == 0 {
		return nil, errors.New("parse test script: no steps")
	}
	r := &TestRunner{quit: doc.Quit, steps: make([]scriptStep, len(doc.Steps))}
	for i, raw := range doc.Steps {
		kind, ok := stepKinds[raw.Action]
		if !ok {
			return nil, fmt.Errorf("parse test script: step %d: unknown action %q", i, raw.Action)
		}
		if kind == stepResize && (raw.Width <= 0 || raw.Height <= 0) {
			return nil, fmt.Errorf("parse test script: step %d: resize to %dx%d", i, raw.Width, raw.Height)
		}
		r.steps[i] = scriptStep{kind: kind, raw: raw}
	}
	return r, nil
}

// SetTestRunner attaches runner to the window; it steps at the start of
// every Update.
func (w *Window) SetTestRunner(runner *TestRunner) {
	w.runner = runner
}

// Done reports whether every step has run.
func (r *TestRunner) Done() bool {
	return r.done
}

// step runs at most one script step. It holds while injected events are
// still queued or a wait is counting down.
func (r *TestRunner) step(w *Window) {
	switch {
	case r.done, w.Injecting():
		return
	case r.sleep > 0:
		r.sleep--
		return
	case r.next == len(r.steps):
		r.done = true
		return
	}

	s := r.steps[r.next].raw
	switch r.steps[r.next].kind {
	case stepPointer:
		w.InjectPointer(s.X, s.Y)
	case stepPath:
		w.InjectPointerPath(s.FromX, s.FromY, s.ToX, s.ToY, s.Frames)
	case stepResize:
		w.InjectResize(s.Width, s.Height)
	case stepWait:
		// The current frame is the first one waited.
		r.sleep = max(s.Frames-1, 0)
	case stepScreenshot:
		w.Screenshot(s.Label)
	}
	r.next++
	r.done = r.next == len(r.steps) && r.sleep == 0 && !w.Injecting()
}
