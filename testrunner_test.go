package backdrop

import (
	"strings"
	"testing"
)

func TestLoadTestScriptErrors(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{"invalid json", `{"steps": [`, "parse test script"},
		{"no steps", `{"steps": []}`, "no steps"},
		{"unknown action", `{"steps": [{"action": "click"}]}`, `unknown action "click"`},
		{"empty resize", `{"steps": [{"action": "resize"}]}`, "resize to 0x0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadTestScript([]byte(tt.json))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestTestRunnerSequence(t *testing.T) {
	runner, err := LoadTestScript([]byte(`{
		"steps": [
			{"action": "pointer", "x": 10, "y": 20},
			{"action": "wait", "frames": 2},
			{"action": "resize", "width": 300, "height": 200}
		],
		"quit": true
	}`))
	if err != nil {
		t.Fatal(err)
	}
	w := NewWindow(800, 600, nil)
	w.SetTestRunner(runner)

	var log []string
	w.OnPointerMove(func(ev PointerEvent) { log = append(log, "pointer") })
	w.OnResize(func(ev ResizeEvent) { log = append(log, "resize") })

	frames := 0
	for !runner.Done() && frames < 20 {
		runner.step(w)
		w.processInjected()
		frames++
	}
	if !runner.Done() {
		t.Fatal("runner never finished")
	}
	if frames != 5 {
		t.Errorf("finished after %d frames, want 5", frames)
	}
	if strings.Join(log, ",") != "pointer,resize" {
		t.Errorf("events = %v, want [pointer resize]", log)
	}
	if width, height := w.Size(); width != 300 || height != 200 {
		t.Errorf("size = %dx%d, want 300x200", width, height)
	}
	if !runner.quit {
		t.Error("quit flag not loaded")
	}
}

func TestTestRunnerWaitsForInjections(t *testing.T) {
	runner, err := LoadTestScript([]byte(`{"steps": [
		{"action": "path", "fromX": 0, "fromY": 0, "toX": 10, "toY": 10, "frames": 3},
		{"action": "screenshot", "label": "after path"}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	w := NewWindow(100, 100, nil)

	runner.step(w) // queues the path
	runner.step(w) // blocked on the queued path
	if len(w.shotQueue) != 0 {
		t.Fatal("screenshot queued while the path was still injecting")
	}
	for w.processInjected() {
	}
	runner.step(w)
	if len(w.shotQueue) != 1 || w.shotQueue[0] != "after path" {
		t.Errorf("shot queue = %v, want [after path]", w.shotQueue)
	}
	if !runner.Done() {
		t.Error("runner not done after the last step")
	}
}
