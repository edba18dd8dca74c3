package backdrop

// syntheticEvent is a single injected input event. Pointer coordinates are
// logical window pixels, matching what real cursor input reports.
type syntheticEvent struct {
	resize        bool
	x, y          float64
	width, height int
}

// InjectPointer queues a pointer move to (x, y). The event is consumed on
// the next Update.
func (w *Window) InjectPointer(x, y float64) {
	w.injectQueue = append(w.injectQueue, syntheticEvent{x: x, y: y})
}

// InjectPointerPath queues pointer moves linearly interpolated from
// (fromX, fromY) to (toX, toY), one per frame. Minimum frames is 2.
func (w *Window) InjectPointerPath(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	for i := 0; i < frames; i++ {
		t := float64(i) / float64(frames-1)
		w.InjectPointer(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
}

// InjectResize queues a resize event as if the window had been resized.
// The injected size holds until the real window size changes.
func (w *Window) InjectResize(width, height int) {
	w.injectQueue = append(w.injectQueue, syntheticEvent{resize: true, width: width, height: height})
}

// Injecting reports whether injected events are still queued.
func (w *Window) Injecting() bool {
	return len(w.injectQueue) > 0
}

// processInjected pops one queued event and publishes it. Returns true if
// an event was consumed (real cursor input should be skipped).
func (w *Window) processInjected() bool {
	if len(w.injectQueue) == 0 {
		return false
	}
	ev := w.injectQueue[0]
	copy(w.injectQueue, w.injectQueue[1:])
	w.injectQueue = w.injectQueue[:len(w.injectQueue)-1]

	if ev.resize {
		width, height := max(ev.width, 1), max(ev.height, 1)
		w.mu.Lock()
		w.width, w.height = width, height
		w.sizeOverride = true
		w.mu.Unlock()
		w.ResizeTo(width, height)
		return true
	}
	w.pointerAt(ev.x, ev.y)
	return true
}
