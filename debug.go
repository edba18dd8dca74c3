package backdrop

import (
	"io"
	"log/slog"
)

// discardLogger is used wherever a nil *slog.Logger is passed.
var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// debugLogInterval is the number of frames between debug stat lines.
const debugLogInterval = 60

// debugLog reports timing and draw-call stats. Only called in debug mode.
func (r *Renderer) debugLog() {
	if r.frames%debugLogInterval != 0 {
		return
	}
	st := r.stats
	r.logger.Debug("frame",
		"frame", r.frames,
		"traverse", st.TraverseTime,
		"sort", st.SortTime,
		"submit", st.SubmitTime,
		"total", st.TraverseTime+st.SortTime+st.SubmitTime,
		"commands", st.Commands,
		"draw_calls", st.DrawCalls,
		"vertices", st.Vertices,
	)
}

// debugMaxTreeDepth is the depth past which debugCheckTree warns.
const debugMaxTreeDepth = 32

// debugCheckTree warns when the scene tree is deeper than debugMaxTreeDepth.
// Deep trees usually mean objects are being re-parented in a loop.
func debugCheckTree(s *Scene, logger *slog.Logger) {
	deepest := 0
	var walk func(o *Object, depth int)
	walk = func(o *Object, depth int) {
		deepest = max(deepest, depth)
		for _, c := range o.children {
			walk(c, depth+1)
		}
	}
	walk(s.root, 0)
	if deepest > debugMaxTreeDepth {
		logger.Warn("scene tree is deep", "depth", deepest, "threshold", debugMaxTreeDepth)
	}
}
