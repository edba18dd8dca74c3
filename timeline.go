package backdrop

import (
	"errors"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// RepeatForever makes an entry repeat until cancelled.
const RepeatForever = -1

// TweenOptions tunes a scheduled entry.
type TweenOptions struct {
	// Repeat is the number of extra legs after the first; RepeatForever
	// never completes.
	Repeat int
	// Yoyo reverses direction on every repeat.
	Yoyo bool
	// Delay defers the start by this many seconds. Nothing is written
	// while the entry waits.
	Delay float32
	// Tag groups entries for CancelTag.
	Tag string
	// OnComplete runs once when a finite entry finishes. It may schedule
	// new entries; those start advancing on the next tick.
	OnComplete func(*Entry)
}

// Entry is one scheduled property animation. Entries are created by
// Timeline.Schedule and mutated only by Timeline.Advance.
type Entry struct {
	id       uint64
	target   *Object
	path     string
	field    *float32
	tween    *gween.Tween
	from, to float32
	duration float32
	opts     TweenOptions

	delayLeft   float32
	legTime     float32
	repeatsLeft int
	reversed    bool

	done      bool
	cancelled bool
}

// Target returns the animated object.
func (e *Entry) Target() *Object { return e.target }

// Property returns the animated property path.
func (e *Entry) Property() string { return e.path }

// Tag returns the entry's tag.
func (e *Entry) Tag() string { return e.opts.Tag }

// Done reports whether the entry ran to completion.
func (e *Entry) Done() bool { return e.done }

// Cancelled reports whether the entry was cancelled before completing.
func (e *Entry) Cancelled() bool { return e.cancelled }

// Active reports whether the entry is still scheduled.
func (e *Entry) Active() bool { return !e.done && !e.cancelled }

// Reversed reports whether the current leg runs from the end value back
// to the start value.
func (e *Entry) Reversed() bool { return e.reversed }

// Waiting reports whether the entry is still in its start delay.
func (e *Entry) Waiting() bool { return e.delayLeft > 0 }

// step advances the entry by dt seconds and writes the new value. Returns
// true when the entry has completed.
func (e *Entry) step(dt float32) bool {
	if e.delayLeft > 0 {
		if dt < e.delayLeft {
			e.delayLeft -= dt
			return false
		}
		dt -= e.delayLeft
		e.delayLeft = 0
	}
	if e.duration <= 0 {
		*e.field = e.to
		return true
	}
	e.legTime += dt
	for e.legTime >= e.duration {
		if e.repeatsLeft == 0 {
			e.legTime = e.duration
			*e.field = e.sample()
			return true
		}
		if e.repeatsLeft > 0 {
			e.repeatsLeft--
		}
		e.legTime -= e.duration
		if e.opts.Yoyo {
			e.reversed = !e.reversed
		}
	}
	*e.field = e.sample()
	return false
}

// sample evaluates the tween at the current leg time. Reversed legs play
// the forward curve backwards so eased yoyos mirror exactly.
func (e *Entry) sample() float32 {
	t := e.legTime
	if e.reversed {
		t = e.duration - t
	}
	v, _ := e.tween.Set(t)
	return v
}

// Timeline advances scheduled entries. It is driven by the render loop but
// keeps its own clock, so entries progress by elapsed seconds rather than
// by frame count. Entries targeting the same property overlap with
// last-write-wins semantics in creation order; there is no blending.
//
// A Timeline is not safe for concurrent use; it belongs to its scene's
// goroutine.
type Timeline struct {
	entries []*Entry
	nextID  uint64
	now     float32
	ticking bool
}

// NewTimeline creates an empty timeline.
func NewTimeline() *Timeline {
	return &Timeline{}
}

// Schedule animates target's property from -> to over duration seconds.
// Without a delay the start value is written immediately.
func (tl *Timeline) Schedule(target *Object, path string, from, to, duration float32, fn ease.TweenFunc, opts TweenOptions) (*Entry, error) {
	if target == nil {
		return nil, errors.New("backdrop: schedule on nil target")
	}
	field, err := resolveProperty(target, path)
	if err != nil {
		return nil, err
	}
	if fn == nil {
		fn = ease.Linear
	}
	tl.nextID++
	e := &Entry{
		id:          tl.nextID,
		target:      target,
		path:        path,
		field:       field,
		tween:       gween.New(from, to, duration, fn),
		from:        from,
		to:          to,
		duration:    duration,
		opts:        opts,
		delayLeft:   max(opts.Delay, 0),
		repeatsLeft: opts.Repeat,
	}
	if e.delayLeft == 0 {
		*field = from
	}
	tl.entries = append(tl.entries, e)
	return e, nil
}

// To animates target's property from its current value to to.
func (tl *Timeline) To(target *Object, path string, to, duration float32, fn ease.TweenFunc, opts TweenOptions) (*Entry, error) {
	if target == nil {
		return nil, errors.New("backdrop: schedule on nil target")
	}
	field, err := resolveProperty(target, path)
	if err != nil {
		return nil, err
	}
	return tl.Schedule(target, path, *field, to, duration, fn, opts)
}

// Advance moves every active entry forward by dt seconds in creation order.
// Entries whose target has been disposed are cancelled without writing.
func (tl *Timeline) Advance(dt float32) {
	if dt < 0 {
		dt = 0
	}
	tl.now += dt
	tl.ticking = true
	n := len(tl.entries)
	for i := 0; i < n; i++ {
		e := tl.entries[i]
		if !e.Active() {
			continue
		}
		if e.target.IsDisposed() {
			e.cancelled = true
			continue
		}
		if e.step(dt) {
			e.done = true
			if e.opts.OnComplete != nil {
				e.opts.OnComplete(e)
			}
		}
	}
	tl.ticking = false
	tl.compact()
}

// Now returns the total seconds advanced.
func (tl *Timeline) Now() float32 {
	return tl.now
}

// Cancel removes e before completion. OnComplete is not called.
func (tl *Timeline) Cancel(e *Entry) {
	if e == nil || !e.Active() {
		return
	}
	e.cancelled = true
	if !tl.ticking {
		tl.compact()
	}
}

// CancelAll cancels every entry animating target and returns how many
// were cancelled.
func (tl *Timeline) CancelAll(target *Object) int {
	return tl.cancelWhere(func(e *Entry) bool { return e.target == target })
}

// CancelTag cancels every entry with the given tag.
func (tl *Timeline) CancelTag(tag string) int {
	return tl.cancelWhere(func(e *Entry) bool { return e.opts.Tag == tag })
}

// Clear cancels every entry.
func (tl *Timeline) Clear() int {
	return tl.cancelWhere(func(*Entry) bool { return true })
}

func (tl *Timeline) cancelWhere(match func(*Entry) bool) int {
	count := 0
	for _, e := range tl.entries {
		if e.Active() && match(e) {
			e.cancelled = true
			count++
		}
	}
	if count > 0 && !tl.ticking {
		tl.compact()
	}
	return count
}

// Pending returns the number of active entries.
func (tl *Timeline) Pending() int {
	count := 0
	for _, e := range tl.entries {
		if e.Active() {
			count++
		}
	}
	return count
}

// Entries returns a copy of the active entries in creation order.
func (tl *Timeline) Entries() []*Entry {
	out := make([]*Entry, 0, len(tl.entries))
	for _, e := range tl.entries {
		if e.Active() {
			out = append(out, e)
		}
	}
	return out
}

// compact drops finished and cancelled entries in place.
func (tl *Timeline) compact() {
	kept := tl.entries[:0]
	for _, e := range tl.entries {
		if e.Active() {
			kept = append(kept, e)
		}
	}
	for i := len(kept); i < len(tl.entries); i++ {
		tl.entries[i] = nil
	}
	tl.entries = kept
}
