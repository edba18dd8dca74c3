// Package backdrop mounts persistent, animated 3D background scenes on
// [Ebitengine] and tears them down again without leaking graphics handles.
//
// A mounted view owns a render surface, a scene of point clouds, lines and
// meshes, a timeline of property tweens and a self-rescheduling render
// loop. Unmounting stops the loop, cancels every tween, removes event
// listeners and releases every handle exactly once.
//
// # Quick start
//
// The simplest way to get started is [Run], which opens a window and mounts
// a content preset in it:
//
//	cfg := backdrop.DefaultConfig()
//	if err := backdrop.Run(backdrop.RunConfig{
//		Title: "Cosmic", Width: 1280, Height: 720, Config: cfg,
//	}, backdrop.NewCosmic()); err != nil {
//		log.Fatal(err)
//	}
//
// Hosts that manage their own window call [Mount] with an [Env] describing
// the display target, the frame scheduler and the event source, and keep the
// returned [Controller] until the view goes away:
//
//	ctrl := backdrop.Mount(backdrop.Env{
//		Target: host, Frames: host, Events: host,
//	}, cfg, content)
//	defer ctrl.Unmount()
//	if err := ctrl.Err(); err != nil {
//		// Graphics unavailable; the controller is inert.
//	}
//
// Mount never panics. When the display target has no graphics it returns an
// inert controller whose Err wraps [ErrCapabilityUnavailable]; when content
// fails to build, everything acquired so far is released and Err wraps
// [ErrResourceAcquisition].
//
// # Content
//
// A [Content] populates the scene through a [Builder]: it creates geometry,
// materials and textures with [ResourceManager], attaches objects, schedules
// tweens on the [Timeline] and registers per-frame hooks and pointer
// handlers. Three presets ship with the package: [Cosmic] (a rotating star
// field with an orbiting wireframe globe), [Letters] (floating block
// letters that bob, pulse, jump and light up under the pointer) and
// [Trail] (binary digits shed by the pointer that fall and fade).
//
// # Timeline
//
// [Timeline.Schedule] animates a float property of an object, addressed by a
// path such as [PropPositionY] or [PropMaterialOpacity], with a gween easing
// function. Entries support delay, repeat, yoyo, tags and completion
// callbacks. Overlapping entries on one property resolve last-write-wins in
// creation order.
//
// # Render loop
//
// [Loop] requests one frame at a time from a [FrameScheduler]. Each frame
// reads the pointer and viewport state, advances the timeline, runs frame
// hooks, drifts the camera toward its parallax target and draws. Stop
// guarantees that no further frame draws, even if the host invokes a stale
// callback.
//
// [Ebitengine]: https://ebitengine.org
package backdrop
