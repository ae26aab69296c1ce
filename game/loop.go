package game

// Loop couples a LoopScheduler with a ViewportWatcher. Host environments
// call Frame once per display frame.
type Loop struct {
	scheduler *LoopScheduler
	watcher   *ViewportWatcher
	frames    uint64
}

// NewLoop creates a loop watching source.
func NewLoop(source ViewportSource) *Loop {
	return &Loop{
		scheduler: NewLoopScheduler(),
		watcher:   NewViewportWatcher(source),
	}
}

// Scheduler returns the frame scheduler to hand to an Animator.
func (l *Loop) Scheduler() *LoopScheduler {
	return l.scheduler
}

// Watcher returns the resize notifier to hand to an Animator.
func (l *Loop) Watcher() *ViewportWatcher {
	return l.watcher
}

// Frame delivers pending resize notifications, then runs scheduled callbacks.
// Returns the number of callbacks run.
func (l *Loop) Frame() int {
	l.frames++
	l.watcher.Poll()
	return l.scheduler.RunFrame()
}

// Frames returns the number of host frames run.
func (l *Loop) Frames() uint64 {
	return l.frames
}

// Idle reports whether nothing is scheduled for the next frame.
func (l *Loop) Idle() bool {
	return l.scheduler.Pending() == 0
}

// Run calls Frame until the loop goes idle, stop returns true, or maxFrames
// host frames have run (0 = unlimited).
func (l *Loop) Run(maxFrames uint64, stop func() bool) {
	for !l.Idle() {
		if stop != nil && stop() {
			return
		}
		if maxFrames > 0 && l.frames >= maxFrames {
			return
		}
		l.Frame()
	}
}
