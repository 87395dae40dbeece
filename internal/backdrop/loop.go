package backdrop

import (
	"context"
	"sync"
	"time"
)

// Loop drives a mounted scene. Release it on every exit path.
type Loop struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Mount starts stepping scene every interval and hands a copy of each
// frame to onFrame. The loop stops when ctx is cancelled or on Release.
func Mount(ctx context.Context, scene *Scene, interval time.Duration, onFrame func(*Scene)) *Loop {
	ctx, cancel := context.WithCancel(ctx)
	l := &Loop{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(l.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		start := time.Now()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				scene.Step(float64(now.Sub(start).Milliseconds()))
				if onFrame != nil {
					onFrame(scene.Clone())
				}
			}
		}
	}()

	return l
}

// Release stops the loop and waits for it to exit. Safe to call more
// than once and from several goroutines.
func (l *Loop) Release() {
	l.once.Do(l.cancel)
	<-l.done
}

// Done is closed once the loop has exited
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
