package watch

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/sandroweb/html-template-project/internal/events"
	ferrors "github.com/sandroweb/html-template-project/internal/foundation/errors"
	"github.com/sandroweb/html-template-project/internal/tasks"
)

type DebouncerConfig struct {
	QuietWindow time.Duration
	MaxDelay    time.Duration
}

// Debouncer coalesces bursts of FileTouched events into one FilesChanged.
// A burst ends after QuietWindow without changes, or MaxDelay after its first
// change, whichever comes first.
type Debouncer struct {
	bus     *events.Bus
	trigger *Trigger
	cfg     DebouncerConfig

	readyOnce sync.Once
	ready     chan struct{}

	mu    sync.Mutex
	paths []string
}

func NewDebouncer(bus *events.Bus, trigger *Trigger, cfg DebouncerConfig) (*Debouncer, error) {
	if bus == nil {
		return nil, ferrors.ValidationError("bus is required").Build()
	}
	if trigger == nil {
		return nil, ferrors.ValidationError("trigger is required").Build()
	}
	if cfg.QuietWindow <= 0 {
		return nil, ferrors.ValidationError("quiet window must be > 0").Build()
	}
	if cfg.MaxDelay <= 0 {
		return nil, ferrors.ValidationError("max delay must be > 0").Build()
	}
	return &Debouncer{bus: bus, trigger: trigger, cfg: cfg, ready: make(chan struct{})}, nil
}

// Ready is closed once Run has subscribed to the bus.
func (d *Debouncer) Ready() <-chan struct{} {
	return d.ready
}

func (d *Debouncer) Run(ctx context.Context) error {
	touched, unsubscribe := events.Subscribe[events.FileTouched](d.bus, 256)
	defer unsubscribe()

	d.readyOnce.Do(func() { close(d.ready) })

	quietTimer := stoppedTimer()
	maxTimer := stoppedTimer()
	var quietC, maxC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-touched:
			if !ok {
				return nil
			}
			first := d.add(evt.Path)
			resetTimer(quietTimer, d.cfg.QuietWindow)
			quietC = quietTimer.C
			if first {
				resetTimer(maxTimer, d.cfg.MaxDelay)
				maxC = maxTimer.C
			}
		case <-quietC:
			d.emit(ctx, "quiet")
			quietC, maxC = nil, nil
			stopTimer(maxTimer)
		case <-maxC:
			d.emit(ctx, "max_delay")
			quietC, maxC = nil, nil
			stopTimer(quietTimer)
		}
	}
}

// add records p and reports whether it opened a new burst.
func (d *Debouncer) add(p string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	first := len(d.paths) == 0
	if !slices.Contains(d.paths, p) {
		d.paths = append(d.paths, p)
	}
	return first
}

func (d *Debouncer) emit(ctx context.Context, cause string) {
	d.mu.Lock()
	paths := d.paths
	d.paths = nil
	d.mu.Unlock()

	names := d.trigger.OnChanges(paths)
	if len(names) == 0 {
		return
	}
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = string(n)
	}
	_ = d.bus.Publish(ctx, events.FilesChanged{
		Paths:       paths,
		Tasks:       out,
		Cause:       cause,
		TriggeredAt: time.Now(),
	})
}

// taskNames converts the names carried by a FilesChanged event.
func taskNames(in []string) []tasks.Name {
	out := make([]tasks.Name, len(in))
	for i, n := range in {
		out[i] = tasks.Name(n)
	}
	return out
}

func stoppedTimer() *time.Timer {
	t := time.NewTimer(time.Hour)
	stopTimer(t)
	return t
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}

func resetTimer(t *time.Timer, after time.Duration) {
	stopTimer(t)
	t.Reset(after)
}
