package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/1broseidon/splitwm/internal/tracing"
	"github.com/google/uuid"
)

var (
	// ErrUnknownChord is returned when no binding matches a chord.
	ErrUnknownChord = errors.New("no binding for chord")
	// ErrQueueFull is returned when the dispatch queue cannot take another job.
	ErrQueueFull = errors.New("dispatch queue full")
	// ErrStopped is returned after Stop.
	ErrStopped = errors.New("dispatcher stopped")
	// ErrNoTab is returned when a click hits no workspace tab.
	ErrNoTab = errors.New("click outside workspace tabs")
)

// DispatcherConfig sizes the worker pool.
type DispatcherConfig struct {
	Workers   int
	QueueSize int
	Logger    *slog.Logger
	Tracer    *tracing.Tracer
}

type job struct {
	id    string
	chord string
	cmd   *Command
}

// Dispatcher looks up bound chords and runs their commands on a fixed pool
// of workers. At most one worker executes a given command at a time: a job
// for a command that is already running is parked on the command and run by
// that same worker afterwards, so repeated presses of one chord run in order
// and never tie up the rest of the pool. Dispatch never blocks the caller.
type Dispatcher struct {
	exec    Executor
	logger  *slog.Logger
	tracer  *tracing.Tracer
	workers int

	mu       sync.RWMutex
	bindings map[string]*Command
	adhoc    map[string]*Command
	stopped  bool

	jobs chan job
	wg   sync.WaitGroup
	once sync.Once
}

// NewDispatcher creates a dispatcher. Call Start before dispatching.
func NewDispatcher(exec Executor, cfg DispatcherConfig) *Dispatcher {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}
	queue := cfg.QueueSize
	if queue <= 0 {
		queue = 64
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = tracing.Noop()
	}
	return &Dispatcher{
		exec:     exec,
		logger:   logger,
		tracer:   tracer,
		workers:  workers,
		bindings: make(map[string]*Command),
		adhoc:    make(map[string]*Command),
		jobs:     make(chan job, queue),
	}
}

// Start launches the workers. They exit when ctx is done or Stop is called.
func (d *Dispatcher) Start(ctx context.Context) {
	d.once.Do(func() {
		for i := 0; i < d.workers; i++ {
			d.wg.Add(1)
			go d.worker(ctx)
		}
		d.logger.Info("dispatcher started", "workers", d.workers, "queue", cap(d.jobs))
	})
}

// Stop stops accepting jobs, lets queued ones finish and waits for workers.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.jobs)
	d.mu.Unlock()
	d.wg.Wait()
}

// Replace swaps the binding table. Commands whose chord and text are
// unchanged keep their identity so an in-flight execution still excludes a
// new press.
func (d *Dispatcher) Replace(bindings []Binding) {
	d.mu.Lock()
	defer d.mu.Unlock()

	next := make(map[string]*Command, len(bindings))
	for _, b := range bindings {
		if b.Command == nil {
			continue
		}
		if old, ok := d.bindings[b.Chord]; ok && old.String() == b.Command.String() {
			next[b.Chord] = old
			continue
		}
		next[b.Chord] = b.Command
	}
	d.bindings = next
}

// Lookup returns the command bound to chord.
func (d *Dispatcher) Lookup(chord string) (*Command, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	cmd, ok := d.bindings[chord]
	return cmd, ok
}

// Dispatch queues the command bound to chord and returns the job id.
func (d *Dispatcher) Dispatch(chord string) (string, error) {
	cmd, ok := d.Lookup(chord)
	if !ok {
		return "", fmt.Errorf("%s: %w", chord, ErrUnknownChord)
	}
	return d.enqueue(chord, cmd)
}

// Submit queues a command received outside a key binding, e.g. over IPC.
// Requests with the same text share one Command, and a bound command with
// that text is reused, so they serialize with each other and with the chord.
func (d *Dispatcher) Submit(cmd *Command) (string, error) {
	return d.enqueue("", d.canonical(cmd))
}

func (d *Dispatcher) canonical(cmd *Command) *Command {
	key := cmd.String()

	d.mu.Lock()
	defer d.mu.Unlock()
	for _, bound := range d.bindings {
		if bound.String() == key {
			return bound
		}
	}
	if known, ok := d.adhoc[key]; ok {
		return known
	}
	d.adhoc[key] = cmd
	return cmd
}

// Click resolves a status-bar click to a workspace tab and queues a switch.
func (d *Dispatcher) Click(x, y int, tabs []Tab) (string, error) {
	tab, ok := TabAt(x, y, tabs)
	if !ok {
		return "", ErrNoTab
	}
	cmd, err := New(Workspace, tab.Workspace)
	if err != nil {
		return "", err
	}
	return d.enqueue("", d.canonical(cmd))
}

func (d *Dispatcher) enqueue(chord string, cmd *Command) (string, error) {
	j := job{id: uuid.New().String(), chord: chord, cmd: cmd}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return "", ErrStopped
	}
	if cmd.backlog() >= cap(d.jobs) {
		d.logger.Warn("dispatch dropped, command backlog full", "command", cmd.String(), "chord", chord)
		return "", ErrQueueFull
	}
	select {
	case d.jobs <- j:
		return j.id, nil
	default:
		d.logger.Warn("dispatch dropped, queue full", "command", cmd.String(), "chord", chord)
		return "", ErrQueueFull
	}
}

func (d *Dispatcher) worker(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-d.jobs:
			if !ok {
				return
			}
			d.handle(ctx, j)
		}
	}
}

// handle runs j and then any jobs parked on its command meanwhile. A job
// whose command is busy elsewhere is parked and the worker moves on.
func (d *Dispatcher) handle(ctx context.Context, j job) {
	cmd := j.cmd
	if !cmd.claim(j) {
		return
	}
	for {
		d.run(ctx, j)
		if ctx.Err() != nil {
			if n := cmd.drop(); n > 0 {
				d.logger.Debug("parked jobs discarded", "command", cmd.String(), "count", n)
			}
			return
		}
		next, ok := cmd.next()
		if !ok {
			return
		}
		j = next
	}
}

func (d *Dispatcher) run(ctx context.Context, j job) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("command panic recovered", "job", j.id, "command", j.cmd.String(), "error", r)
		}
	}()

	ctx, span := d.tracer.StartCommand(ctx, j.id, j.cmd.Kind.String(), j.cmd.Arg, j.chord)
	err := d.exec.Execute(ctx, j.cmd)
	span.End(err)

	if err != nil {
		d.logger.Warn("command failed", "job", j.id, "command", j.cmd.String(), "chord", j.chord, "error", err)
		return
	}
	d.logger.Debug("command done", "job", j.id, "command", j.cmd.String())
}

// Tab is a rendered workspace tab in root coordinates.
type Tab struct {
	Workspace string `json:"workspace"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// TabAt returns the first tab containing the point.
func TabAt(x, y int, tabs []Tab) (Tab, bool) {
	for _, t := range tabs {
		if x >= t.X && x < t.X+t.Width && y >= t.Y && y < t.Y+t.Height {
			return t, true
		}
	}
	return Tab{}, false
}
