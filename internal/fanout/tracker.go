// Package fanout runs one unit of work per key with full isolation between
// keys: each key settles, fails, retries, or is cancelled independently.
package fanout

import (
	"context"
	"sync"
)

// State is the externally visible condition of one key's unit of work.
// At most one of Result and Err is populated for a given attempt.
type State[V any] struct {
	Progress  float64 `json:"progress"`
	Result    V       `json:"result"`
	HasResult bool    `json:"hasResult"`
	Err       string  `json:"error,omitempty"`
	Cancelled bool    `json:"cancelled"`
}

// Settled reports whether the key reached a terminal outcome for its current attempt.
func (s State[V]) Settled() bool {
	return s.HasResult || s.Err != ""
}

// Work produces the value for one key. Implementations may call report with
// fractions in [0,1] as sub-units complete; reports for superseded attempts
// are discarded by the tracker.
type Work[K comparable, V any] func(ctx context.Context, key K, report func(float64)) (V, error)

// entry pairs a key's visible state with the generation of its latest attempt.
// A completion whose launch generation no longer matches is stale and dropped.
type entry[V any] struct {
	state      State[V]
	generation uint64
	cancel     context.CancelFunc
}

// Tracker coordinates concurrent per-key attempts over a small keyspace.
// A single mutex guards the key map; goroutines never write state directly.
type Tracker[K comparable, V any] struct {
	mu      sync.Mutex
	nextGen uint64
	entries map[K]*entry[V]
}

// New creates an empty tracker.
func New[K comparable, V any]() *Tracker[K, V] {
	return &Tracker[K, V]{entries: make(map[K]*entry[V])}
}

// RunAll schedules the unit of work concurrently for every key that is not
// already cancelled and blocks until each launched attempt settles. Failures
// are recorded per key and never abort sibling keys.
func (t *Tracker[K, V]) RunAll(ctx context.Context, keys []K, work Work[K, V]) {
	var wg sync.WaitGroup
	for _, key := range keys {
		t.launch(ctx, key, work, &wg, false)
	}
	wg.Wait()
}

// Retry re-runs exactly one key, clearing its prior error or cancellation
// first, and blocks until that attempt settles. Other keys are untouched
// even if they are mid-flight or failed.
func (t *Tracker[K, V]) Retry(ctx context.Context, key K, work Work[K, V]) {
	var wg sync.WaitGroup
	t.launch(ctx, key, work, &wg, true)
	wg.Wait()
}

// Cancel marks one key cancelled and clears its progress, result, and error.
// An attempt still in flight keeps running but its eventual resolution is
// discarded; its context is cancelled so cooperative callees can stop early.
func (t *Tracker[K, V]) Cancel(key K) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[key]
	if !ok {
		e = &entry[V]{}
		t.entries[key] = e
	}
	t.nextGen++
	e.generation = t.nextGen
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.state = State[V]{Cancelled: true}
}

// AllSettled reports whether every requested key has a result or an error.
// Cancelled keys count as settled; keys never scheduled do not.
func (t *Tracker[K, V]) AllSettled(keys []K) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, key := range keys {
		e, ok := t.entries[key]
		if !ok {
			return false
		}
		if e.state.Cancelled {
			continue
		}
		if !e.state.Settled() {
			return false
		}
	}
	return true
}

// Snapshot returns a point-in-time copy of every tracked key's state.
func (t *Tracker[K, V]) Snapshot() map[K]State[V] {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[K]State[V], len(t.entries))
	for key, e := range t.entries {
		out[key] = e.state
	}
	return out
}

// Get returns one key's state and whether the key has ever been tracked.
func (t *Tracker[K, V]) Get(key K) (State[V], bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[key]
	if !ok {
		return State[V]{}, false
	}
	return e.state, true
}

// Reset drops every tracked key and cancels in-flight attempts. Generations
// are tracker-global, so late completions from before the reset can never
// repopulate a key scheduled again afterwards.
func (t *Tracker[K, V]) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, e := range t.entries {
		if e.cancel != nil {
			e.cancel()
			e.cancel = nil
		}
	}
	t.entries = make(map[K]*entry[V])
}

// launch starts one attempt for a key. With force=false a cancelled key is
// skipped; with force=true (retry) the cancellation is cleared and the key
// re-scheduled. Starting a new attempt bumps the generation so any older
// in-flight attempt for the key is logically superseded.
func (t *Tracker[K, V]) launch(ctx context.Context, key K, work Work[K, V], wg *sync.WaitGroup, force bool) {
	t.mu.Lock()
	e, ok := t.entries[key]
	if !ok {
		e = &entry[V]{}
		t.entries[key] = e
	}
	if e.state.Cancelled && !force {
		t.mu.Unlock()
		return
	}
	if e.cancel != nil {
		e.cancel()
	}
	t.nextGen++
	gen := t.nextGen
	e.generation = gen
	e.state = State[V]{}

	attemptCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	t.mu.Unlock()

	report := func(p float64) {
		t.setProgress(key, gen, p)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()
		value, err := work(attemptCtx, key, report)
		t.complete(key, gen, value, err)
	}()
}

// setProgress records reported progress unless the attempt was superseded.
func (t *Tracker[K, V]) setProgress(key K, gen uint64, p float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[key]
	if !ok || e.generation != gen || e.state.Settled() {
		return
	}
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	e.state.Progress = p
}

// complete records one attempt's terminal outcome unless it was superseded
// by a newer attempt, a cancel, or a reset.
func (t *Tracker[K, V]) complete(key K, gen uint64, value V, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[key]
	if !ok || e.generation != gen {
		return
	}
	e.cancel = nil
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = "unit of work failed"
		}
		e.state.Err = msg
		return
	}
	e.state.Result = value
	e.state.HasResult = true
	e.state.Progress = 1
}
