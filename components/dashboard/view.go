package dashboard

import (
	"context"
	"errors"
	"sync"
)

var errMissingRepository = errors.New("dashboard: repository not configured")

// View applies an Engine's current selection to a Repository. The filtered slice
// is cached per engine version and dropped whenever the engine reports a change
// or the view is invalidated.
type View struct {
	repo   Repository
	engine *Engine

	mu         sync.Mutex
	cached     []FeedbackRecord
	state      FilterState
	version    uint64
	valid      bool
	generation uint64

	cancel func()
}

// NewView binds repo to engine and listens for invalidating changes.
func NewView(repo Repository, engine *Engine) *View {
	v := &View{repo: repo, engine: engine}
	if engine != nil {
		v.cancel = engine.Subscribe(func(StateChange) { v.Invalidate() })
	}
	return v
}

// Close detaches the view from its engine.
func (v *View) Close() {
	if v.cancel != nil {
		v.cancel()
	}
}

// Invalidate drops the cached filter result. Loads already in flight finish
// but do not repopulate the cache.
func (v *View) Invalidate() {
	v.mu.Lock()
	v.cached = nil
	v.valid = false
	v.generation++
	v.mu.Unlock()
}

// Records returns the records matching the engine's current state. The slice is
// shared with the cache and must not be modified.
func (v *View) Records(ctx context.Context) ([]FeedbackRecord, error) {
	_, records, err := v.Current(ctx)
	return records, err
}

// Current returns the selection and the records matching it, both taken from
// the same engine snapshot.
func (v *View) Current(ctx context.Context) (FilterState, []FeedbackRecord, error) {
	if v.repo == nil {
		return FilterState{}, nil, errMissingRepository
	}
	state, version := v.snapshot()
	v.mu.Lock()
	if v.valid && v.version == version {
		out, cachedState := v.cached, v.state
		v.mu.Unlock()
		return cachedState, out, nil
	}
	generation := v.generation
	v.mu.Unlock()

	all, err := v.repo.All(ctx)
	if err != nil {
		return FilterState{}, nil, err
	}
	filtered := FilteredRecords(all, state)

	v.mu.Lock()
	if v.generation == generation {
		v.cached = filtered
		v.state = state
		v.version = version
		v.valid = true
	}
	v.mu.Unlock()
	return state, filtered, nil
}

// Aggregate groups the filtered records with keyFn.
func (v *View) Aggregate(ctx context.Context, keyFn KeyFunc) ([]AggregateResult, error) {
	records, err := v.Records(ctx)
	if err != nil {
		return nil, err
	}
	return GroupBy(records, keyFn), nil
}

// Ranked groups the filtered records and ranks them by negative count.
func (v *View) Ranked(ctx context.Context, keyFn KeyFunc, limit int) ([]AggregateResult, error) {
	groups, err := v.Aggregate(ctx, keyFn)
	if err != nil {
		return nil, err
	}
	return TopN(RankByNegativeCount(groups), limit), nil
}

// Summary computes KPI values over the filtered records.
func (v *View) Summary(ctx context.Context) (Summary, error) {
	records, err := v.Records(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(records), nil
}

// State exposes the engine state used by the view.
func (v *View) State() FilterState {
	state, _ := v.snapshot()
	return state
}

func (v *View) snapshot() (FilterState, uint64) {
	if v.engine == nil {
		return DefaultFilterState(), 0
	}
	return v.engine.Snapshot()
}
