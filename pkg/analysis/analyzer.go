// Package analysis runs lifetime inference over one C source file and
// produces its Deallocation Point Set.
package analysis

import (
	"context"
	"fmt"

	"github.com/l3aro/autofree/internal/log"
	"github.com/l3aro/autofree/pkg/cache"
	"github.com/l3aro/autofree/pkg/frontend"
	"github.com/l3aro/autofree/pkg/gate"
	"github.com/l3aro/autofree/pkg/liveness"
	"github.com/l3aro/autofree/pkg/points"
	"github.com/l3aro/autofree/pkg/store"
)

// Options configures an Analyzer.
type Options struct {
	// AllocIndicator is the allocation-call substring used by the gate.
	AllocIndicator string

	// Logger receives progress and heuristic-miss messages.
	Logger log.Logger

	// Cache, when set, short-circuits re-analysis of identical input.
	Cache *cache.LRUCache

	// Store performs file IO; defaults to store.New().
	Store *store.Store
}

// Summary counts how the gate treated the tracked references.
type Summary struct {
	Candidates int
	Accepted   int
	Rejected   int
}

// Result is the outcome of analyzing one file.
type Result struct {
	Points  *points.Set
	Summary Summary
	Cached  bool
}

// Analyzer infers deallocation points. It holds no per-run state and is
// safe to reuse across files.
type Analyzer struct {
	indicator string
	logger    log.Logger
	cache     *cache.LRUCache
	store     *store.Store
}

// New creates an Analyzer.
func New(opts Options) *Analyzer {
	a := &Analyzer{
		indicator: opts.AllocIndicator,
		logger:    opts.Logger,
		cache:     opts.Cache,
		store:     opts.Store,
	}
	if a.indicator == "" {
		a.indicator = gate.DefaultIndicator
	}
	if a.logger == nil {
		a.logger = log.Nop()
	}
	if a.store == nil {
		a.store = store.New()
	}
	return a
}

// AnalyzeFile reads the file at location and analyzes it.
func (a *Analyzer) AnalyzeFile(ctx context.Context, location string) (*Result, error) {
	content, err := a.store.Read(ctx, location)
	if err != nil {
		return nil, err
	}
	result, err := a.Analyze(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("analyzing %s: %w", location, err)
	}
	return result, nil
}

// Analyze runs the frontend, the liveness traversal and the allocation
// gate over content. Parse failures abort the run; references without a
// local declaration and gate misses only shrink the result.
func (a *Analyzer) Analyze(ctx context.Context, content []byte) (*Result, error) {
	key := ""
	if a.cache != nil {
		k, err := cache.Key(a.indicator, content)
		if err != nil {
			return nil, fmt.Errorf("hashing content: %w", err)
		}
		key = k
		if cached, ok := a.cache.Get(key); ok {
			a.logger.Debug("cache hit", "key", key, "points", len(cached.Points))
			return &Result{
				Points: points.NewSet(cached.Points...),
				Summary: Summary{
					Candidates: cached.Candidates,
					Accepted:   len(cached.Points),
					Rejected:   cached.Rejected,
				},
				Cached: true,
			}, nil
		}
	}

	unit, err := frontend.Parse(ctx, content)
	if err != nil {
		return nil, err
	}

	tracker := liveness.Analyze(unit)
	set, summary := a.collect(tracker, gate.NewTextGate(content, a.indicator))

	a.logger.Debug("analysis finished",
		"candidates", summary.Candidates,
		"accepted", summary.Accepted,
		"rejected", summary.Rejected,
	)

	if a.cache != nil {
		a.cache.Set(key, cache.Result{
			Points:     set.Points(),
			Candidates: summary.Candidates,
			Rejected:   summary.Rejected,
		})
	}
	return &Result{Points: set, Summary: summary}, nil
}

// collect promotes every tracked reference accepted by g to a point,
// keeping the tracker's insertion order.
func (a *Analyzer) collect(tracker *liveness.Tracker, g gate.Gate) (*points.Set, Summary) {
	set := points.NewSet()
	summary := Summary{}
	for _, ref := range tracker.References() {
		summary.Candidates++
		if !g.Qualifies(ref.Variable) {
			summary.Rejected++
			a.logger.Debug("no allocation evidence", "function", ref.Function, "variable", ref.Variable)
			continue
		}
		summary.Accepted++
		set.Add(points.Point{
			FunctionName: ref.Function,
			LineNumber:   ref.Line,
			VariableName: ref.Variable,
		})
	}
	return set, summary
}
