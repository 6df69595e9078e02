/*
 * Copyright 2026 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */

// Package dashboard loads the record list and backend analysis together and
// derives the figures the dashboard shows from them.
package dashboard

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/humaidq/intake/api"
	"github.com/humaidq/intake/logging"
)

var logger = logging.Logger(logging.SourceWeb)

// Source is the part of the API client the loader reads from.
type Source interface {
	GetDiabetesRecords(ctx context.Context, query api.RecordQuery) (*api.RecordList, error)
	GetAnalysisData(ctx context.Context) (*api.AnalysisResult, error)
}

// Snapshot is one consistent load of the dashboard.
type Snapshot struct {
	Records    []api.HealthRecord
	Total      int
	Analysis   api.AnalysisResult
	Stats      Stats
	BMIBuckets []Bucket
	AgeBuckets []Bucket
	LoadedAt   time.Time
}

// Loader fetches dashboard data. Every load takes a generation from a
// monotonic counter. Starting a load cancels the viewer's previous one, and
// a load that finishes after a newer one started is discarded.
type Loader struct {
	source Source
	query  api.RecordQuery
	now    func() time.Time

	mu       sync.Mutex
	counter  uint64
	gens     map[string]uint64
	inflight map[string]context.CancelFunc
}

// NewLoader returns a loader reading pages described by query.
func NewLoader(source Source, query api.RecordQuery) *Loader {
	return &Loader{
		source:   source,
		query:    query,
		now:      time.Now,
		gens:     make(map[string]uint64),
		inflight: make(map[string]context.CancelFunc),
	}
}

func (l *Loader) begin(ctx context.Context, viewer string) (context.Context, uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if cancel, ok := l.inflight[viewer]; ok {
		cancel()
	}

	l.counter++
	gen := l.counter
	l.gens[viewer] = gen

	loadCtx, cancel := context.WithCancel(ctx)
	l.inflight[viewer] = cancel

	return loadCtx, gen
}

// finish reports whether gen is still the viewer's latest load and releases
// its bookkeeping.
func (l *Loader) finish(viewer string, gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.gens[viewer] != gen {
		return false
	}

	if cancel, ok := l.inflight[viewer]; ok {
		cancel()
		delete(l.inflight, viewer)
	}

	delete(l.gens, viewer)

	return true
}

// Load fetches records and analysis concurrently. Both must succeed; the
// first failure cancels the other request.
func (l *Loader) Load(ctx context.Context, viewer string) (*Snapshot, error) {
	loadCtx, gen := l.begin(ctx, viewer)

	var (
		list     *api.RecordList
		analysis *api.AnalysisResult
	)

	g, gctx := errgroup.WithContext(loadCtx)

	g.Go(func() error {
		var err error
		list, err = l.source.GetDiabetesRecords(gctx, l.query)

		return err
	})

	g.Go(func() error {
		var err error
		analysis, err = l.source.GetAnalysisData(gctx)

		return err
	})

	err := g.Wait()

	if !l.finish(viewer, gen) {
		logger.Debug("discarding superseded dashboard load", "viewer", viewer, "generation", gen)
		return nil, ErrSuperseded
	}

	if err != nil {
		return nil, err
	}

	snap := &Snapshot{LoadedAt: l.now()}

	if list != nil {
		snap.Records = list.Data
		snap.Total = list.Total
	}

	if analysis != nil {
		snap.Analysis = *analysis
	}

	snap.Stats = Derive(snap.Records)
	snap.BMIBuckets = BMIBuckets(snap.Records)
	snap.AgeBuckets = AgeBuckets(snap.Records)

	return snap, nil
}
