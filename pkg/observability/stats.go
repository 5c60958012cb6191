package observability

import (
	"context"
	"sync"
	"time"
)

// Stats counts acquisition outcomes. It is safe for concurrent use and can
// be combined with other hooks via Tee.
type Stats struct {
	mu       sync.Mutex
	started  int
	outcomes map[string]int
	stages   map[string]int
	total    time.Duration
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	Started  int            `json:"started"`
	Outcomes map[string]int `json:"outcomes"`
	Stages   map[string]int `json:"stages"`
	MeanTime time.Duration  `json:"mean_ns"`
}

func NewStats() *Stats {
	return &Stats{outcomes: map[string]int{}, stages: map[string]int{}}
}

func (s *Stats) OnAcquireStart(context.Context, string, string) {
	s.mu.Lock()
	s.started++
	s.mu.Unlock()
}

func (s *Stats) OnAcquireStage(_ context.Context, _, _ string, stage string) {
	s.mu.Lock()
	s.stages[stage]++
	s.mu.Unlock()
}

func (s *Stats) OnAcquireComplete(_ context.Context, _, _ string, outcome string, d time.Duration) {
	s.mu.Lock()
	s.outcomes[outcome]++
	s.total += d
	s.mu.Unlock()
}

// Snapshot copies the current counters.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := StatsSnapshot{
		Started:  s.started,
		Outcomes: make(map[string]int, len(s.outcomes)),
		Stages:   make(map[string]int, len(s.stages)),
	}
	n := 0
	for k, v := range s.outcomes {
		snap.Outcomes[k] = v
		n += v
	}
	for k, v := range s.stages {
		snap.Stages[k] = v
	}
	if n > 0 {
		snap.MeanTime = s.total / time.Duration(n)
	}
	return snap
}

// Tee fans acquisition events out to several hooks in order.
func Tee(hooks ...AcquireHooks) AcquireHooks { return tee(hooks) }

type tee []AcquireHooks

func (t tee) OnAcquireStart(ctx context.Context, id, key string) {
	for _, h := range t {
		h.OnAcquireStart(ctx, id, key)
	}
}

func (t tee) OnAcquireStage(ctx context.Context, id, key, stage string) {
	for _, h := range t {
		h.OnAcquireStage(ctx, id, key, stage)
	}
}

func (t tee) OnAcquireComplete(ctx context.Context, id, key, outcome string, d time.Duration) {
	for _, h := range t {
		h.OnAcquireComplete(ctx, id, key, outcome, d)
	}
}
