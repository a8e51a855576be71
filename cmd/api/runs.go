package main

import (
	"sync"
	"time"

	"logreg/internal/models"
)

// runRecord is what the API keeps of a finished run. The batch and the
// per-row predictions are dropped once the response is written.
type runRecord struct {
	ID           string
	State        models.State
	Err          error
	LearningRate float64
	Iterations   int
	Initial      []float64
	Betas        []float64
	Losses       []float64
	FinalLoss    float64
	Elapsed      time.Duration
}

func recordOf(run *models.Run) *runRecord {
	return &runRecord{
		ID:           run.ID().String(),
		State:        run.State(),
		Err:          run.Err(),
		LearningRate: run.LearningRate(),
		Iterations:   run.Iterations(),
		Initial:      run.Initial(),
		Betas:        run.Betas(),
		Losses:       run.Losses(),
		FinalLoss:    run.FinalLoss(),
		Elapsed:      run.Elapsed(),
	}
}

// runStore holds at most max records and evicts the oldest first.
type runStore struct {
	mu    sync.RWMutex
	max   int
	byID  map[string]*runRecord
	order []string
}

func newRunStore(max int) *runStore {
	if max <= 0 {
		max = 1
	}
	return &runStore{max: max, byID: map[string]*runRecord{}}
}

func (s *runStore) put(rec *runRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.order) >= s.max {
		delete(s.byID, s.order[0])
		s.order = s.order[1:]
	}
	s.byID[rec.ID] = rec
	s.order = append(s.order, rec.ID)
}

func (s *runStore) get(id string) (*runRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byID[id]
	return rec, ok
}

func (s *runStore) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
