package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"calmtide/internal/core/model"
)

// MemoryRepository keeps records in process memory.
type MemoryRepository struct {
	mu       sync.Mutex
	sessions map[string]model.CompletedSessionRecord
	cycles   map[string]model.CycleRecord
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *MemoryRepository {
	return &MemoryRepository{
		sessions: make(map[string]model.CompletedSessionRecord),
		cycles:   make(map[string]model.CycleRecord),
	}
}

func (repo *MemoryRepository) SaveSession(_ context.Context, record model.CompletedSessionRecord) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if _, exists := repo.sessions[record.ID]; !exists {
		repo.sessions[record.ID] = record
	}
	return nil
}

func (repo *MemoryRepository) SaveCycle(_ context.Context, record model.CycleRecord) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if _, exists := repo.cycles[record.ID]; !exists {
		repo.cycles[record.ID] = record
	}
	return nil
}

func (repo *MemoryRepository) SessionsSince(_ context.Context, since time.Time) ([]model.CompletedSessionRecord, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	var records []model.CompletedSessionRecord
	for _, record := range repo.sessions {
		if !record.CompletedAt.Before(since) {
			records = append(records, record)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CompletedAt.Before(records[j].CompletedAt)
	})
	return records, nil
}

// Cycles returns the number of stored breathing cycles.
func (repo *MemoryRepository) Cycles() int {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return len(repo.cycles)
}

func (repo *MemoryRepository) Close() error {
	return nil
}
