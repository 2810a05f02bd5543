package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/conorfennell/salita/internal/domain"
)

// Memory is an in-process record store. It is safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	records map[string]domain.ReviewRecord
	answers map[string][]domain.AnswerLog
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		records: make(map[string]domain.ReviewRecord),
		answers: make(map[string][]domain.AnswerLog),
	}
}

// Get returns a copy of the record for itemID, or nil if there is none.
func (m *Memory) Get(_ context.Context, itemID string) (*domain.ReviewRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.records[itemID]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

// Set inserts or replaces a record.
func (m *Memory) Set(_ context.Context, record domain.ReviewRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[record.ItemID] = record
	return nil
}

// GetAll returns the records matching category, ordered by item id.
func (m *Memory) GetAll(_ context.Context, category domain.Category) ([]domain.ReviewRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var records []domain.ReviewRecord
	for _, r := range m.records {
		if r.Category.Matches(category) {
			records = append(records, r)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ItemID < records[j].ItemID })
	return records, nil
}

// Delete removes the record and answer history of itemID.
func (m *Memory) Delete(_ context.Context, itemID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, itemID)
	delete(m.answers, itemID)
	return nil
}

// AppendAnswer adds an entry to the item's answer history.
func (m *Memory) AppendAnswer(_ context.Context, entry domain.AnswerLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.answers[entry.ItemID] = append(m.answers[entry.ItemID], entry)
	return nil
}

// History returns the item's answers, newest first.
func (m *Memory) History(_ context.Context, itemID string) ([]domain.AnswerLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := m.answers[itemID]
	out := make([]domain.AnswerLog, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	return out, nil
}
