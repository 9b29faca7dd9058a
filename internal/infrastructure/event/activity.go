package event

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/expenseally/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ActivityEntry is one recorded business event, payload included
type ActivityEntry struct {
	EventID       uuid.UUID       `json:"event_id"`
	EventType     string          `json:"event_type"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

// ActivityFeed is a catch-all event handler that keeps the most recent
// events per company for the dashboard's activity stream. Entries past
// the per-company capacity roll off oldest first.
type ActivityFeed struct {
	mu         sync.RWMutex
	serializer *Serializer
	byCompany  map[uuid.UUID][]ActivityEntry
	capacity   int
}

const defaultActivityCapacity = 50

// NewActivityFeed creates a feed keeping up to capacity entries per
// company. A non-positive capacity falls back to the default.
func NewActivityFeed(serializer *Serializer, capacity int) *ActivityFeed {
	if capacity <= 0 {
		capacity = defaultActivityCapacity
	}
	return &ActivityFeed{
		serializer: serializer,
		byCompany:  make(map[uuid.UUID][]ActivityEntry),
		capacity:   capacity,
	}
}

// EventTypes returns nil so the feed subscribes to every event
func (f *ActivityFeed) EventTypes() []string {
	return nil
}

// Handle records the event in its company's feed
func (f *ActivityFeed) Handle(ctx context.Context, evt shared.DomainEvent) error {
	payload, err := f.serializer.Serialize(evt)
	if err != nil {
		return err
	}

	entry := ActivityEntry{
		EventID:       evt.EventID(),
		EventType:     evt.EventType(),
		AggregateID:   evt.AggregateID(),
		AggregateType: evt.AggregateType(),
		OccurredAt:    evt.OccurredAt(),
		Payload:       payload,
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	entries := append(f.byCompany[evt.CompanyID()], entry)
	if len(entries) > f.capacity {
		entries = entries[len(entries)-f.capacity:]
	}
	f.byCompany[evt.CompanyID()] = entries
	return nil
}

// Recent returns up to limit entries for a company, newest first
func (f *ActivityFeed) Recent(companyID uuid.UUID, limit int) []ActivityEntry {
	f.mu.RLock()
	defer f.mu.RUnlock()

	entries := f.byCompany[companyID]
	if limit <= 0 || limit > len(entries) {
		limit = len(entries)
	}

	recent := make([]ActivityEntry, 0, limit)
	for i := len(entries) - 1; i >= len(entries)-limit; i-- {
		recent = append(recent, entries[i])
	}
	return recent
}

var _ shared.EventHandler = (*ActivityFeed)(nil)
