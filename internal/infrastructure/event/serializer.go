package event

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"github.com/expenseally/backend/internal/domain/shared"
)

// Serializer converts domain events to and from JSON. Deserialization
// needs the concrete Go type, so every event type must be registered
// before it can be decoded.
type Serializer struct {
	mu    sync.RWMutex
	types map[string]reflect.Type
}

// NewSerializer creates an empty serializer
func NewSerializer() *Serializer {
	return &Serializer{types: make(map[string]reflect.Type)}
}

// Register maps an event type name to the prototype's concrete type
func (s *Serializer) Register(eventType string, prototype shared.DomainEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := reflect.TypeOf(prototype)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	s.types[eventType] = t
}

// Serialize encodes an event as JSON
func (s *Serializer) Serialize(evt shared.DomainEvent) ([]byte, error) {
	return json.Marshal(evt)
}

// Deserialize decodes JSON into the registered type for eventType
func (s *Serializer) Deserialize(eventType string, data []byte) (shared.DomainEvent, error) {
	s.mu.RLock()
	t, ok := s.types[eventType]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unregistered event type %q", eventType)
	}

	decoded := reflect.New(t).Interface()
	if err := json.Unmarshal(data, decoded); err != nil {
		return nil, fmt.Errorf("decode %s event: %w", eventType, err)
	}

	evt, ok := decoded.(shared.DomainEvent)
	if !ok {
		return nil, fmt.Errorf("type registered for %q is not a domain event", eventType)
	}
	return evt, nil
}

// IsRegistered reports whether an event type can be deserialized
func (s *Serializer) IsRegistered(eventType string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.types[eventType]
	return ok
}
