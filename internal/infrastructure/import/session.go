package csvimport

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EntityType names a kind of record a company can bulk-import.
type EntityType string

const (
	EntityClients  EntityType = "clients"
	EntityExpenses EntityType = "expenses"
)

// ImportState tracks where a session is in the validate-then-import flow.
type ImportState string

const (
	StateCreated    ImportState = "created"
	StateValidating ImportState = "validating"
	StateValidated  ImportState = "validated"
	StateImporting  ImportState = "importing"
	StateCompleted  ImportState = "completed"
	StateFailed     ImportState = "failed"
	StateCancelled  ImportState = "cancelled"
)

// ImportSession records one file upload and its progress through
// validation and import. Sessions are company-scoped.
type ImportSession struct {
	ID          uuid.UUID        `json:"id"`
	CompanyID   uuid.UUID        `json:"company_id"`
	UserID      uuid.UUID        `json:"user_id"`
	EntityType  EntityType       `json:"entity_type"`
	FileName    string           `json:"file_name"`
	FileSize    int64            `json:"file_size"`
	State       ImportState      `json:"state"`
	TotalRows   int              `json:"total_rows"`
	ValidRows   int              `json:"valid_rows"`
	ErrorRows   int              `json:"error_rows"`
	Errors      []RowError       `json:"errors,omitempty"`
	Preview     []map[string]any `json:"preview,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

// NewImportSession starts a session for an uploaded file.
func NewImportSession(companyID, userID uuid.UUID, entityType EntityType, fileName string, fileSize int64) *ImportSession {
	now := time.Now()
	return &ImportSession{
		ID:         uuid.New(),
		CompanyID:  companyID,
		UserID:     userID,
		EntityType: entityType,
		FileName:   fileName,
		FileSize:   fileSize,
		State:      StateCreated,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// UpdateState moves the session to a new state, stamping completion time
// on terminal states.
func (s *ImportSession) UpdateState(state ImportState) {
	now := time.Now()
	s.State = state
	s.UpdatedAt = now
	switch state {
	case StateCompleted, StateFailed, StateCancelled:
		s.CompletedAt = &now
	}
}

// SetValidationResult copies validation counts and errors onto the session.
func (s *ImportSession) SetValidationResult(result *ValidationResult) {
	s.TotalRows = result.TotalRows
	s.ValidRows = result.ValidRows
	s.ErrorRows = result.ErrorRows
	s.Errors = result.Errors
	s.Preview = result.Preview
	s.UpdatedAt = time.Now()
}

// IsValid reports whether validation found no bad rows.
func (s *ImportSession) IsValid() bool {
	return s.ErrorRows == 0
}

// SessionStore persists import sessions between the validate and import calls.
type SessionStore interface {
	Save(session *ImportSession) error
	Get(id uuid.UUID) (*ImportSession, error)
	GetByCompany(companyID uuid.UUID, limit int) ([]*ImportSession, error)
	Delete(id uuid.UUID) error
}

// InMemorySessionStore keeps sessions in memory with a TTL. Good enough
// for a single instance; sessions do not survive a restart.
type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*ImportSession
	ttl      time.Duration
	done     chan struct{}
}

// NewInMemorySessionStore builds a store whose sessions expire after ttl.
// A background sweep reclaims expired entries until Stop is called.
func NewInMemorySessionStore(ttl time.Duration) *InMemorySessionStore {
	s := &InMemorySessionStore{
		sessions: make(map[uuid.UUID]*ImportSession),
		ttl:      ttl,
		done:     make(chan struct{}),
	}
	go s.sweepLoop()
	return s
}

func (s *InMemorySessionStore) sweepLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Cleanup()
		case <-s.done:
			return
		}
	}
}

// Stop ends the background sweep.
func (s *InMemorySessionStore) Stop() {
	close(s.done)
}

func (s *InMemorySessionStore) expired(session *ImportSession) bool {
	return time.Since(session.CreatedAt) > s.ttl
}

// Save stores or replaces a session.
func (s *InMemorySessionStore) Save(session *ImportSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

// Get returns a session by ID, or nil when absent or expired.
func (s *InMemorySessionStore) Get(id uuid.UUID) (*ImportSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok || s.expired(session) {
		return nil, nil
	}
	return session, nil
}

// GetByCompany returns up to limit live sessions belonging to a company.
func (s *InMemorySessionStore) GetByCompany(companyID uuid.UUID, limit int) ([]*ImportSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*ImportSession
	for _, session := range s.sessions {
		if session.CompanyID != companyID || s.expired(session) {
			continue
		}
		out = append(out, session)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Delete removes a session.
func (s *InMemorySessionStore) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Cleanup drops expired sessions immediately.
func (s *InMemorySessionStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, session := range s.sessions {
		if s.expired(session) {
			delete(s.sessions, id)
		}
	}
}
