package session

import (
	"context"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/banssharp/banssharp/internal/database"
)

type memoryRepository struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]Session
}

// NewMemoryRepository returns a map backed Store with the same error contract
// as the postgres implementation.
func NewMemoryRepository() Store {
	return &memoryRepository{sessions: map[uuid.UUID]Session{}}
}

func (r *memoryRepository) Save(_ context.Context, sess *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[sess.ID] = *sess

	return nil
}

func (r *memoryRepository) GetByID(_ context.Context, sessionID uuid.UUID) (Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sess, found := r.sessions[sessionID]
	if !found {
		return Session{}, database.ErrNoResult
	}

	return sess, nil
}

func (r *memoryRepository) Delete(_ context.Context, sessionID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, sessionID)

	return nil
}

func (r *memoryRepository) DeleteExpired(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for id, sess := range r.sessions {
		if now.After(sess.ExpiresOn) {
			delete(r.sessions, id)
		}
	}

	return nil
}
