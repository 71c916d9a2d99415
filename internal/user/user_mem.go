package user

import (
	"context"
	"sync"

	"github.com/gofrs/uuid/v5"
	"github.com/leighmacdonald/steamid/v4/steamid"

	"github.com/banssharp/banssharp/internal/database"
)

type memoryRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]User
}

// NewMemoryRepository returns a map backed Store with the same error contract
// as the postgres implementation.
func NewMemoryRepository() Store {
	return &memoryRepository{users: map[uuid.UUID]User{}}
}

func (r *memoryRepository) GetByID(_ context.Context, userID uuid.UUID) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, found := r.users[userID]
	if !found {
		return User{}, database.ErrNoResult
	}

	return account, nil
}

func (r *memoryRepository) GetBySteamID(_ context.Context, steamID steamid.SteamID) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, account := range r.users {
		if account.SteamID != nil && *account.SteamID == steamID.String() {
			return account, nil
		}
	}

	return User{}, database.ErrNoResult
}

func (r *memoryRepository) Create(_ context.Context, account *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, found := r.users[account.ID]; found {
		return database.ErrDuplicate
	}

	for _, existing := range r.users {
		if existing.Email == account.Email {
			return database.ErrDuplicate
		}

		if account.SteamID != nil && existing.SteamID != nil && *existing.SteamID == *account.SteamID {
			return database.ErrDuplicate
		}
	}

	r.users[account.ID] = *account

	return nil
}

func (r *memoryRepository) SavePatch(_ context.Context, userID uuid.UUID, patch Patch) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, found := r.users[userID]
	if !found {
		return User{}, database.ErrNoResult
	}

	patch.Apply(&account)
	r.users[userID] = account

	return account, nil
}
