package account

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository implements Repository with mutex-guarded maps. Intended
// for development, demos and tests; all data is lost on shutdown.
type InMemoryRepository struct {
	mutex   sync.RWMutex
	users   map[uuid.UUID]*User
	byEmail map[string]uuid.UUID
}

// NewInMemoryRepository creates an empty in-memory credential store.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		users:   make(map[uuid.UUID]*User),
		byEmail: make(map[string]uuid.UUID),
	}
}

// FindByEmail returns a copy of the record stored under the email key.
func (r *InMemoryRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	userCopy := *r.users[id]
	return &userCopy, nil
}

// FindByID returns a copy of the record with the given id.
func (r *InMemoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	userCopy := *user
	return &userCopy, nil
}

// Insert stores a new user, assigning an id when none is set.
func (r *InMemoryRepository) Insert(ctx context.Context, user *User) (*User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return nil, ErrEmailTaken
	}

	stored := *user
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	r.users[stored.ID] = &stored
	r.byEmail[stored.Email] = stored.ID

	storedCopy := stored
	return &storedCopy, nil
}

// Save overwrites an existing record in full.
func (r *InMemoryRepository) Save(ctx context.Context, user *User) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return r.saveLocked(user)
}

func (r *InMemoryRepository) saveLocked(user *User) error {
	existing, ok := r.users[user.ID]
	if !ok {
		return ErrUserNotFound
	}
	if existing.Email != user.Email {
		delete(r.byEmail, existing.Email)
		r.byEmail[user.Email] = user.ID
	}

	stored := *user
	stored.UpdatedAt = time.Now().UTC()
	r.users[user.ID] = &stored
	return nil
}

// UpdateByID applies fn to the record while the store lock is held.
func (r *InMemoryRepository) UpdateByID(ctx context.Context, id uuid.UUID, fn func(*User) error) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	user, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	return r.applyLocked(user, fn)
}

// UpdateByEmail applies fn to the record while the store lock is held.
func (r *InMemoryRepository) UpdateByEmail(ctx context.Context, email string, fn func(*User) error) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	id, ok := r.byEmail[email]
	if !ok {
		return ErrUserNotFound
	}
	return r.applyLocked(r.users[id], fn)
}

func (r *InMemoryRepository) applyLocked(user *User, fn func(*User) error) error {
	// Mutate a working copy so an fn error leaves the stored record untouched.
	working := *user
	if err := fn(&working); err != nil {
		return err
	}
	return r.saveLocked(&working)
}
