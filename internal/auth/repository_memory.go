package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type InMemoryUserRepository struct {
	mu         sync.RWMutex
	users      map[string]*User
	households map[string]*Household
}

var _ UserRepository = (*InMemoryUserRepository)(nil)

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		users:      make(map[string]*User),
		households: make(map[string]*Household),
	}
}

func (r *InMemoryUserRepository) CreateHousehold(ctx context.Context, household *Household, owner *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if household.ID == "" {
		household.ID = uuid.New().String()
	}
	if household.CreatedAt.IsZero() {
		household.CreatedAt = time.Now().UTC()
	}
	r.households[household.ID] = household

	owner.HouseholdID = household.ID
	r.save(owner)
	return nil
}

func (r *InMemoryUserRepository) Save(ctx context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.save(user)
	return nil
}

func (r *InMemoryUserRepository) save(user *User) {
	// Generate UUID if not already set
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	r.users[strings.ToLower(user.Email)] = user
}

func (r *InMemoryUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.users[strings.ToLower(email)]
	return exists, nil
}

func (r *InMemoryUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[strings.ToLower(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}
