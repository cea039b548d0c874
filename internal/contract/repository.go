package contract

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrNotFound is returned by repositories for unknown contract ids.
var ErrNotFound = errors.New("contract not found")

// Repository stores contracts.
type Repository interface {
	FindAll(ctx context.Context) ([]Contract, error)
	FindByID(ctx context.Context, id int) (Contract, error)
	FindByUserID(ctx context.Context, userID int) ([]Contract, error)
	Save(ctx context.Context, c Contract) (Contract, error)
	DeleteByID(ctx context.Context, id int) error
	Count(ctx context.Context) (int, error)
}

// MemoryRepository is an in-memory Repository with sequential ids.
type MemoryRepository struct {
	mu        sync.RWMutex
	contracts map[int]Contract
	nextID    int
}

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		contracts: make(map[int]Contract),
		nextID:    1,
	}
}

// FindAll returns every contract ordered by id.
func (r *MemoryRepository) FindAll(ctx context.Context) ([]Contract, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Contract, 0, len(r.contracts))
	for _, c := range r.contracts {
		out = append(out, c)
	}
	sortByID(out)
	return out, nil
}

// FindByID returns the contract with the given id or ErrNotFound.
func (r *MemoryRepository) FindByID(ctx context.Context, id int) (Contract, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.contracts[id]
	if !ok {
		return Contract{}, ErrNotFound
	}
	return c, nil
}

// FindByUserID returns the contracts of a user ordered by id.
func (r *MemoryRepository) FindByUserID(ctx context.Context, userID int) ([]Contract, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Contract
	for _, c := range r.contracts {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sortByID(out)
	return out, nil
}

// Save inserts c when its id is zero and replaces the stored contract
// otherwise.
func (r *MemoryRepository) Save(ctx context.Context, c Contract) (Contract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.ID == 0 {
		c.ID = r.nextID
		r.nextID++
	} else if c.ID >= r.nextID {
		r.nextID = c.ID + 1
	}
	r.contracts[c.ID] = c
	return c, nil
}

// DeleteByID removes a contract or returns ErrNotFound.
func (r *MemoryRepository) DeleteByID(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.contracts[id]; !ok {
		return ErrNotFound
	}
	delete(r.contracts, id)
	return nil
}

// Count returns the number of stored contracts.
func (r *MemoryRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.contracts), nil
}

func sortByID(cs []Contract) {
	sort.Slice(cs, func(i, j int) bool { return cs[i].ID < cs[j].ID })
}
