package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/geocoder89/recipebox/internal/domain/user"
)

// OwnerPurger drops every row owned by a user; it stands in for the
// ON DELETE CASCADE the relational schema provides.
type OwnerPurger interface {
	DeleteOwner(ownerID string)
}

type UsersRepo struct {
	mu      sync.RWMutex
	items   map[string]user.User
	cascade []OwnerPurger
}

func NewUsersRepo(cascade ...OwnerPurger) *UsersRepo {
	return &UsersRepo{
		items:   make(map[string]user.User),
		cascade: cascade,
	}
}

func (r *UsersRepo) Create(_ context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTakenLocked(u.Email, "") {
		return user.User{}, user.ErrEmailTaken
	}

	r.items[u.ID] = u
	return u, nil
}

func (r *UsersRepo) GetByID(_ context.Context, id string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) Update(_ context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[u.ID]; !ok {
		return user.User{}, user.ErrNotFound
	}
	if r.emailTakenLocked(u.Email, u.ID) {
		return user.User{}, user.ErrEmailTaken
	}

	r.items[u.ID] = u
	return u, nil
}

func (r *UsersRepo) List(_ context.Context) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]user.User, 0, len(r.items))
	for _, u := range r.items {
		out = append(out, u)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (r *UsersRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	_, ok := r.items[id]
	delete(r.items, id)
	r.mu.Unlock()

	if !ok {
		return user.ErrNotFound
	}

	for _, p := range r.cascade {
		p.DeleteOwner(id)
	}
	return nil
}

func (r *UsersRepo) emailTakenLocked(email, exceptID string) bool {
	for id, u := range r.items {
		if id != exceptID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}
